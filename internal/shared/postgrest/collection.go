package postgrest

import (
	"context"
	"net/http"
	"net/url"
)

const preferRepresentation = "return=representation"

// Collection 一张表的CRUD
type Collection[R any] struct {
	client *Client
	table  string
}

// NewCollection 绑定表名
func NewCollection[R any](client *Client, table string) *Collection[R] {
	return &Collection[R]{client: client, table: table}
}

// Table 表名
func (c *Collection[R]) Table() string {
	return c.table
}

// List 查询全部行，order 形如 "request_date.desc"
func (c *Collection[R]) List(ctx context.Context, order string) ([]R, error) {
	q := url.Values{}
	q.Set("select", "*")
	if order != "" {
		q.Set("order", order)
	}

	var rows []R
	if err := c.client.do(ctx, request{method: http.MethodGet, table: c.table, query: q}, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []R{}
	}
	return rows, nil
}

// Insert 新增一行并返回存储端分配了ID和时间戳的记录
func (c *Collection[R]) Insert(ctx context.Context, body interface{}) (*R, error) {
	var rows []R
	err := c.client.do(ctx, request{
		method: http.MethodPost,
		table:  c.table,
		body:   body,
		prefer: preferRepresentation,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &RemoteError{Method: http.MethodPost, Path: "/rest/v1/" + c.table, Status: http.StatusOK, Body: "[]"}
	}
	return &rows[0], nil
}

// Patch 按ID部分更新。没有命中行时返回404的 *RemoteError
func (c *Collection[R]) Patch(ctx context.Context, id string, body interface{}) (*R, error) {
	var rows []R
	err := c.client.do(ctx, request{
		method: http.MethodPatch,
		table:  c.table,
		query:  idFilter(id),
		body:   body,
		prefer: preferRepresentation,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NotFound(http.MethodPatch, "/rest/v1/"+c.table, id)
	}
	return &rows[0], nil
}

// Delete 按ID删除
func (c *Collection[R]) Delete(ctx context.Context, id string) error {
	return c.client.do(ctx, request{
		method: http.MethodDelete,
		table:  c.table,
		query:  idFilter(id),
	}, nil)
}

func idFilter(id string) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return q
}
