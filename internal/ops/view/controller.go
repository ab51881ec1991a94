package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"go.uber.org/zap"
)

// Mode 列表/表单状态
type Mode string

const (
	ModeListing  Mode = "listing"
	ModeLoading  Mode = "loading"
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
)

var (
	ErrNoForm        = errors.New("no form is open")
	ErrUnknownRecord = errors.New("record not found in the current list")
)

// ValidationError 表单字段无效
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Backend 控制器依赖的存储操作，由服务层实现
type Backend[R entity.Record, D any] interface {
	List(ctx context.Context) ([]R, error)
	Create(ctx context.Context, draft *D) (*R, error)
	Replace(ctx context.Context, id string, draft *D) (*R, error)
	Delete(ctx context.Context, id string) error
}

// Kind 一种记录的表单描述
type Kind[R entity.Record, D any] struct {
	Name         string
	NewDraft     func() D
	DraftOf      func(R) D
	SetField     func(d D, field, value string) (D, error)
	DeletePrompt string
}

// State 可序列化的控制器状态
type State[R entity.Record, D any] struct {
	Mode      Mode                `json:"mode"`
	Records   []R                 `json:"records"`
	Page      int                 `json:"page"`
	Filter    entity.DocumentType `json:"filter,omitempty"`
	Draft     *D                  `json:"draft,omitempty"`
	EditingID string              `json:"editing_id,omitempty"`
}

// PageView 当前页的渲染数据
type PageView[R entity.Record, D any] struct {
	Mode      Mode                `json:"mode"`
	Items     []R                 `json:"items"`
	Page      int                 `json:"page"`
	PageSize  int                 `json:"page_size"`
	Total     int                 `json:"total"`
	PageCount int                 `json:"page_count"`
	Filter    entity.DocumentType `json:"filter,omitempty"`
	Draft     *D                  `json:"draft,omitempty"`
	EditingID string              `json:"editing_id,omitempty"`
}

// Controller 列表/表单状态机
type Controller[R entity.Record, D any] struct {
	kind    Kind[R, D]
	backend Backend[R, D]
	state   State[R, D]
	logger  *zap.Logger
}

// NewController 从已保存的状态恢复；零值状态即初始列表
func NewController[R entity.Record, D any](kind Kind[R, D], backend Backend[R, D], state State[R, D], logger *zap.Logger) *Controller[R, D] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if state.Mode == "" || state.Mode == ModeLoading {
		state.Mode = ModeListing
	}
	if state.Page < 1 {
		state.Page = 1
	}
	if state.Records == nil {
		state.Records = []R{}
	}
	return &Controller[R, D]{kind: kind, backend: backend, state: state, logger: logger.Named("view." + kind.Name)}
}

// State 当前状态（用于保存会话）
func (c *Controller[R, D]) State() State[R, D] {
	return c.state
}

// Reload 重新加载列表。失败时保留原列表，只记录日志
func (c *Controller[R, D]) Reload(ctx context.Context) error {
	prev := c.state.Mode
	if prev == ModeListing {
		c.state.Mode = ModeLoading
	}
	records, err := c.backend.List(ctx)
	if prev == ModeListing || prev == ModeLoading {
		c.state.Mode = ModeListing
	} else {
		c.state.Mode = prev
	}
	if err != nil {
		c.logger.Warn("reload failed, keeping previous records", zap.Error(err))
		return nil
	}
	c.state.Records = records
	return nil
}

// New 打开新建表单
func (c *Controller[R, D]) New() {
	d := c.kind.NewDraft()
	c.state.Mode = ModeCreating
	c.state.Draft = &d
	c.state.EditingID = ""
}

// Edit 打开编辑表单
func (c *Controller[R, D]) Edit(id string) error {
	rec, ok := c.find(id)
	if !ok {
		return fmt.Errorf("edit %s: %w", id, ErrUnknownRecord)
	}
	d := c.kind.DraftOf(rec)
	c.state.Mode = ModeEditing
	c.state.Draft = &d
	c.state.EditingID = id
	return nil
}

// SetField 修改表单字段，要求日变化时同步重算依赖日期
func (c *Controller[R, D]) SetField(field, value string) error {
	if !c.formOpen() {
		return ErrNoForm
	}
	d, err := c.kind.SetField(*c.state.Draft, field, value)
	if err != nil {
		return err
	}
	c.state.Draft = &d
	return nil
}

// Submit 提交表单。失败时保持表单和草稿不变
func (c *Controller[R, D]) Submit(ctx context.Context) error {
	if !c.formOpen() {
		return ErrNoForm
	}
	var err error
	switch c.state.Mode {
	case ModeCreating:
		_, err = c.backend.Create(ctx, c.state.Draft)
	case ModeEditing:
		_, err = c.backend.Replace(ctx, c.state.EditingID, c.state.Draft)
	default:
		return ErrNoForm
	}
	if err != nil {
		c.logger.Error("submit failed", zap.String("mode", string(c.state.Mode)), zap.Error(err))
		return err
	}
	c.closeForm()
	return c.Reload(ctx)
}

// Cancel 关闭表单
func (c *Controller[R, D]) Cancel() {
	c.closeForm()
}

// Delete 删除记录。confirm为nil或返回false时不访问存储
func (c *Controller[R, D]) Delete(ctx context.Context, id string, confirm func(prompt string) bool) error {
	if confirm == nil || !confirm(c.kind.DeletePrompt) {
		return nil
	}
	if err := c.backend.Delete(ctx, id); err != nil {
		c.logger.Error("delete failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return c.Reload(ctx)
}

// SetPage 切换页码，最小为1
func (c *Controller[R, D]) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	c.state.Page = n
}

// SetFilter 设置文档类型过滤，空为全部。页码不变
func (c *Controller[R, D]) SetFilter(t entity.DocumentType) error {
	if t != "" && !t.Valid() {
		return &ValidationError{Field: "document_type", Message: fmt.Sprintf("unknown document type %q", t)}
	}
	c.state.Filter = t
	return nil
}

// View 过滤后分页
func (c *Controller[R, D]) View() PageView[R, D] {
	filtered := entity.FilterByCategory(c.state.Records, c.state.Filter)
	return PageView[R, D]{
		Mode:      c.state.Mode,
		Items:     Paginate(filtered, c.state.Page),
		Page:      c.state.Page,
		PageSize:  PageSize,
		Total:     len(filtered),
		PageCount: PageCount(len(filtered)),
		Filter:    c.state.Filter,
		Draft:     c.state.Draft,
		EditingID: c.state.EditingID,
	}
}

func (c *Controller[R, D]) formOpen() bool {
	return (c.state.Mode == ModeCreating || c.state.Mode == ModeEditing) && c.state.Draft != nil
}

func (c *Controller[R, D]) closeForm() {
	c.state.Mode = ModeListing
	c.state.Draft = nil
	c.state.EditingID = ""
}

func (c *Controller[R, D]) find(id string) (R, bool) {
	for _, r := range c.state.Records {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}
