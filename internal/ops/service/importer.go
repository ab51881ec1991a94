package service

import (
	"context"
	"errors"
	"fmt"
)

// ImportError 批量导入在某一行失败。之前成功的行已经写入，不会回滚
type ImportError struct {
	Row       int // 0-based index of the failing input row
	Committed int // rows persisted before the failure
	Err       error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import stopped at row %d (%d earlier rows were saved): %v", e.Row+1, e.Committed, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// AsImportError 判断err链中是否有ImportError
func AsImportError(err error) (*ImportError, bool) {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// Submit 按输入顺序逐行创建，遇到第一个失败即停止。
// 返回成功条数；失败时返回 *ImportError，其后的行不会被尝试。
func Submit[D any, R any](ctx context.Context, rows []D, create func(context.Context, *D) (*R, error)) (int, error) {
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return i, &ImportError{Row: i, Committed: i, Err: err}
		}
		if _, err := create(ctx, &rows[i]); err != nil {
			return i, &ImportError{Row: i, Committed: i, Err: err}
		}
	}
	return len(rows), nil
}
