package repository

import (
	"context"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/bitfantasy/smdesk/internal/shared/postgrest"
)

// ActivityRepository SM活动仓库（PostgREST）
type ActivityRepository struct {
	col *postgrest.Collection[entity.Activity]
}

func NewActivityRepository(client *postgrest.Client) *ActivityRepository {
	return &ActivityRepository{col: postgrest.NewCollection[entity.Activity](client, entity.Activity{}.TableName())}
}

// List 按要求日倒序查询全部
func (r *ActivityRepository) List(ctx context.Context) ([]entity.Activity, error) {
	return r.col.List(ctx, listOrder)
}

// Create 新增，ID和时间戳由存储端分配
func (r *ActivityRepository) Create(ctx context.Context, draft *entity.ActivityDraft) (*entity.Activity, error) {
	return r.col.Insert(ctx, draft)
}

// Update 部分更新
func (r *ActivityRepository) Update(ctx context.Context, id string, patch *entity.ActivityPatch) (*entity.Activity, error) {
	return r.col.Patch(ctx, id, patch)
}

// Delete 删除
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	return r.col.Delete(ctx, id)
}
