package repository

import (
	"context"
	"net/http"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityDBRepository SM活动仓库（PostgreSQL直连）
type ActivityDBRepository struct {
	db *gorm.DB
}

func NewActivityDBRepository(db *gorm.DB) *ActivityDBRepository {
	return &ActivityDBRepository{db: db}
}

func (r *ActivityDBRepository) table() string {
	return entity.Activity{}.TableName()
}

// List 按要求日倒序查询全部
func (r *ActivityDBRepository) List(ctx context.Context) ([]entity.Activity, error) {
	items := []entity.Activity{}
	err := r.db.WithContext(ctx).
		Order("request_date DESC").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, dbError(http.MethodGet, r.table(), "", err)
	}
	return items, nil
}

// Create 新增，ID由仓库分配
func (r *ActivityDBRepository) Create(ctx context.Context, draft *entity.ActivityDraft) (*entity.Activity, error) {
	activity := &entity.Activity{
		ID:            entity.ID(uuid.New().String()),
		ActivityDraft: *draft,
	}
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return nil, dbError(http.MethodPost, r.table(), "", err)
	}
	return activity, nil
}

// Update 只更新补丁中给出的列
func (r *ActivityDBRepository) Update(ctx context.Context, id string, patch *entity.ActivityPatch) (*entity.Activity, error) {
	cols := patch.Columns()
	if len(cols) > 0 {
		res := r.db.WithContext(ctx).
			Model(&entity.Activity{}).
			Where("id = ?", id).
			Updates(cols)
		if res.Error != nil {
			return nil, dbError(http.MethodPatch, r.table(), id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, dbError(http.MethodPatch, r.table(), id, gorm.ErrRecordNotFound)
		}
	}

	var activity entity.Activity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error; err != nil {
		return nil, dbError(http.MethodPatch, r.table(), id, err)
	}
	return &activity, nil
}

// Delete 删除
func (r *ActivityDBRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Activity{}).Error
	return dbError(http.MethodDelete, r.table(), id, err)
}
