package repository

import (
	"context"
	"net/http"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InquiryDBRepository 现业咨询仓库（PostgreSQL直连）
type InquiryDBRepository struct {
	db *gorm.DB
}

func NewInquiryDBRepository(db *gorm.DB) *InquiryDBRepository {
	return &InquiryDBRepository{db: db}
}

func (r *InquiryDBRepository) table() string {
	return entity.Inquiry{}.TableName()
}

func (r *InquiryDBRepository) List(ctx context.Context) ([]entity.Inquiry, error) {
	items := []entity.Inquiry{}
	err := r.db.WithContext(ctx).
		Order("request_date DESC").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, dbError(http.MethodGet, r.table(), "", err)
	}
	return items, nil
}

func (r *InquiryDBRepository) Create(ctx context.Context, draft *entity.InquiryDraft) (*entity.Inquiry, error) {
	inquiry := &entity.Inquiry{
		ID:           entity.ID(uuid.New().String()),
		InquiryDraft: *draft,
	}
	if err := r.db.WithContext(ctx).Create(inquiry).Error; err != nil {
		return nil, dbError(http.MethodPost, r.table(), "", err)
	}
	return inquiry, nil
}

func (r *InquiryDBRepository) Update(ctx context.Context, id string, patch *entity.InquiryPatch) (*entity.Inquiry, error) {
	cols := patch.Columns()
	if len(cols) > 0 {
		res := r.db.WithContext(ctx).
			Model(&entity.Inquiry{}).
			Where("id = ?", id).
			Updates(cols)
		if res.Error != nil {
			return nil, dbError(http.MethodPatch, r.table(), id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, dbError(http.MethodPatch, r.table(), id, gorm.ErrRecordNotFound)
		}
	}

	var inquiry entity.Inquiry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&inquiry).Error; err != nil {
		return nil, dbError(http.MethodPatch, r.table(), id, err)
	}
	return &inquiry, nil
}

func (r *InquiryDBRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Inquiry{}).Error
	return dbError(http.MethodDelete, r.table(), id, err)
}
