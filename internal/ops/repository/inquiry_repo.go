package repository

import (
	"context"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/bitfantasy/smdesk/internal/shared/postgrest"
)

// InquiryRepository 现业咨询仓库（PostgREST）
type InquiryRepository struct {
	col *postgrest.Collection[entity.Inquiry]
}

func NewInquiryRepository(client *postgrest.Client) *InquiryRepository {
	return &InquiryRepository{col: postgrest.NewCollection[entity.Inquiry](client, entity.Inquiry{}.TableName())}
}

func (r *InquiryRepository) List(ctx context.Context) ([]entity.Inquiry, error) {
	return r.col.List(ctx, listOrder)
}

func (r *InquiryRepository) Create(ctx context.Context, draft *entity.InquiryDraft) (*entity.Inquiry, error) {
	return r.col.Insert(ctx, draft)
}

func (r *InquiryRepository) Update(ctx context.Context, id string, patch *entity.InquiryPatch) (*entity.Inquiry, error) {
	return r.col.Patch(ctx, id, patch)
}

func (r *InquiryRepository) Delete(ctx context.Context, id string) error {
	return r.col.Delete(ctx, id)
}
