package repository

import (
	"context"
	"errors"
	"net/http"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/bitfantasy/smdesk/internal/shared/postgrest"
	"gorm.io/gorm"
)

// 存储后端
const (
	BackendPostgREST = "postgrest"
	BackendPostgres  = "postgres"
)

// 排序：要求日倒序
const listOrder = "request_date.desc"

// ActivityStore SM活动存储
type ActivityStore interface {
	List(ctx context.Context) ([]entity.Activity, error)
	Create(ctx context.Context, draft *entity.ActivityDraft) (*entity.Activity, error)
	Update(ctx context.Context, id string, patch *entity.ActivityPatch) (*entity.Activity, error)
	Delete(ctx context.Context, id string) error
}

// InquiryStore 现业咨询存储
type InquiryStore interface {
	List(ctx context.Context) ([]entity.Inquiry, error)
	Create(ctx context.Context, draft *entity.InquiryDraft) (*entity.Inquiry, error)
	Update(ctx context.Context, id string, patch *entity.InquiryPatch) (*entity.Inquiry, error)
	Delete(ctx context.Context, id string) error
}

// Repositories 仓库集合
type Repositories struct {
	Activity ActivityStore
	Inquiry  InquiryStore
}

// NewRESTRepositories PostgREST后端
func NewRESTRepositories(client *postgrest.Client) *Repositories {
	return &Repositories{
		Activity: NewActivityRepository(client),
		Inquiry:  NewInquiryRepository(client),
	}
}

// NewDBRepositories PostgreSQL直连后端
func NewDBRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Activity: NewActivityDBRepository(db),
		Inquiry:  NewInquiryDBRepository(db),
	}
}

// AutoMigrate 数据库后端建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Activity{}, &entity.Inquiry{})
}

// dbError 数据库错误统一成与REST后端一致的 *RemoteError
func dbError(method, table, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return postgrest.NotFound(method, "/"+table, id)
	}
	return &postgrest.RemoteError{
		Method: method,
		Path:   "/" + table,
		Status: http.StatusInternalServerError,
		Body:   err.Error(),
	}
}
