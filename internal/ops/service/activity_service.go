package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/bitfantasy/smdesk/internal/ops/repository"
	"github.com/bitfantasy/smdesk/internal/ops/sheet"
	"github.com/bitfantasy/smdesk/internal/ops/sse"
	"go.uber.org/zap"
)

// ActivityService SM活动服务
type ActivityService struct {
	store    repository.ActivityStore
	codec    *sheet.Codec
	hub      *sse.Hub
	defaults entity.ActivityDefaults
	now      func() time.Time
	logger   *zap.Logger
}

func NewActivityService(store repository.ActivityStore, codec *sheet.Codec, hub *sse.Hub, defaults entity.ActivityDefaults, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		store:    store,
		codec:    codec,
		hub:      hub,
		defaults: defaults,
		now:      time.Now,
		logger:   logger.Named("activity"),
	}
}

// OffsetDays 作业日相对要求日的偏移
func (s *ActivityService) OffsetDays() int {
	return s.defaults.WorkDateOffsetDays
}

// Draft 新建表单的默认草稿
func (s *ActivityService) Draft() entity.ActivityDraft {
	return entity.NewActivityDraft(entity.Today(s.now), s.defaults)
}

// List 全部活动，按要求日倒序
func (s *ActivityService) List(ctx context.Context) ([]entity.Activity, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("list activities failed", zap.Error(err))
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return items, nil
}

// Create 新增活动。缺失的日期：要求日取当天，作业日按偏移推导
func (s *ActivityService) Create(ctx context.Context, draft *entity.ActivityDraft) (*entity.Activity, error) {
	d := s.complete(*draft)
	created, err := s.store.Create(ctx, &d)
	if err != nil {
		s.logger.Error("create activity failed", zap.Error(err))
		return nil, fmt.Errorf("create activity: %w", err)
	}
	s.hub.PublishChange(sse.EventActivityChange, sse.Change{Action: "create", ID: created.RecordID()})
	return created, nil
}

// Update 部分更新
func (s *ActivityService) Update(ctx context.Context, id string, patch *entity.ActivityPatch) (*entity.Activity, error) {
	patch.Derive()
	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("update activity failed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("update activity %s: %w", id, err)
	}
	s.hub.PublishChange(sse.EventActivityChange, sse.Change{Action: "update", ID: id})
	return updated, nil
}

// Replace 用草稿整体替换全部可编辑字段
func (s *ActivityService) Replace(ctx context.Context, id string, draft *entity.ActivityDraft) (*entity.Activity, error) {
	return s.Update(ctx, id, s.complete(*draft).Patch())
}

// Delete 硬删除
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("delete activity failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	s.hub.PublishChange(sse.EventActivityChange, sse.Change{Action: "delete", ID: id})
	return nil
}

// Import 逐行导入，第一行失败即停止。缺失的日期和负责人先按导入规则补齐
func (s *ActivityService) Import(ctx context.Context, rows []entity.ActivityDraft) (int, error) {
	committed, err := Submit(ctx, rows, func(ctx context.Context, d *entity.ActivityDraft) (*entity.Activity, error) {
		n := d.WithImportDefaults(entity.Today(s.now), s.defaults)
		return s.store.Create(ctx, &n)
	})
	if committed > 0 {
		s.hub.PublishChange(sse.EventActivityChange, sse.Change{Action: "import", Count: committed})
	}
	if err != nil {
		s.logger.Error("import activities stopped",
			zap.Int("rows", len(rows)), zap.Int("committed", committed), zap.Error(err))
		return committed, err
	}
	s.logger.Info("activities imported", zap.Int("rows", committed))
	return committed, nil
}

// ParseSheet 解析上传的表格，不写入
func (s *ActivityService) ParseSheet(r io.Reader, filename string) ([]entity.ActivityDraft, error) {
	return s.codec.ParseActivities(r, filename)
}

// Export 导出xlsx，返回内容和文件名
func (s *ActivityService) Export(ctx context.Context, docType entity.DocumentType) ([]byte, string, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, "", err
	}
	data, err := s.codec.FormatActivities(items, docType)
	if err != nil {
		return nil, "", err
	}
	return data, sheet.FileName(sheet.KindActivity, docType, false), nil
}

// Template 导入模板
func (s *ActivityService) Template(docType entity.DocumentType) ([]byte, string, error) {
	data, err := s.codec.ActivityTemplate(docType)
	if err != nil {
		return nil, "", err
	}
	return data, sheet.FileName(sheet.KindActivity, docType, true), nil
}

func (s *ActivityService) complete(d entity.ActivityDraft) entity.ActivityDraft {
	if d.RequestDate.IsZero() {
		d.RequestDate = entity.Today(s.now)
	}
	if d.WorkDate.IsZero() {
		d.WorkDate = d.RequestDate.AddDays(s.defaults.WorkDateOffsetDays)
	}
	return d.Normalize()
}
