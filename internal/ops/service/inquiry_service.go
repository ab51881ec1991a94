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

// InquiryService 现业咨询服务
type InquiryService struct {
	store    repository.InquiryStore
	codec    *sheet.Codec
	hub      *sse.Hub
	defaults entity.InquiryDefaults
	now      func() time.Time
	logger   *zap.Logger
}

func NewInquiryService(store repository.InquiryStore, codec *sheet.Codec, hub *sse.Hub, defaults entity.InquiryDefaults, logger *zap.Logger) *InquiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InquiryService{
		store:    store,
		codec:    codec,
		hub:      hub,
		defaults: defaults,
		now:      time.Now,
		logger:   logger.Named("inquiry"),
	}
}

func (s *InquiryService) OffsetDays() int {
	return s.defaults.ResponseDateOffsetDays
}

func (s *InquiryService) Draft() entity.InquiryDraft {
	return entity.NewInquiryDraft(entity.Today(s.now), s.defaults)
}

func (s *InquiryService) List(ctx context.Context) ([]entity.Inquiry, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("list inquiries failed", zap.Error(err))
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	return items, nil
}

func (s *InquiryService) Create(ctx context.Context, draft *entity.InquiryDraft) (*entity.Inquiry, error) {
	d := s.complete(*draft)
	created, err := s.store.Create(ctx, &d)
	if err != nil {
		s.logger.Error("create inquiry failed", zap.Error(err))
		return nil, fmt.Errorf("create inquiry: %w", err)
	}
	s.hub.PublishChange(sse.EventInquiryChange, sse.Change{Action: "create", ID: created.RecordID()})
	return created, nil
}

func (s *InquiryService) Update(ctx context.Context, id string, patch *entity.InquiryPatch) (*entity.Inquiry, error) {
	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("update inquiry failed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("update inquiry %s: %w", id, err)
	}
	s.hub.PublishChange(sse.EventInquiryChange, sse.Change{Action: "update", ID: id})
	return updated, nil
}

func (s *InquiryService) Replace(ctx context.Context, id string, draft *entity.InquiryDraft) (*entity.Inquiry, error) {
	return s.Update(ctx, id, s.complete(*draft).Patch())
}

func (s *InquiryService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("delete inquiry failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete inquiry %s: %w", id, err)
	}
	s.hub.PublishChange(sse.EventInquiryChange, sse.Change{Action: "delete", ID: id})
	return nil
}

func (s *InquiryService) Import(ctx context.Context, rows []entity.InquiryDraft) (int, error) {
	committed, err := Submit(ctx, rows, func(ctx context.Context, d *entity.InquiryDraft) (*entity.Inquiry, error) {
		n := d.WithImportDefaults(entity.Today(s.now), s.defaults)
		return s.store.Create(ctx, &n)
	})
	if committed > 0 {
		s.hub.PublishChange(sse.EventInquiryChange, sse.Change{Action: "import", Count: committed})
	}
	if err != nil {
		s.logger.Error("import inquiries stopped",
			zap.Int("rows", len(rows)), zap.Int("committed", committed), zap.Error(err))
		return committed, err
	}
	s.logger.Info("inquiries imported", zap.Int("rows", committed))
	return committed, nil
}

func (s *InquiryService) ParseSheet(r io.Reader, filename string) ([]entity.InquiryDraft, error) {
	return s.codec.ParseInquiries(r, filename)
}

func (s *InquiryService) Export(ctx context.Context, docType entity.DocumentType) ([]byte, string, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, "", err
	}
	data, err := s.codec.FormatInquiries(items, docType)
	if err != nil {
		return nil, "", err
	}
	return data, sheet.FileName(sheet.KindInquiry, docType, false), nil
}

func (s *InquiryService) Template(docType entity.DocumentType) ([]byte, string, error) {
	data, err := s.codec.InquiryTemplate(docType)
	if err != nil {
		return nil, "", err
	}
	return data, sheet.FileName(sheet.KindInquiry, docType, true), nil
}

func (s *InquiryService) complete(d entity.InquiryDraft) entity.InquiryDraft {
	if d.RequestDate.IsZero() {
		d.RequestDate = entity.Today(s.now)
	}
	if d.ResponseDate.IsZero() {
		d.ResponseDate = d.RequestDate.AddDays(s.defaults.ResponseDateOffsetDays)
	}
	return d.Normalize()
}
