package service

import (
	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/bitfantasy/smdesk/internal/ops/repository"
	"github.com/bitfantasy/smdesk/internal/ops/sheet"
	"github.com/bitfantasy/smdesk/internal/ops/sse"
	"go.uber.org/zap"
)

// Defaults 组织默认值（负责人和依赖日期偏移）
type Defaults struct {
	Activity entity.ActivityDefaults `mapstructure:"activity"`
	Inquiry  entity.InquiryDefaults  `mapstructure:"inquiry"`
}

// Services 服务集合
type Services struct {
	Activity *ActivityService
	Inquiry  *InquiryService
	Codec    *sheet.Codec
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, hub *sse.Hub, defaults Defaults, logger *zap.Logger) *Services {
	codec := sheet.NewCodec(defaults.Activity, defaults.Inquiry, nil)
	return &Services{
		Activity: NewActivityService(repos.Activity, codec, hub, defaults.Activity, logger),
		Inquiry:  NewInquiryService(repos.Inquiry, codec, hub, defaults.Inquiry, logger),
		Codec:    codec,
	}
}
