package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/bitfantasy/smdesk/internal/ops/service"
	"github.com/bitfantasy/smdesk/internal/ops/sheet"
	"github.com/bitfantasy/smdesk/internal/ops/sse"
	"github.com/bitfantasy/smdesk/internal/ops/view"
	"github.com/bitfantasy/smdesk/internal/shared/objectstore"
	"github.com/bitfantasy/smdesk/internal/shared/postgrest"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LinkPublisher 导出文件上传并生成下载链接
type LinkPublisher interface {
	Publish(ctx context.Context, fileName, contentType string, data []byte) (*objectstore.Link, error)
}

// Handlers 处理器集合
type Handlers struct {
	Activity     *RecordHandler[entity.Activity, entity.ActivityDraft, entity.ActivityPatch]
	Inquiry      *RecordHandler[entity.Inquiry, entity.InquiryDraft, entity.InquiryPatch]
	ActivityView *ViewHandler[entity.Activity, entity.ActivityDraft]
	InquiryView  *ViewHandler[entity.Inquiry, entity.InquiryDraft]
	SSE          *SSEHandler
}

// NewHandlers 创建处理器集合。links 为nil时导出链接接口返回503
func NewHandlers(svc *service.Services, hub *sse.Hub, sessions view.SessionStore, links LinkPublisher, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := RegisterValidators(); err != nil {
		logger.Warn("register validators failed", zap.Error(err))
	}
	return &Handlers{
		Activity: NewRecordHandler[entity.Activity, entity.ActivityDraft, entity.ActivityPatch](svc.Activity, links, logger),
		Inquiry:  NewRecordHandler[entity.Inquiry, entity.InquiryDraft, entity.InquiryPatch](svc.Inquiry, links, logger),
		ActivityView: NewViewHandler[entity.Activity, entity.ActivityDraft](
			view.ActivityKind(svc.Activity.OffsetDays(), svc.Activity.Draft), svc.Activity, sessions, logger),
		InquiryView: NewViewHandler[entity.Inquiry, entity.InquiryDraft](
			view.InquiryKind(svc.Inquiry.OffsetDays(), svc.Inquiry.Draft), svc.Inquiry, sessions, logger),
		SSE: NewSSEHandler(hub),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData 带附加数据的错误响应
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// 错误码
const (
	CodeBadRequest  = 40000
	CodeCodec       = 40010
	CodeNotFound    = 40400
	CodeConflict    = 40900
	CodeInternal    = 50000
	CodeRemote      = 50200
	CodeUnavailable = 50300
)

// HandleError 把领域错误映射为响应
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)

	if ie, ok := service.AsImportError(err); ok {
		data := gin.H{"committed": ie.Committed, "row": ie.Row}
		code := CodeRemote
		if _, isCodec := sheet.AsCodecError(ie.Err); isCodec {
			code = CodeCodec
		} else if re, isRemote := postgrest.AsRemoteError(ie.Err); isRemote {
			data["remote_status"] = re.Status
			data["remote_body"] = re.Body
		} else if errors.Is(ie.Err, context.Canceled) || errors.Is(ie.Err, context.DeadlineExceeded) {
			code = CodeBadRequest
		}
		ErrorWithData(c, code, ie.Error(), data)
		return
	}

	var ve *view.ValidationError
	if errors.As(err, &ve) {
		Error(c, CodeBadRequest, ve.Error())
		return
	}
	if ce, ok := sheet.AsCodecError(err); ok {
		Error(c, CodeCodec, ce.Error())
		return
	}
	if re, ok := postgrest.AsRemoteError(err); ok {
		ErrorWithData(c, CodeRemote, re.Message(), gin.H{
			"remote_status": re.Status,
			"remote_body":   re.Body,
		})
		return
	}
	if errors.Is(err, view.ErrUnknownRecord) || errors.Is(err, view.ErrSessionNotFound) {
		Error(c, CodeNotFound, err.Error())
		return
	}
	if errors.Is(err, view.ErrNoForm) {
		Error(c, CodeConflict, err.Error())
		return
	}
	InternalError(c, err.Error())
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPage 从请求获取页码（每页条数固定）
func GetPage(c *gin.Context) int {
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			return v
		}
	}
	return 1
}

// getDocumentType 解析 document_type 查询参数，空为全部
func getDocumentType(c *gin.Context) (entity.DocumentType, bool) {
	t := entity.DocumentType(c.Query("document_type"))
	if t != "" && !t.Valid() {
		BadRequest(c, "document_type must be one of dashboard, plan")
		return "", false
	}
	return t, true
}

// writeContext 写操作不随客户端断开而取消
func writeContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// Health 健康检查
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
