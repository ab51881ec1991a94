package handler

import (
	"context"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/bitfantasy/smdesk/internal/ops/view"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionHeader 视图会话ID请求头
const SessionHeader = "X-View-Session"

// ViewHandler 列表/表单视图接口，状态按会话保存
type ViewHandler[R entity.Record, D any] struct {
	kind     view.Kind[R, D]
	backend  view.Backend[R, D]
	sessions view.SessionStore
	logger   *zap.Logger
}

func NewViewHandler[R entity.Record, D any](kind view.Kind[R, D], backend view.Backend[R, D], sessions view.SessionStore, logger *zap.Logger) *ViewHandler[R, D] {
	if sessions == nil {
		sessions = view.NewMemorySessions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewHandler[R, D]{kind: kind, backend: backend, sessions: sessions, logger: logger}
}

type viewResponse[R entity.Record, D any] struct {
	Session string              `json:"session"`
	View    view.PageView[R, D] `json:"view"`
	Prompt  string              `json:"prompt,omitempty"`
}

type fieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type pageRequest struct {
	Page int `json:"page"`
}

type filterRequest struct {
	DocumentType entity.DocumentType `json:"document_type"`
}

type deleteRequest struct {
	Confirm bool `json:"confirm"`
}

// Register 注册视图路由
func (h *ViewHandler[R, D]) Register(g *gin.RouterGroup) {
	g.GET("", h.Show)
	g.POST("/reload", h.Reload)
	g.POST("/new", h.New)
	g.POST("/edit/:id", h.Edit)
	g.POST("/field", h.SetField)
	g.POST("/submit", h.Submit)
	g.POST("/cancel", h.Cancel)
	g.POST("/page", h.SetPage)
	g.POST("/filter", h.SetFilter)
	g.POST("/delete/:id", h.Delete)
}

// Show GET 当前视图。新会话先加载列表
func (h *ViewHandler[R, D]) Show(c *gin.Context) {
	h.run(c, nil)
}

// Reload POST /reload
func (h *ViewHandler[R, D]) Reload(c *gin.Context) {
	h.run(c, func(ctx context.Context, ctrl *view.Controller[R, D]) error {
		return ctrl.Reload(ctx)
	})
}

// New POST /new 打开新建表单
func (h *ViewHandler[R, D]) New(c *gin.Context) {
	h.run(c, func(ctx context.Context, ctrl *view.Controller[R, D]) error {
		ctrl.New()
		return nil
	})
}

// Edit POST /edit/:id
func (h *ViewHandler[R, D]) Edit(c *gin.Context) {
	id := c.Param("id")
	h.run(c, func(ctx context.Context, ctrl *view.Controller[R, D]) error {
		return ctrl.Edit(id)
	})
}

// SetField POST /field {field, value}
func (h *ViewHandler[R, D]) SetField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}
	h.run(c, func(ctx context.Context, ctrl *view.Controller[R, D]) error {
		return ctrl.SetField(req.Field, req.Value)
	})
}

// Submit POST /submit 保存表单，失败时表单保持打开
func (h *ViewHandler[R, D]) Submit(c *gin.Context) {
	h.run(c, func(ctx context.Context, ctrl *view.Controller[R, D]) error {
		return ctrl.Submit(ctx)
	})
}

// Cancel POST /cancel
func (h *ViewHandler[R, D]) Cancel(c *gin.Context) {
	h.run(c, func(ctx context.Context, ctrl *view.Controller[R, D]) error {
		ctrl.Cancel()
		return nil
	})
}

// SetPage POST /page {page}
func (h *ViewHandler[R, D]) SetPage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}
	h.run(c, func(ctx context.Context, ctrl *view.Controller[R, D]) error {
		ctrl.SetPage(req.Page)
		return nil
	})
}

// SetFilter POST /filter {document_type}，空为全部
func (h *ViewHandler[R, D]) SetFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}
	h.run(c, func(ctx context.Context, ctrl *view.Controller[R, D]) error {
		return ctrl.SetFilter(req.DocumentType)
	})
}

// Delete POST /delete/:id {confirm} 或 ?confirm=true。未确认时只返回提示
func (h *ViewHandler[R, D]) Delete(c *gin.Context) {
	var req deleteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, bindingMessage(err))
			return
		}
	}
	confirmed := req.Confirm || c.Query("confirm") == "true"
	id := c.Param("id")

	prompt := ""
	if !confirmed {
		prompt = h.kind.DeletePrompt
	}
	h.respond(c, prompt, func(ctx context.Context, ctrl *view.Controller[R, D]) error {
		return ctrl.Delete(ctx, id, func(string) bool { return confirmed })
	})
}

func (h *ViewHandler[R, D]) run(c *gin.Context, action func(ctx context.Context, ctrl *view.Controller[R, D]) error) {
	h.respond(c, "", action)
}

// respond 加载会话状态，执行动作，保存后返回当前视图
func (h *ViewHandler[R, D]) respond(c *gin.Context, prompt string, action func(ctx context.Context, ctrl *view.Controller[R, D]) error) {
	ctx := writeContext(c)
	session := c.GetHeader(SessionHeader)
	if session == "" {
		session = uuid.NewString()
	}
	c.Header(SessionHeader, session)
	key := h.kind.Name + ":" + session

	state, err := view.LoadState[view.State[R, D]](ctx, h.sessions, key)
	if err != nil {
		HandleError(c, err)
		return
	}
	fresh := state.Mode == ""

	ctrl := view.NewController(h.kind, h.backend, state, h.logger)
	if fresh {
		_ = ctrl.Reload(ctx)
	}

	var actionErr error
	if action != nil {
		actionErr = action(ctx, ctrl)
	}

	if err := view.SaveState(ctx, h.sessions, key, ctrl.State()); err != nil {
		h.logger.Error("save view session failed", zap.String("session", session), zap.Error(err))
		HandleError(c, err)
		return
	}
	if actionErr != nil {
		HandleError(c, actionErr)
		return
	}

	Success(c, viewResponse[R, D]{Session: session, View: ctrl.View(), Prompt: prompt})
}
