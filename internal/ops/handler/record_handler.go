package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/bitfantasy/smdesk/internal/ops/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxUploadSize 导入文件大小上限
const maxUploadSize = 10 << 20

// RecordService 记录服务，两种记录的服务都实现它
type RecordService[R entity.Record, D any, P any] interface {
	Draft() D
	List(ctx context.Context) ([]R, error)
	Create(ctx context.Context, draft *D) (*R, error)
	Update(ctx context.Context, id string, patch *P) (*R, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, rows []D) (int, error)
	ParseSheet(r io.Reader, filename string) ([]D, error)
	Export(ctx context.Context, docType entity.DocumentType) ([]byte, string, error)
	Template(docType entity.DocumentType) ([]byte, string, error)
}

// RecordHandler 记录的增删改查、导入导出
type RecordHandler[R entity.Record, D any, P any] struct {
	svc    RecordService[R, D, P]
	links  LinkPublisher
	logger *zap.Logger
}

func NewRecordHandler[R entity.Record, D any, P any](svc RecordService[R, D, P], links LinkPublisher, logger *zap.Logger) *RecordHandler[R, D, P] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordHandler[R, D, P]{svc: svc, links: links, logger: logger}
}

// Register 注册路由。importLimit 用于导入接口限流，可为nil
func (h *RecordHandler[R, D, P]) Register(g *gin.RouterGroup, importLimit gin.HandlerFunc) {
	g.GET("", h.List)
	g.GET("/draft", h.Draft)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/export", h.Export)
	g.POST("/export/link", h.ExportLink)
	g.GET("/template", h.Template)
	g.POST("/import/preview", h.Preview)
	if importLimit != nil {
		g.POST("/import", importLimit, h.Import)
	} else {
		g.POST("/import", h.Import)
	}
}

// List GET /:kind?document_type=&page=
func (h *RecordHandler[R, D, P]) List(c *gin.Context) {
	docType, ok := getDocumentType(c)
	if !ok {
		return
	}
	page := GetPage(c)

	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	filtered := entity.FilterByCategory(items, docType)

	Success(c, ListResponse{
		Items: view.Paginate(filtered, page),
		Pagination: &Pagination{
			Page:       page,
			PageSize:   view.PageSize,
			Total:      len(filtered),
			TotalPages: view.PageCount(len(filtered)),
		},
	})
}

// Draft GET /:kind/draft 新建表单默认值
func (h *RecordHandler[R, D, P]) Draft(c *gin.Context) {
	Success(c, h.svc.Draft())
}

// Create POST /:kind
func (h *RecordHandler[R, D, P]) Create(c *gin.Context) {
	var draft D
	if err := c.ShouldBindJSON(&draft); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}

	created, err := h.svc.Create(writeContext(c), &draft)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, created)
}

// emptyChecker 补丁能判断自己是否为空
type emptyChecker interface {
	IsEmpty() bool
}

// Update PATCH /:kind/:id 空补丁返回400，不访问存储
func (h *RecordHandler[R, D, P]) Update(c *gin.Context) {
	var patch P
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, bindingMessage(err))
		return
	}
	if ec, ok := any(&patch).(emptyChecker); ok && ec.IsEmpty() {
		BadRequest(c, "patch must change at least one field")
		return
	}

	updated, err := h.svc.Update(writeContext(c), c.Param("id"), &patch)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, updated)
}

// Delete DELETE /:kind/:id?confirm=true
func (h *RecordHandler[R, D, P]) Delete(c *gin.Context) {
	if c.Query("confirm") != "true" {
		BadRequest(c, "deletion must be confirmed with confirm=true")
		return
	}
	id := c.Param("id")
	if err := h.svc.Delete(writeContext(c), id); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"id": id})
}

// Export GET /:kind/export?document_type=
func (h *RecordHandler[R, D, P]) Export(c *gin.Context) {
	docType, ok := getDocumentType(c)
	if !ok {
		return
	}
	data, filename, err := h.svc.Export(c.Request.Context(), docType)
	if err != nil {
		HandleError(c, err)
		return
	}
	writeXLSX(c, filename, data)
}

// ExportLink POST /:kind/export/link?document_type= 上传到对象存储并返回下载链接
func (h *RecordHandler[R, D, P]) ExportLink(c *gin.Context) {
	if h.links == nil {
		Error(c, CodeUnavailable, "object storage is not configured")
		return
	}
	docType, ok := getDocumentType(c)
	if !ok {
		return
	}
	ctx := writeContext(c)
	data, filename, err := h.svc.Export(ctx, docType)
	if err != nil {
		HandleError(c, err)
		return
	}
	link, err := h.links.Publish(ctx, filename, xlsxContentType, data)
	if err != nil {
		h.logger.Error("publish export failed", zap.String("file", filename), zap.Error(err))
		Error(c, CodeUnavailable, "publish export: "+err.Error())
		return
	}
	Success(c, link)
}

// Template GET /:kind/template?document_type=
func (h *RecordHandler[R, D, P]) Template(c *gin.Context) {
	docType, ok := getDocumentType(c)
	if !ok {
		return
	}
	data, filename, err := h.svc.Template(docType)
	if err != nil {
		HandleError(c, err)
		return
	}
	writeXLSX(c, filename, data)
}

// Preview POST /:kind/import/preview 只解析，不写入
func (h *RecordHandler[R, D, P]) Preview(c *gin.Context) {
	rows, ok := h.parseUpload(c)
	if !ok {
		return
	}
	Success(c, gin.H{"items": rows, "total": len(rows)})
}

// importRequest JSON导入请求体。Rows 不加 dive：导入行的枚举不校验，无效值回落到默认值
type importRequest[D any] struct {
	Rows []D `json:"rows"`
}

// Import POST /:kind/import 上传文件或JSON行，逐行提交，遇错即停
func (h *RecordHandler[R, D, P]) Import(c *gin.Context) {
	var rows []D
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		parsed, ok := h.parseUpload(c)
		if !ok {
			return
		}
		rows = parsed
	} else {
		var req importRequest[D]
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, bindingMessage(err))
			return
		}
		rows = req.Rows
	}

	committed, err := h.svc.Import(writeContext(c), rows)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"committed": committed, "total": len(rows)})
}

func (h *RecordHandler[R, D, P]) parseUpload(c *gin.Context) ([]D, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "a spreadsheet must be uploaded in the \"file\" field")
		return nil, false
	}
	defer file.Close()

	rows, err := h.svc.ParseSheet(file, header.Filename)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return rows, true
}

func writeXLSX(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Data(http.StatusOK, xlsxContentType, data)
}
