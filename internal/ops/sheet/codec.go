package sheet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
)

// Kind 记录种类，决定表头、文件名和工作表名
type Kind string

const (
	KindActivity Kind = "activities"
	KindInquiry  Kind = "inquiries"
)

// ErrLegacyXLS 旧版二进制.xls不支持
var ErrLegacyXLS = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx")

// CodecError 文件无法读取或单元格无法解析
type CodecError struct {
	Op     string // open / read / parse / write
	Row    int    // 1-based sheet row, 0 when not row specific
	Column string
	Err    error
}

func (e *CodecError) Error() string {
	var b strings.Builder
	b.WriteString("sheet ")
	b.WriteString(e.Op)
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *CodecError) Unwrap() error { return e.Err }

// AsCodecError 判断err链中是否有CodecError
func AsCodecError(err error) (*CodecError, bool) {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Codec 表格编解码器。纯转换，不访问存储
type Codec struct {
	activity entity.ActivityDefaults
	inquiry  entity.InquiryDefaults
	now      func() time.Time
}

// NewCodec 创建编解码器，now为nil时使用time.Now
func NewCodec(activity entity.ActivityDefaults, inquiry entity.InquiryDefaults, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{activity: activity, inquiry: inquiry, now: now}
}

func (c *Codec) today() entity.Date {
	return entity.Today(c.now)
}

// FileName 下载文件名
func FileName(kind Kind, docType entity.DocumentType, template bool) string {
	base := "sm-activities"
	if kind == KindInquiry {
		base = "business-inquiries"
	}
	if template {
		base = "sm-activity-template"
		if kind == KindInquiry {
			base = "business-inquiry-template"
		}
	}
	if docType != "" {
		base += "-" + string(docType)
	}
	return base + ".xlsx"
}

func sheetTitle(kind Kind, docType entity.DocumentType, template bool) string {
	title := "SM Activities"
	switch {
	case kind == KindInquiry && template:
		title = "Business Inquiry Template"
	case kind == KindInquiry:
		title = "Business Inquiries"
	case template:
		title = "SM Activity Template"
	}
	if docType != "" {
		title += " - " + docType.Label()
	}
	// excel sheet names are limited to 31 characters
	if r := []rune(title); len(r) > 31 {
		title = string(r[:31])
	}
	return title
}
