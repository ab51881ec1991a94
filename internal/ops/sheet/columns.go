package sheet

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
)

// column 一列的定义：内部字段名、本地化表头、列宽、读写函数
type column[D any] struct {
	field string
	label string
	width float64
	get   func(d *D) interface{}
	// set 只在单元格非空时调用
	set func(d *D, value string) error
}

func textColumn[D any](field, label string, width float64, ptr func(d *D) *string) column[D] {
	return column[D]{
		field: field,
		label: label,
		width: width,
		get:   func(d *D) interface{} { return *ptr(d) },
		set: func(d *D, v string) error {
			*ptr(d) = v
			return nil
		},
	}
}

func dateColumn[D any](field, label string, ptr func(d *D) *entity.Date) column[D] {
	return column[D]{
		field: field,
		label: label,
		width: 12,
		get:   func(d *D) interface{} { return ptr(d).String() },
		set: func(d *D, v string) error {
			date, err := parseCellDate(v)
			if err != nil {
				return err
			}
			*ptr(d) = date
			return nil
		},
	}
}

var activityColumns = []column[entity.ActivityDraft]{
	{
		field: "seq_no",
		label: "순번",
		width: 6,
		get: func(d *entity.ActivityDraft) interface{} {
			if d.SeqNo == nil {
				return ""
			}
			return *d.SeqNo
		},
		set: func(d *entity.ActivityDraft, v string) error {
			if n, err := strconv.Atoi(strings.TrimSuffix(v, ".0")); err == nil {
				d.SeqNo = &n
			}
			return nil
		},
	},
	{
		field: "year_month",
		label: "년월",
		width: 9,
		get:   func(d *entity.ActivityDraft) interface{} { return d.RequestDate.YearMonth() },
		// always derived from request_date
		set: func(*entity.ActivityDraft, string) error { return nil },
	},
	{
		field: "document_type",
		label: "문서 유형",
		width: 10,
		get:   func(d *entity.ActivityDraft) interface{} { return d.DocumentType.Label() },
		set: func(d *entity.ActivityDraft, v string) error {
			d.DocumentType = entity.ParseDocumentType(v)
			return nil
		},
	},
	{
		field: "task_type",
		label: "구분",
		width: 8,
		get:   func(d *entity.ActivityDraft) interface{} { return d.TaskType.Label() },
		set: func(d *entity.ActivityDraft, v string) error {
			d.TaskType = entity.ParseTaskType(v)
			return nil
		},
	},
	textColumn("work_type", "작업유형", 16, func(d *entity.ActivityDraft) *string { return &d.WorkType }),
	textColumn("title", "TASK 제목", 36, func(d *entity.ActivityDraft) *string { return &d.Title }),
	textColumn("requester", "요청자", 10, func(d *entity.ActivityDraft) *string { return &d.Requester }),
	dateColumn("request_date", "요청일", func(d *entity.ActivityDraft) *entity.Date { return &d.RequestDate }),
	dateColumn("work_date", "작업일", func(d *entity.ActivityDraft) *entity.Date { return &d.WorkDate }),
	textColumn("it_manager", "IT 담당자", 10, func(d *entity.ActivityDraft) *string { return &d.ITManager }),
	textColumn("cns_manager", "CNS 담당자", 10, func(d *entity.ActivityDraft) *string { return &d.CNSManager }),
	textColumn("developer", "개발자", 10, func(d *entity.ActivityDraft) *string { return &d.Developer }),
	textColumn("result", "결과", 30, func(d *entity.ActivityDraft) *string { return &d.Result }),
}

var inquiryColumns = []column[entity.InquiryDraft]{
	{
		field: "document_type",
		label: "문서 유형",
		width: 10,
		get:   func(d *entity.InquiryDraft) interface{} { return d.DocumentType.Label() },
		set: func(d *entity.InquiryDraft, v string) error {
			d.DocumentType = entity.ParseDocumentType(v)
			return nil
		},
	},
	textColumn("inquiry_method", "문의방법", 12, func(d *entity.InquiryDraft) *string { return &d.InquiryMethod }),
	textColumn("inquiry_type", "문의유형", 14, func(d *entity.InquiryDraft) *string { return &d.InquiryType }),
	textColumn("department", "요청부서", 14, func(d *entity.InquiryDraft) *string { return &d.Department }),
	textColumn("inquiry_content", "문의사항", 40, func(d *entity.InquiryDraft) *string { return &d.InquiryContent }),
	textColumn("requester", "요청자", 10, func(d *entity.InquiryDraft) *string { return &d.Requester }),
	dateColumn("request_date", "요청일", func(d *entity.InquiryDraft) *entity.Date { return &d.RequestDate }),
	dateColumn("response_date", "답변일", func(d *entity.InquiryDraft) *entity.Date { return &d.ResponseDate }),
	textColumn("it_manager", "IT 담당자", 10, func(d *entity.InquiryDraft) *string { return &d.ITManager }),
	textColumn("cns_manager", "CNS 담당자", 10, func(d *entity.InquiryDraft) *string { return &d.CNSManager }),
	textColumn("developer", "개발자", 10, func(d *entity.InquiryDraft) *string { return &d.Developer }),
}

// headerKey 表头比较键：忽略大小写和空白
func headerKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\ufeff' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// mapHeader 把表头行映射为列定义下标，无法识别的列为-1
func mapHeader[D any](header []string, cols []column[D]) []int {
	index := make(map[string]int, len(cols)*2)
	for i, c := range cols {
		index[headerKey(c.field)] = i
		index[headerKey(c.label)] = i
	}
	out := make([]int, len(header))
	for i, h := range header {
		if j, ok := index[headerKey(h)]; ok {
			out[i] = j
		} else {
			out[i] = -1
		}
	}
	return out
}
