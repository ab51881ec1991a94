package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// ID 记录标识。远端存储的两个版本分别使用整数和字符串，统一按字符串处理
type ID string

func (id ID) String() string { return string(id) }

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// Date 不含时间的日期 (YYYY-MM-DD)
type Date struct {
	time.Time
}

// NewDate 截取t的年月日
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today 当天日期
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return NewDate(now())
}

// ParseDate 解析 YYYY-MM-DD，也接受带时间的RFC3339字符串
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// MustDate 测试和常量用
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// AddDays 加减天数
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{d.Time.AddDate(0, 0, n)}
}

// YearMonth 年月分组标签 (YYYY-MM)
func (d Date) YearMonth() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format("2006-01")
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value 实现 driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan 实现 sql.Scanner
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NewDate(v)
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
	default:
		return fmt.Errorf("failed to scan Date: %v", value)
	}
	return nil
}

// GormDataType 列类型
func (Date) GormDataType() string {
	return "date"
}

// DocumentType 文档类型
type DocumentType string

const (
	DocumentDashboard DocumentType = "dashboard"
	DocumentPlan      DocumentType = "plan"
)

// DocumentTypes 全部文档类型，按界面顺序
var DocumentTypes = []DocumentType{DocumentDashboard, DocumentPlan}

var documentLabels = map[DocumentType]string{
	DocumentDashboard: "대시보드",
	DocumentPlan:      "Plan",
}

// ParseDocumentType 宽松解析，未知值回落到 dashboard
func ParseDocumentType(s string) DocumentType {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, t := range DocumentTypes {
		if key == string(t) || key == strings.ToLower(documentLabels[t]) {
			return t
		}
	}
	return DocumentDashboard
}

func (t DocumentType) Valid() bool {
	_, ok := documentLabels[t]
	return ok
}

func (t DocumentType) Label() string {
	if l, ok := documentLabels[t]; ok {
		return l
	}
	return string(t)
}

// TaskType 作业区分（定期/非定期）
type TaskType string

const (
	TaskRegular   TaskType = "regular"
	TaskIrregular TaskType = "irregular"
)

var taskLabels = map[TaskType]string{
	TaskRegular:   "정기",
	TaskIrregular: "비정기",
}

// ParseTaskType 宽松解析，未知值回落到 regular
func ParseTaskType(s string) TaskType {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, label := range taskLabels {
		if key == string(t) || key == label {
			return t
		}
	}
	return TaskRegular
}

func (t TaskType) Valid() bool {
	_, ok := taskLabels[t]
	return ok
}

func (t TaskType) Label() string {
	if l, ok := taskLabels[t]; ok {
		return l
	}
	return string(t)
}

// Assignees 三个负责人字段
type Assignees struct {
	ITManager  string `json:"it_manager" mapstructure:"it_manager"`
	CNSManager string `json:"cns_manager" mapstructure:"cns_manager"`
	Developer  string `json:"developer" mapstructure:"developer"`
}

// Or 空字段用fallback补齐
func (a Assignees) Or(fallback Assignees) Assignees {
	if strings.TrimSpace(a.ITManager) == "" {
		a.ITManager = fallback.ITManager
	}
	if strings.TrimSpace(a.CNSManager) == "" {
		a.CNSManager = fallback.CNSManager
	}
	if strings.TrimSpace(a.Developer) == "" {
		a.Developer = fallback.Developer
	}
	return a
}

// Record 两类记录的公共约束
type Record interface {
	RecordID() string
	Category() DocumentType
}

// FilterByCategory 按文档类型过滤，空类型返回原列表
func FilterByCategory[R Record](records []R, t DocumentType) []R {
	if t == "" {
		return records
	}
	out := make([]R, 0, len(records))
	for _, r := range records {
		if r.Category() == t {
			out = append(out, r)
		}
	}
	return out
}
