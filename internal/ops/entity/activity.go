package entity

import (
	"bytes"
	"encoding/json"
	"time"
)

// ActivityDefaults 活动的组织默认值
type ActivityDefaults struct {
	Assignees          Assignees `mapstructure:"assignees"`
	WorkDateOffsetDays int       `mapstructure:"work_date_offset_days"`
}

// DefaultActivityAssignees 活动默认负责人
var DefaultActivityAssignees = Assignees{
	ITManager:  "한상욱",
	CNSManager: "한상명",
	Developer:  "위승빈",
}

// ActivityDraft SM活动的可编辑字段（不含ID和时间戳）
type ActivityDraft struct {
	DocumentType DocumentType `json:"document_type" gorm:"size:16;not null;index" binding:"omitempty,doctype"`
	TaskType     TaskType     `json:"task_type" gorm:"size:16;not null" binding:"omitempty,tasktype"`
	WorkType     string       `json:"work_type" gorm:"size:128"`
	Title        string       `json:"title" gorm:"type:text"`
	Requester    string       `json:"requester" gorm:"size:64"`
	RequestDate  Date         `json:"request_date" gorm:"index"`
	WorkDate     Date         `json:"work_date"`
	ITManager    string       `json:"it_manager" gorm:"size:64"`
	CNSManager   string       `json:"cns_manager" gorm:"size:64"`
	Developer    string       `json:"developer" gorm:"size:64"`
	Result       string       `json:"result" gorm:"type:text"`
	SeqNo        *int         `json:"seq_no,omitempty"`
	YearMonth    string       `json:"year_month,omitempty" gorm:"size:7;index"`
}

// Activity SM活动
type Activity struct {
	ID ID `json:"id,omitempty" gorm:"primaryKey;size:36"`
	ActivityDraft
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Activity) TableName() string {
	return "sm_activities"
}

func (a Activity) RecordID() string       { return a.ID.String() }
func (a Activity) Category() DocumentType { return a.DocumentType }

// NewActivityDraft 新建表单的默认草稿：两个日期都是当天
func NewActivityDraft(today Date, defaults ActivityDefaults) ActivityDraft {
	a := defaults.Assignees.Or(DefaultActivityAssignees)
	return ActivityDraft{
		DocumentType: DocumentDashboard,
		TaskType:     TaskRegular,
		RequestDate:  today,
		WorkDate:     today,
		ITManager:    a.ITManager,
		CNSManager:   a.CNSManager,
		Developer:    a.Developer,
		YearMonth:    today.YearMonth(),
	}
}

// WithImportDefaults 导入行的缺省值：缺失日期取当天，空负责人取组织默认值
func (d ActivityDraft) WithImportDefaults(today Date, defaults ActivityDefaults) ActivityDraft {
	if d.RequestDate.IsZero() {
		d.RequestDate = today
	}
	if d.WorkDate.IsZero() {
		d.WorkDate = today
	}
	a := Assignees{ITManager: d.ITManager, CNSManager: d.CNSManager, Developer: d.Developer}.
		Or(defaults.Assignees.Or(DefaultActivityAssignees))
	d.ITManager, d.CNSManager, d.Developer = a.ITManager, a.CNSManager, a.Developer
	return d.Normalize()
}

// WithRequestDate 设置要求日，并重新计算作业日和年月标签。
// 作业日总是被覆盖。
func (d ActivityDraft) WithRequestDate(date Date, offsetDays int) ActivityDraft {
	d.RequestDate = date
	d.WorkDate = date.AddDays(offsetDays)
	d.YearMonth = date.YearMonth()
	return d
}

// Normalize 枚举字段回落到默认值，年月标签按要求日重算
func (d ActivityDraft) Normalize() ActivityDraft {
	if !d.DocumentType.Valid() {
		d.DocumentType = ParseDocumentType(string(d.DocumentType))
	}
	if !d.TaskType.Valid() {
		d.TaskType = ParseTaskType(string(d.TaskType))
	}
	d.YearMonth = d.RequestDate.YearMonth()
	return d
}

// Patch 全部可编辑字段的补丁（编辑表单整体替换）
func (d ActivityDraft) Patch() *ActivityPatch {
	d = d.Normalize()
	return &ActivityPatch{
		DocumentType: &d.DocumentType,
		TaskType:     &d.TaskType,
		WorkType:     &d.WorkType,
		Title:        &d.Title,
		Requester:    &d.Requester,
		RequestDate:  &d.RequestDate,
		WorkDate:     &d.WorkDate,
		ITManager:    &d.ITManager,
		CNSManager:   &d.CNSManager,
		Developer:    &d.Developer,
		Result:       &d.Result,
		SeqNo:        d.SeqNo,
		ClearSeqNo:   d.SeqNo == nil,
		YearMonth:    &d.YearMonth,
	}
}

// ActivityPatch 部分更新：只有非nil字段会被修改
type ActivityPatch struct {
	DocumentType *DocumentType `json:"document_type,omitempty" binding:"omitempty,doctype"`
	TaskType     *TaskType     `json:"task_type,omitempty" binding:"omitempty,tasktype"`
	WorkType     *string       `json:"work_type,omitempty"`
	Title        *string       `json:"title,omitempty"`
	Requester    *string       `json:"requester,omitempty"`
	RequestDate  *Date         `json:"request_date,omitempty"`
	WorkDate     *Date         `json:"work_date,omitempty"`
	ITManager    *string       `json:"it_manager,omitempty"`
	CNSManager   *string       `json:"cns_manager,omitempty"`
	Developer    *string       `json:"developer,omitempty"`
	Result       *string       `json:"result,omitempty"`
	SeqNo        *int          `json:"seq_no,omitempty"`
	YearMonth    *string       `json:"year_month,omitempty"`

	// ClearSeqNo 为true且SeqNo为nil时把序号置空（JSON里的 "seq_no": null）
	ClearSeqNo bool `json:"-"`
}

// MarshalJSON 需要置空序号时显式输出 "seq_no": null
func (p ActivityPatch) MarshalJSON() ([]byte, error) {
	type plain ActivityPatch
	if !p.ClearSeqNo || p.SeqNo != nil {
		return json.Marshal(plain(p))
	}
	return json.Marshal(struct {
		plain
		SeqNo *int `json:"seq_no"`
	}{plain: plain(p)})
}

// UnmarshalJSON 区分缺省的 seq_no 和显式的 null
func (p *ActivityPatch) UnmarshalJSON(data []byte) error {
	type plain ActivityPatch
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ActivityPatch(v)
	if m, ok := raw["seq_no"]; ok && bytes.Equal(bytes.TrimSpace(m), []byte("null")) {
		p.ClearSeqNo = true
	}
	return nil
}

// IsEmpty 补丁没有任何要修改的字段
func (p *ActivityPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Derive 补丁里改了要求日但没带年月时，补上年月标签
func (p *ActivityPatch) Derive() {
	if p.RequestDate != nil && p.YearMonth == nil {
		ym := p.RequestDate.YearMonth()
		p.YearMonth = &ym
	}
}

// Columns 补丁转为列更新map（数据库后端用）
func (p *ActivityPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.DocumentType != nil {
		cols["document_type"] = *p.DocumentType
	}
	if p.TaskType != nil {
		cols["task_type"] = *p.TaskType
	}
	if p.WorkType != nil {
		cols["work_type"] = *p.WorkType
	}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Requester != nil {
		cols["requester"] = *p.Requester
	}
	if p.RequestDate != nil {
		cols["request_date"] = *p.RequestDate
	}
	if p.WorkDate != nil {
		cols["work_date"] = *p.WorkDate
	}
	if p.ITManager != nil {
		cols["it_manager"] = *p.ITManager
	}
	if p.CNSManager != nil {
		cols["cns_manager"] = *p.CNSManager
	}
	if p.Developer != nil {
		cols["developer"] = *p.Developer
	}
	if p.Result != nil {
		cols["result"] = *p.Result
	}
	if p.SeqNo != nil {
		cols["seq_no"] = *p.SeqNo
	} else if p.ClearSeqNo {
		cols["seq_no"] = nil
	}
	if p.YearMonth != nil {
		cols["year_month"] = *p.YearMonth
	}
	return cols
}
