package entity

import "time"

// InquiryDefaults 现业咨询的组织默认值
type InquiryDefaults struct {
	Assignees              Assignees `mapstructure:"assignees"`
	ResponseDateOffsetDays int       `mapstructure:"response_date_offset_days"`
}

// DefaultInquiryAssignees 咨询默认负责人
var DefaultInquiryAssignees = Assignees{
	ITManager:  "한상욱",
	CNSManager: "이정인",
	Developer:  "위승빈",
}

// InquiryDraft 现业咨询的可编辑字段
type InquiryDraft struct {
	DocumentType   DocumentType `json:"document_type" gorm:"size:16;not null;index" binding:"omitempty,doctype"`
	InquiryMethod  string       `json:"inquiry_method" gorm:"size:64"`
	InquiryType    string       `json:"inquiry_type" gorm:"size:64"`
	Department     string       `json:"department" gorm:"size:128"`
	InquiryContent string       `json:"inquiry_content" gorm:"type:text"`
	Requester      string       `json:"requester" gorm:"size:64"`
	RequestDate    Date         `json:"request_date" gorm:"index"`
	ResponseDate   Date         `json:"response_date"`
	ITManager      string       `json:"it_manager" gorm:"size:64"`
	CNSManager     string       `json:"cns_manager" gorm:"size:64"`
	Developer      string       `json:"developer" gorm:"size:64"`
}

// Inquiry 现业咨询
type Inquiry struct {
	ID ID `json:"id,omitempty" gorm:"primaryKey;size:36"`
	InquiryDraft
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Inquiry) TableName() string {
	return "business_inquiries"
}

func (i Inquiry) RecordID() string       { return i.ID.String() }
func (i Inquiry) Category() DocumentType { return i.DocumentType }

// NewInquiryDraft 新建表单的默认草稿
func NewInquiryDraft(today Date, defaults InquiryDefaults) InquiryDraft {
	a := defaults.Assignees.Or(DefaultInquiryAssignees)
	return InquiryDraft{
		DocumentType: DocumentDashboard,
		RequestDate:  today,
		ResponseDate: today,
		ITManager:    a.ITManager,
		CNSManager:   a.CNSManager,
		Developer:    a.Developer,
	}
}

// WithImportDefaults 导入行的缺省值：缺失日期取当天，空负责人取组织默认值
func (d InquiryDraft) WithImportDefaults(today Date, defaults InquiryDefaults) InquiryDraft {
	if d.RequestDate.IsZero() {
		d.RequestDate = today
	}
	if d.ResponseDate.IsZero() {
		d.ResponseDate = today
	}
	a := Assignees{ITManager: d.ITManager, CNSManager: d.CNSManager, Developer: d.Developer}.
		Or(defaults.Assignees.Or(DefaultInquiryAssignees))
	d.ITManager, d.CNSManager, d.Developer = a.ITManager, a.CNSManager, a.Developer
	return d.Normalize()
}

// WithRequestDate 设置要求日并覆盖答复日
func (d InquiryDraft) WithRequestDate(date Date, offsetDays int) InquiryDraft {
	d.RequestDate = date
	d.ResponseDate = date.AddDays(offsetDays)
	return d
}

func (d InquiryDraft) Normalize() InquiryDraft {
	if !d.DocumentType.Valid() {
		d.DocumentType = ParseDocumentType(string(d.DocumentType))
	}
	return d
}

func (d InquiryDraft) Patch() *InquiryPatch {
	d = d.Normalize()
	return &InquiryPatch{
		DocumentType:   &d.DocumentType,
		InquiryMethod:  &d.InquiryMethod,
		InquiryType:    &d.InquiryType,
		Department:     &d.Department,
		InquiryContent: &d.InquiryContent,
		Requester:      &d.Requester,
		RequestDate:    &d.RequestDate,
		ResponseDate:   &d.ResponseDate,
		ITManager:      &d.ITManager,
		CNSManager:     &d.CNSManager,
		Developer:      &d.Developer,
	}
}

// InquiryPatch 部分更新
type InquiryPatch struct {
	DocumentType   *DocumentType `json:"document_type,omitempty" binding:"omitempty,doctype"`
	InquiryMethod  *string       `json:"inquiry_method,omitempty"`
	InquiryType    *string       `json:"inquiry_type,omitempty"`
	Department     *string       `json:"department,omitempty"`
	InquiryContent *string       `json:"inquiry_content,omitempty"`
	Requester      *string       `json:"requester,omitempty"`
	RequestDate    *Date         `json:"request_date,omitempty"`
	ResponseDate   *Date         `json:"response_date,omitempty"`
	ITManager      *string       `json:"it_manager,omitempty"`
	CNSManager     *string       `json:"cns_manager,omitempty"`
	Developer      *string       `json:"developer,omitempty"`
}

func (p *InquiryPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.DocumentType != nil {
		cols["document_type"] = *p.DocumentType
	}
	if p.InquiryMethod != nil {
		cols["inquiry_method"] = *p.InquiryMethod
	}
	if p.InquiryType != nil {
		cols["inquiry_type"] = *p.InquiryType
	}
	if p.Department != nil {
		cols["department"] = *p.Department
	}
	if p.InquiryContent != nil {
		cols["inquiry_content"] = *p.InquiryContent
	}
	if p.Requester != nil {
		cols["requester"] = *p.Requester
	}
	if p.RequestDate != nil {
		cols["request_date"] = *p.RequestDate
	}
	if p.ResponseDate != nil {
		cols["response_date"] = *p.ResponseDate
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
	return cols
}

// IsEmpty 补丁没有任何要修改的字段
func (p *InquiryPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}
