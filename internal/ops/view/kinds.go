package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
)

// ActivityKind SM活动表单。要求日变化时作业日 = 要求日 + offsetDays
func ActivityKind(offsetDays int, newDraft func() entity.ActivityDraft) Kind[entity.Activity, entity.ActivityDraft] {
	return Kind[entity.Activity, entity.ActivityDraft]{
		Name:     "activities",
		NewDraft: newDraft,
		DraftOf:  func(a entity.Activity) entity.ActivityDraft { return a.ActivityDraft },
		SetField: func(d entity.ActivityDraft, field, value string) (entity.ActivityDraft, error) {
			return setActivityField(d, field, value, offsetDays)
		},
		DeletePrompt: "정말로 이 활동을 삭제하시겠습니까?",
	}
}

// InquiryKind 现业咨询表单。要求日变化时答复日 = 要求日 + offsetDays
func InquiryKind(offsetDays int, newDraft func() entity.InquiryDraft) Kind[entity.Inquiry, entity.InquiryDraft] {
	return Kind[entity.Inquiry, entity.InquiryDraft]{
		Name:     "inquiries",
		NewDraft: newDraft,
		DraftOf:  func(i entity.Inquiry) entity.InquiryDraft { return i.InquiryDraft },
		SetField: func(d entity.InquiryDraft, field, value string) (entity.InquiryDraft, error) {
			return setInquiryField(d, field, value, offsetDays)
		},
		DeletePrompt: "정말로 이 문의를 삭제하시겠습니까?",
	}
}

func setActivityField(d entity.ActivityDraft, field, value string, offsetDays int) (entity.ActivityDraft, error) {
	switch field {
	case "document_type":
		t, err := documentType(value)
		if err != nil {
			return d, err
		}
		d.DocumentType = t
	case "task_type":
		t, err := taskType(value)
		if err != nil {
			return d, err
		}
		d.TaskType = t
	case "work_type":
		d.WorkType = value
	case "title":
		d.Title = value
	case "requester":
		d.Requester = value
	case "request_date":
		date, err := requiredDate(field, value)
		if err != nil {
			return d, err
		}
		d = d.WithRequestDate(date, offsetDays)
	case "work_date":
		date, err := requiredDate(field, value)
		if err != nil {
			return d, err
		}
		d.WorkDate = date
	case "it_manager":
		d.ITManager = value
	case "cns_manager":
		d.CNSManager = value
	case "developer":
		d.Developer = value
	case "result":
		d.Result = value
	case "seq_no":
		if strings.TrimSpace(value) == "" {
			d.SeqNo = nil
			break
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return d, &ValidationError{Field: field, Message: "must be a whole number"}
		}
		d.SeqNo = &n
	default:
		return d, unknownField(field)
	}
	return d, nil
}

func setInquiryField(d entity.InquiryDraft, field, value string, offsetDays int) (entity.InquiryDraft, error) {
	switch field {
	case "document_type":
		t, err := documentType(value)
		if err != nil {
			return d, err
		}
		d.DocumentType = t
	case "inquiry_method":
		d.InquiryMethod = value
	case "inquiry_type":
		d.InquiryType = value
	case "department":
		d.Department = value
	case "inquiry_content":
		d.InquiryContent = value
	case "requester":
		d.Requester = value
	case "request_date":
		date, err := requiredDate(field, value)
		if err != nil {
			return d, err
		}
		d = d.WithRequestDate(date, offsetDays)
	case "response_date":
		date, err := requiredDate(field, value)
		if err != nil {
			return d, err
		}
		d.ResponseDate = date
	case "it_manager":
		d.ITManager = value
	case "cns_manager":
		d.CNSManager = value
	case "developer":
		d.Developer = value
	default:
		return d, unknownField(field)
	}
	return d, nil
}

// 表单里枚举必须是已知值，不做回落
func documentType(v string) (entity.DocumentType, error) {
	key := strings.TrimSpace(v)
	for _, t := range entity.DocumentTypes {
		if strings.EqualFold(key, string(t)) || key == t.Label() {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "document_type", Message: fmt.Sprintf("unknown document type %q", v)}
}

func taskType(v string) (entity.TaskType, error) {
	key := strings.TrimSpace(v)
	for _, t := range []entity.TaskType{entity.TaskRegular, entity.TaskIrregular} {
		if strings.EqualFold(key, string(t)) || key == t.Label() {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "task_type", Message: fmt.Sprintf("unknown task type %q", v)}
}

func requiredDate(field, v string) (entity.Date, error) {
	date, err := entity.ParseDate(v)
	if err != nil {
		return entity.Date{}, &ValidationError{Field: field, Message: "expected YYYY-MM-DD"}
	}
	if date.IsZero() {
		return entity.Date{}, &ValidationError{Field: field, Message: "is required"}
	}
	return date, nil
}

func unknownField(field string) error {
	return &ValidationError{Field: field, Message: "unknown or read-only field"}
}
