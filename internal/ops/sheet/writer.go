package sheet

import (
	"bytes"
	"fmt"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/xuri/excelize/v2"
)

// FormatActivities 导出SM活动，只包含docType类别（空为全部）
func (c *Codec) FormatActivities(records []entity.Activity, docType entity.DocumentType) ([]byte, error) {
	records = entity.FilterByCategory(records, docType)
	drafts := make([]entity.ActivityDraft, len(records))
	for i := range records {
		drafts[i] = records[i].ActivityDraft
	}
	return writeSheet(sheetTitle(KindActivity, docType, false), activityColumns, drafts)
}

// FormatInquiries 导出现业咨询
func (c *Codec) FormatInquiries(records []entity.Inquiry, docType entity.DocumentType) ([]byte, error) {
	records = entity.FilterByCategory(records, docType)
	drafts := make([]entity.InquiryDraft, len(records))
	for i := range records {
		drafts[i] = records[i].InquiryDraft
	}
	return writeSheet(sheetTitle(KindInquiry, docType, false), inquiryColumns, drafts)
}

// ActivityTemplate 导入模板：表头加一行示例
func (c *Codec) ActivityTemplate(docType entity.DocumentType) ([]byte, error) {
	d := entity.NewActivityDraft(c.today(), c.activity)
	if docType.Valid() {
		d.DocumentType = docType
	}
	d.WorkType = "예시: 대시보드 업데이트"
	d.Title = "예시: 월간 대시보드 업데이트"
	d.Requester = "예시: 홍길동"
	d.Result = "예시: 완료"
	return writeSheet(sheetTitle(KindActivity, docType, true), activityColumns, []entity.ActivityDraft{d})
}

// InquiryTemplate 导入模板
func (c *Codec) InquiryTemplate(docType entity.DocumentType) ([]byte, error) {
	d := entity.NewInquiryDraft(c.today(), c.inquiry)
	if docType.Valid() {
		d.DocumentType = docType
	}
	d.InquiryMethod = "예시: 이메일"
	d.InquiryType = "예시: 기능 문의"
	d.Department = "예시: 마케팅팀"
	d.InquiryContent = "예시: 대시보드 접근 권한 요청"
	d.Requester = "예시: 홍길동"
	return writeSheet(sheetTitle(KindInquiry, docType, true), inquiryColumns, []entity.InquiryDraft{d})
}

func writeSheet[D any](sheet string, cols []column[D], rows []D) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, &CodecError{Op: "write", Err: err}
	}

	// 表头样式: 加粗
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, c := range cols {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, c.label)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
		f.SetColWidth(sheet, col, col, c.width)
	}

	for r := range rows {
		for i, c := range cols {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, r+2), c.get(&rows[r])); err != nil {
				return nil, &CodecError{Op: "write", Row: r + 2, Column: c.label, Err: err}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, &CodecError{Op: "write", Err: err}
	}
	return buf.Bytes(), nil
}
