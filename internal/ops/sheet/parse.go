package sheet

import (
	"io"
	"strings"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
)

// ParseActivities 解析SM活动表格。每个识别的字段取单元格值，空单元格取默认值
func (c *Codec) ParseActivities(r io.Reader, filename string) ([]entity.ActivityDraft, error) {
	rows, err := readRows(r, filename)
	if err != nil {
		return nil, err
	}
	today := c.today()
	defaults := c.activity
	return parseRows(rows, activityColumns, func() entity.ActivityDraft {
		return entity.NewActivityDraft(today, defaults)
	}, entity.ActivityDraft.Normalize)
}

// ParseInquiries 解析现业咨询表格
func (c *Codec) ParseInquiries(r io.Reader, filename string) ([]entity.InquiryDraft, error) {
	rows, err := readRows(r, filename)
	if err != nil {
		return nil, err
	}
	today := c.today()
	defaults := c.inquiry
	return parseRows(rows, inquiryColumns, func() entity.InquiryDraft {
		return entity.NewInquiryDraft(today, defaults)
	}, entity.InquiryDraft.Normalize)
}

func parseRows[D any](rows [][]string, cols []column[D], blank func() D, finish func(D) D) ([]D, error) {
	out := []D{}
	if len(rows) < 2 {
		return out, nil
	}

	mapping := mapHeader(rows[0], cols)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		d := blank()
		for j, cell := range row {
			if j >= len(mapping) || mapping[j] < 0 {
				continue
			}
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			col := cols[mapping[j]]
			if err := col.set(&d, v); err != nil {
				return nil, &CodecError{Op: "parse", Row: i + 2, Column: rows[0][j], Err: err}
			}
		}
		out = append(out, finish(d))
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
