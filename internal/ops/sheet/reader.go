package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readRows 读取第一个工作表的全部行（含表头）
func readRows(r io.Reader, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return nil, &CodecError{Op: "open", Err: ErrLegacyXLS}
	case ".csv":
		return readCSV(r)
	default:
		return readWorkbook(r)
	}
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &CodecError{Op: "open", Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil
	}
	// raw values keep date cells as serial numbers instead of locale formatted text
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &CodecError{Op: "read", Err: err}
	}
	return rows, nil
}

// readCSV 读取CSV。UTF-8 BOM去掉，非UTF-8按CP949解码（韩文Excel另存的CSV）
func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &CodecError{Op: "read", Err: err}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, korean.EUCKR.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &CodecError{Op: "read", Err: err}
	}
	return rows, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006.1.2",
	"1/2/2006",
	"01/02/2006",
}

// parseCellDate 解析日期单元格：常见文本格式或Excel序列号
func parseCellDate(s string) (entity.Date, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n <= 0 || n > 2958465 || math.IsNaN(n) {
			return entity.Date{}, fmt.Errorf("invalid date serial %q", s)
		}
		t, err := excelize.ExcelDateToTime(n, false)
		if err != nil {
			return entity.Date{}, fmt.Errorf("invalid date serial %q: %w", s, err)
		}
		return entity.NewDate(t), nil
	}

	// RFC 3339 and "YYYY-MM-DD hh:mm:ss" prefixes
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	s = strings.TrimSuffix(s, ".")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return entity.NewDate(t), nil
		}
	}
	return entity.Date{}, fmt.Errorf("invalid date %q", s)
}
