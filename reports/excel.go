package reports

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheetName = "Sheet1"
	minColumnWidth   = 10
	maxColumnWidth   = 60
)

type ExcelExporter struct {
	file      *excelize.File
	sheetName string
	headers   []string
	hasHeader bool
	rowIndex  int
	widths    []int
}

func NewExcelExporter(sheetName string) (*ExcelExporter, error) {
	file := excelize.NewFile()
	if sheetName != "" && sheetName != defaultSheetName {
		if err := file.SetSheetName(defaultSheetName, sheetName); err != nil {
			return nil, fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else {
		sheetName = defaultSheetName
	}

	return &ExcelExporter{
		file:      file,
		sheetName: sheetName,
		rowIndex:  1,
	}, nil
}

func (e *ExcelExporter) WriteHeader(headers []string, style *excelize.Style) error {
	if e.hasHeader {
		return fmt.Errorf("header has already been written")
	}

	if err := e.writeRow(headers); err != nil {
		return err
	}

	if style != nil && len(headers) > 0 {
		styleID, err := e.file.NewStyle(style)
		if err != nil {
			return fmt.Errorf("failed to create style: %w", err)
		}
		startCell, _ := excelize.CoordinatesToCellName(1, e.rowIndex)
		endCell, _ := excelize.CoordinatesToCellName(len(headers), e.rowIndex)
		if err := e.file.SetCellStyle(e.sheetName, startCell, endCell, styleID); err != nil {
			return fmt.Errorf("failed to apply style to header: %w", err)
		}
	}

	e.headers = headers
	e.hasHeader = true
	e.widths = make([]int, len(headers))
	e.trackWidths(headers)
	e.rowIndex++
	return nil
}

func (e *ExcelExporter) WriteData(data []string) error {
	if err := checkRow(e.hasHeader, e.headers, data); err != nil {
		return err
	}

	if err := e.writeRow(data); err != nil {
		return err
	}
	e.trackWidths(data)
	e.rowIndex++
	return nil
}

func (e *ExcelExporter) writeRow(values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, e.rowIndex)
	if err != nil {
		return fmt.Errorf("failed to resolve row %d: %w", e.rowIndex, err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := e.file.SetSheetRow(e.sheetName, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", e.rowIndex, err)
	}
	return nil
}

func (e *ExcelExporter) trackWidths(values []string) {
	for i, v := range values {
		if n := utf8.RuneCountInString(v); n > e.widths[i] {
			e.widths[i] = n
		}
	}
}

// WriteTo sizes the columns to their content and writes the workbook to w.
func (e *ExcelExporter) WriteTo(w io.Writer) (int64, error) {
	for i, width := range e.widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return 0, err
		}
		width = min(max(width+2, minColumnWidth), maxColumnWidth)
		if err := e.file.SetColWidth(e.sheetName, name, name, float64(width)); err != nil {
			return 0, fmt.Errorf("failed to set column width for %s: %w", name, err)
		}
	}
	return e.file.WriteTo(w)
}

func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

func CreateHeaderStyle(backgroundColor string) *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{backgroundColor},
			Pattern: 1,
		},
		Font: &excelize.Font{
			Bold: true,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	}
}
