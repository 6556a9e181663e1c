package audit

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel sheet name length limit.
const maxSheetName = 31

// ExcelizeWriter implements ExcelWriter with excelize.
type ExcelizeWriter struct {
	file       *excelize.File
	sheet      string
	row        int
	moneyStyle int
}

// NewExcelizeWriter creates a workbook with no active sheet.
func NewExcelizeWriter() ExcelWriter {
	return &ExcelizeWriter{file: excelize.NewFile()}
}

// AddSheet makes name the active sheet, reusing the default sheet first.
func (w *ExcelizeWriter) AddSheet(name string) error {
	if len([]rune(name)) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}

	if w.sheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.sheet = name
	w.row = 1
	return nil
}

// WriteHeader writes bold column headers and freezes the header row.
func (w *ExcelizeWriter) WriteHeader(columns []string) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}

	cells := make([]interface{}, len(columns))
	for i, c := range columns {
		cells[i] = c
	}
	if err := w.writeCells(cells); err != nil {
		return err
	}

	if style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		first, _ := excelize.CoordinatesToCellName(1, w.row)
		last, _ := excelize.CoordinatesToCellName(len(columns), w.row)
		_ = w.file.SetCellStyle(w.sheet, first, last, style)
	}
	_ = w.file.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      w.row,
		TopLeftCell: fmt.Sprintf("A%d", w.row+1),
		ActivePane:  "bottomLeft",
	})

	w.row++
	return nil
}

// WriteRow writes one data row. float64 cells get a two-decimal format.
func (w *ExcelizeWriter) WriteRow(row []interface{}) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}
	if err := w.writeCells(row); err != nil {
		return err
	}

	for i, v := range row {
		if _, ok := v.(float64); !ok {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, w.row)
		_ = w.file.SetCellStyle(w.sheet, cell, cell, w.money())
	}

	w.row++
	return nil
}

func (w *ExcelizeWriter) writeCells(values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *ExcelizeWriter) money() int {
	if w.moneyStyle == 0 {
		format := "#,##0.00"
		w.moneyStyle, _ = w.file.NewStyle(&excelize.Style{CustomNumFmt: &format})
	}
	return w.moneyStyle
}

// Rows returns the number of rows written to the active sheet.
func (w *ExcelizeWriter) Rows() int {
	if w.row == 0 {
		return 0
	}
	return w.row - 1
}

// Save writes the workbook to wr.
func (w *ExcelizeWriter) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// SaveToFile writes the workbook to path.
func (w *ExcelizeWriter) SaveToFile(path string) error {
	return w.file.SaveAs(path)
}

func (w *ExcelizeWriter) Close() error {
	return w.file.Close()
}
