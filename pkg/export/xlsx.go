package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet written to every workbook.
const SheetName = "Report"

// XLSXRenderer writes a one-sheet workbook: header row then one row per record.
type XLSXRenderer struct{}

// NewXLSXRenderer builds a workbook renderer.
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (r *XLSXRenderer) Extension() string { return "xlsx" }
func (r *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render produces the workbook bytes.
func (r *XLSXRenderer) Render(table Table) ([]byte, error) {
	if err := table.validate("xlsx"); err != nil {
		return nil, err
	}

	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	if err := writeRow(book, 1, table.Columns); err != nil {
		return nil, err
	}
	for i, row := range table.Rows {
		if err := writeRow(book, i+2, table.Record(row)); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := book.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(book *excelize.File, rowNumber int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return fmt.Errorf("resolve cell: %w", err)
	}
	cells := make([]interface{}, len(values))
	for i, value := range values {
		cells[i] = value
	}
	if err := book.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", rowNumber, err)
	}
	return nil
}

// ParseXLSX reads the Report sheet back into a table.
func ParseXLSX(payload []byte) (Table, error) {
	book, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer book.Close()

	rows, err := book.GetRows(SheetName)
	if err != nil {
		return Table{}, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("xlsx has no header row")
	}

	table := Table{Columns: rows[0], Rows: make([]map[string]string, 0, len(rows)-1)}
	for _, values := range rows[1:] {
		row := make(map[string]string, len(table.Columns))
		for i, column := range table.Columns {
			// GetRows trims trailing empty cells
			if i < len(values) {
				row[column] = values[i]
			} else {
				row[column] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
