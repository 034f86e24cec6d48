package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVRenderer writes comma-separated output with a header row. Header fields are quoted only as needed;
// every data cell is quoted.
type CSVRenderer struct{}

// NewCSVRenderer builds a CSV renderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

func (r *CSVRenderer) Extension() string   { return "csv" }
func (r *CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }

// Render produces CSV encoded bytes for the table.
func (r *CSVRenderer) Render(table Table) ([]byte, error) {
	if err := table.validate("csv"); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	for _, row := range table.Rows {
		for i, field := range table.Record(row) {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quoteField(field))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// quoteField wraps a cell in double quotes, doubling any embedded quote.
func quoteField(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ParseCSV reads a file produced by Render back into a table.
func ParseCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("csv has no header row")
	}

	table := Table{Columns: records[0], Rows: make([]map[string]string, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make(map[string]string, len(table.Columns))
		for i, column := range table.Columns {
			row[column] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
