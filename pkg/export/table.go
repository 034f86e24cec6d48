package export

import (
	"fmt"
	"strings"
)

// Table is the rectangular content shared by every export format.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Record returns the row's cells in column order. Missing cells are empty.
func (t Table) Record(row map[string]string) []string {
	record := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		record[i] = row[column]
	}
	return record
}

func (t Table) validate(format string) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("%s requires at least one column", format)
	}
	return nil
}

// Renderer turns a table into a downloadable file.
type Renderer interface {
	Render(table Table) ([]byte, error)
	Extension() string
	ContentType() string
}

// Filename builds "<base>.<ext>" for a renderer.
func Filename(base string, r Renderer) string {
	return strings.TrimSuffix(base, ".") + "." + r.Extension()
}
