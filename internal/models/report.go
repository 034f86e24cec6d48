package models

import "time"

// ReportViewMode selects the report shape.
type ReportViewMode string

const (
	ReportViewClass   ReportViewMode = "class"
	ReportViewStudent ReportViewMode = "student"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatXLSX ReportFormat = "xlsx"
	ReportFormatPDF  ReportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ReportFormat) Valid() bool {
	switch f {
	case ReportFormatCSV, ReportFormatXLSX, ReportFormatPDF:
		return true
	default:
		return false
	}
}

// ReportFilter is a normalised report filter with every default applied.
type ReportFilter struct {
	SchoolYearID       string
	WeekStart          time.Time
	WeeksRange         int
	Days               []int
	Laps               []int
	BlockIDs           []string
	StudentIDs         []string
	Categories         []CategoryFlag
	CategoriesMatchAll bool
	Standards          []string
	ViewMode           ReportViewMode
}

// ReportDate is one concrete calendar date in the report range.
type ReportDate struct {
	Date     time.Time
	DayIndex int
}

// ReportColumn describes a generated date/lap column.
type ReportColumn struct {
	Date         string  `json:"date"`
	DayIndex     int     `json:"dayIndex"`
	LapNumber    int     `json:"lapNumber"`
	StandardCode *string `json:"standardCode"`
	Label        string  `json:"label"`
}

// ReportMeta accompanies report results.
type ReportMeta struct {
	WeekStart string         `json:"weekStart"`
	Columns   []ReportColumn `json:"columns,omitempty"`
}

// ReportResult is a rectangular table ready for display or export.
type ReportResult struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	Meta    ReportMeta          `json:"meta"`
}

// ReportData is the store slice the pivot engine reads.
type ReportData struct {
	Blocks         []Block
	Students       []Student
	LapDefinitions []LapDefinition
	Performances   []LapPerformance
}
