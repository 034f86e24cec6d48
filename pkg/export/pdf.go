package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer draws the table on landscape A4 pages.
type PDFRenderer struct {
	Title string
}

// NewPDFRenderer constructs a PDF renderer with an optional title.
func NewPDFRenderer(title string) *PDFRenderer {
	return &PDFRenderer{Title: title}
}

func (r *PDFRenderer) Extension() string   { return "pdf" }
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

const pdfUsableWidth = 277.0

// Render creates the PDF document. Wide reports shrink the font so every column fits one page width.
func (r *PDFRenderer) Render(table Table) ([]byte, error) {
	if err := table.validate("pdf"); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if r.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	colWidth := pdfUsableWidth / float64(len(table.Columns))
	fontSize := 9.0
	if len(table.Columns) > 10 {
		fontSize = 6
	}

	header := func() {
		pdf.SetFont("Arial", "B", fontSize)
		for _, column := range table.Columns {
			pdf.CellFormat(colWidth, 7, tr(column), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", fontSize)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	header()
	for _, row := range table.Rows {
		for _, value := range table.Record(row) {
			pdf.CellFormat(colWidth, 6, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
