package service

import (
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
	"github.com/noah-isme/academic-monitor-api/pkg/export"
)

// ReportFileBase names every downloaded report.
const ReportFileBase = "academic-monitor-report"

// ExportFile is a rendered report ready to download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders report tables into files.
type ExportService struct {
	renderers map[models.ReportFormat]export.Renderer
}

// NewExportService constructs an ExportService. Nil renderers use the package defaults.
func NewExportService(csv, xlsx, pdf export.Renderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVRenderer()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXRenderer()
	}
	if pdf == nil {
		pdf = export.NewPDFRenderer("Academic Monitor Report")
	}
	return &ExportService{renderers: map[models.ReportFormat]export.Renderer{
		models.ReportFormatCSV:  csv,
		models.ReportFormatXLSX: xlsx,
		models.ReportFormatPDF:  pdf,
	}}
}

// Render produces the file for a report result.
func (s *ExportService) Render(result *models.ReportResult, format models.ReportFormat) (*ExportFile, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, xlsx or pdf")
	}
	payload, err := renderer.Render(export.Table{Columns: result.Columns, Rows: result.Rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &ExportFile{
		Filename:    export.Filename(ReportFileBase, renderer),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}
