package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-gpa-api/internal/models"
	appErrors "github.com/noah-isme/course-gpa-api/pkg/errors"
	"github.com/noah-isme/course-gpa-api/pkg/export"
)

// ReportFormat enumerates supported export encodings.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

const courseReportTitle = "Course GPA Report"

var courseReportHeaders = []string{"ID", "Name", "Credit", "Coefficient", "Note", "Total GPA"}

type courseResultLister interface {
	Results(ctx context.Context) ([]models.CourseResult, error)
}

type csvRenderer interface {
	Render(data export.Dataset, opts ...export.CSVOption) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportedReport is a rendered report ready to be streamed.
type ExportedReport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the course list with total GPA as CSV or PDF.
type ExportService struct {
	courses courseResultLister
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(courses courseResultLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{courses: courses, csv: csv, pdf: pdf, logger: logger}
}

// ParseReportFormat normalises a user supplied format, defaulting to CSV.
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ReportFormatCSV:
		return ReportFormatCSV, nil
	case ReportFormatPDF:
		return ReportFormatPDF, nil
	}
	return "", appErrors.Validation("unsupported report format: " + raw)
}

// ParseCSVOptions maps the delimiter and line ending query values onto exporter options.
// Empty values keep comma separated, \n terminated output.
func ParseCSVOptions(delimiter, lineEnding string) ([]export.CSVOption, error) {
	var opts []export.CSVOption
	switch strings.ToLower(strings.TrimSpace(delimiter)) {
	case "", ",", "comma":
	case ";", "semicolon":
		opts = append(opts, export.WithDelimiter(';'))
	case "tab":
		opts = append(opts, export.WithDelimiter('\t'))
	case "|", "pipe":
		opts = append(opts, export.WithDelimiter('|'))
	default:
		return nil, appErrors.Validation("unsupported csv delimiter: " + delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(lineEnding)) {
	case "", "lf":
	case "crlf":
		opts = append(opts, export.WithCRLF())
	default:
		return nil, appErrors.Validation("unsupported line ending: " + lineEnding)
	}
	return opts, nil
}

// Courses renders every stored course in the requested format. csvOpts only apply to CSV.
func (s *ExportService) Courses(ctx context.Context, format ReportFormat, csvOpts ...export.CSVOption) (*ExportedReport, error) {
	results, err := s.courses.Results(ctx)
	if err != nil {
		return nil, err
	}
	dataset := buildCourseDataset(results)

	report := &ExportedReport{Filename: "courses." + string(format)}
	switch format {
	case ReportFormatCSV:
		report.ContentType = "text/csv"
		report.Payload, err = s.csv.Render(dataset, csvOpts...)
	case ReportFormatPDF:
		report.ContentType = "application/pdf"
		report.Payload, err = s.pdf.Render(dataset, courseReportTitle)
	default:
		return nil, appErrors.Validation("unsupported report format: " + string(format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	s.logger.Info("course report rendered", zap.String("format", string(format)), zap.Int("rows", len(results)), zap.Int("bytes", len(report.Payload)))
	return report, nil
}

func buildCourseDataset(results []models.CourseResult) export.Dataset {
	rows := make([]map[string]string, 0, len(results))
	for _, result := range results {
		c := result.Course
		rows = append(rows, map[string]string{
			"ID":          strconv.Itoa(c.ID),
			"Name":        c.Name,
			"Credit":      strconv.Itoa(c.Credit),
			"Coefficient": strconv.Itoa(c.Grade.Coefficient),
			"Note":        c.Grade.Note,
			"Total GPA":   strconv.Itoa(result.TotalGPA),
		})
	}
	return export.Dataset{Headers: courseReportHeaders, Rows: rows}
}
