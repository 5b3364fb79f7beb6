package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-gpa-api/internal/service"
	"github.com/noah-isme/course-gpa-api/pkg/export"
	"github.com/noah-isme/course-gpa-api/pkg/response"
)

type courseExporter interface {
	Courses(ctx context.Context, format service.ReportFormat, csvOpts ...export.CSVOption) (*service.ExportedReport, error)
}

// ReportHandler streams course reports.
type ReportHandler struct {
	exporter courseExporter
}

// NewReportHandler constructs a report handler.
func NewReportHandler(exporter courseExporter) *ReportHandler {
	return &ReportHandler{exporter: exporter}
}

// Courses godoc
// @Summary Export courses with total GPA
// @Tags Reports
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param delimiter query string false "csv separator: comma (default), semicolon, tab or pipe"
// @Param line_ending query string false "csv line ending: lf (default) or crlf"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /reports/courses [get]
func (h *ReportHandler) Courses(c *gin.Context) {
	format, err := service.ParseReportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	csvOpts, err := service.ParseCSVOptions(c.Query("delimiter"), c.Query("line_ending"))
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.exporter.Courses(c.Request.Context(), format, csvOpts...)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Payload)
}
