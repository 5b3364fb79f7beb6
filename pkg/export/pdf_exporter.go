package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title, a table body and page numbers.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("render pdf: %w", errNoHeaders)
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	widths := columnWidths(data)
	for n, record := range data.Records() {
		height, align := 7.0, ""
		if n == 0 {
			pdf.SetFont("Arial", "B", 10)
			height, align = 8, "C"
		} else if n == 1 {
			pdf.SetFont("Arial", "", 9)
		}
		for i, value := range record {
			pdf.CellFormat(widths[i], height, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths splits the page width in proportion to the longest value per column.
func columnWidths(data Dataset) []float64 {
	longest := make([]int, len(data.Headers))
	total := 0
	for i, header := range data.Headers {
		longest[i] = len(header)
		for _, row := range data.Rows {
			if n := len(row[header]); n > longest[i] {
				longest[i] = n
			}
		}
		total += longest[i]
	}

	widths := make([]float64, len(data.Headers))
	for i := range widths {
		widths[i] = pageWidth * float64(longest[i]) / float64(total)
	}
	return widths
}
