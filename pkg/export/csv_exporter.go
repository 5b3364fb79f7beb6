package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

var errNoHeaders = errors.New("dataset has no headers")

// Dataset is tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Records returns the rows ordered by Headers, header row first.
func (d Dataset) Records() [][]string {
	records := make([][]string, 0, len(d.Rows)+1)
	records = append(records, d.Headers)
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}
	return records
}

// CSVExporter writes datasets as RFC 4180 CSV.
type CSVExporter struct {
	comma   rune
	useCRLF bool
}

// CSVOption customises a CSVExporter.
type CSVOption func(*CSVExporter)

// WithDelimiter overrides the field separator, e.g. ';' for spreadsheet locales.
func WithDelimiter(comma rune) CSVOption {
	return func(e *CSVExporter) { e.comma = comma }
}

// WithCRLF terminates lines with \r\n.
func WithCRLF() CSVOption {
	return func(e *CSVExporter) { e.useCRLF = true }
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{comma: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render encodes the dataset. opts override the exporter defaults for this call only.
func (e *CSVExporter) Render(data Dataset, opts ...CSVOption) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("render csv: %w", errNoHeaders)
	}
	settings := *e
	for _, opt := range opts {
		opt(&settings)
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	writer.Comma = settings.comma
	writer.UseCRLF = settings.useCRLF
	if err := writer.WriteAll(data.Records()); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}
