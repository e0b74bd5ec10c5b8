package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// CSVExporter renders and parses csv-tagged structs.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes a slice of csv-tagged structs, header row first.
func (e *CSVExporter) Render(rows interface{}) ([]byte, error) {
	out, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return out, nil
}

// Parse decodes CSV from r into out, a pointer to a slice of csv-tagged structs.
// Columns are matched by header name.
func (e *CSVExporter) Parse(r io.Reader, out interface{}) error {
	if err := gocsv.Unmarshal(r, out); err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}
	return nil
}
