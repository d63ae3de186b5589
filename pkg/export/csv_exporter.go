package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Listing is ordered tabular content. Every record must carry exactly
// one value per header, in header order.
type Listing struct {
	Headers []string
	Records [][]string
}

// CSVExporter renders listings into RFC 4180 CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the listing.
func (e *CSVExporter) Render(listing Listing) ([]byte, error) {
	if len(listing.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(listing.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i, record := range listing.Records {
		if len(record) != len(listing.Headers) {
			return nil, fmt.Errorf("csv record %d has %d fields, want %d", i, len(record), len(listing.Headers))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
