package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/redline/internal/analysis"
)

// JSONWriter outputs the full report as JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *analysis.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// ReadReport decodes a report previously written by JSONWriter.
func ReadReport(r io.Reader) (*analysis.Report, error) {
	var report analysis.Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &report, nil
}
