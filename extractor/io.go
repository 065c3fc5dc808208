package extractor

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ReadDocument loads a plain-text document and normalizes it for analysis.
func ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return NormalizeDocument(string(data)), nil
}

// WriteReportCSV writes the aggregated report to path with one row per
// entity record.
func WriteReportCSV(path string, report *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"Class", "Description", "Entity", "Count"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range report.Records {
		row := []string{rec.EntityClass, rec.Description, rec.Entity, strconv.Itoa(rec.Count)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
