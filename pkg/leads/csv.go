package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ImportCSV parses CSV content, calculates initial scores, and saves leads.
// Column names vary between CRM exports, so each field is resolved through
// a list of known header variants.
func (s *Store) ImportCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to parse csv header: %w", err)
	}

	index := headerIndex(header)
	count := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to parse csv row: %w", err)
		}

		lead := Lead{
			Name:    pick(index, row, "primary borrower", "name"),
			Email:   pick(index, row, "primary borrower: email", "email"),
			Phone:   pick(index, row, "phone", "mobile"),
			Company: pick(index, row, "company"),
			Source:  "csv_upload",
			Status:  StatusNew,
		}
		if lead.Name == "" {
			lead.Name = "Unknown"
		}
		if lead.Company == "" {
			lead.Company = "General Services"
		}
		lead.Notes = fmt.Sprintf("Program: %s. (Ref: %s)",
			orDefault(pick(index, row, "program"), "N/A"),
			orDefault(pick(index, row, "loan number"), "N/A"))
		lead.Score = Score(lead)

		if _, err := s.Save(lead); err != nil {
			s.log.Warn("skipping invalid csv lead", "error", err)
			continue
		}
		count++
	}

	return count, nil
}

// headerIndex maps lowercased column names to positions
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return index
}

// pick returns the first non-empty value among the named columns
func pick(index map[string]int, row []string, names ...string) string {
	for _, name := range names {
		if i, ok := index[name]; ok && i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
