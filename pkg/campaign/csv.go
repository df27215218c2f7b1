package campaign

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseLeads reads a campaign CSV export into working leads. Exports
// from loan origination systems use prefixed column names ("Primary
// Borrower", "Subject Property: Address: State"); plain exports use the
// short forms. Both are accepted, short form as fallback.
func ParseLeads(r io.Reader) ([]Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(rows) < 2 {
		return []Lead{}, nil
	}

	header := headerIndex(rows[0])
	leads := make([]Lead, 0, len(rows)-1)
	for _, row := range rows[1:] {
		pick := func(names ...string) string {
			for _, name := range names {
				if idx, ok := header[strings.ToLower(name)]; ok && idx < len(row) {
					if v := strings.TrimSpace(row[idx]); v != "" {
						return v
					}
				}
			}
			return ""
		}

		lead := Lead{
			Name:         pick("Primary Borrower", "Name"),
			Email:        pick("Primary Borrower: Email", "Email"),
			Phone:        pick("Phone", "Mobile"),
			State:        pick("Subject Property: Address: State", "State"),
			LoanAmount:   pick("Total Loan Amount", "Amount"),
			InterestRate: pick("Interest Rate"),
			Type:         strings.ToLower(pick("Type")),
			Company:      "General Services",
			DoNotCall:    truthy(pick("Do Not Call", "DoNotCall")),
		}
		if lead.Name == "" {
			lead.Name = "Unknown"
		}
		if lead.State == "" {
			lead.State = "WA"
		}
		if lead.LoanAmount == "" {
			lead.LoanAmount = "$0"
		}
		if lead.InterestRate == "" {
			lead.InterestRate = "0.0%"
		}
		lead.City = parseCity(pick("Subject Property: Address: 1"), pick("City"))
		leads = append(leads, lead)
	}
	return leads, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return index
}

// parseCity extracts the city from a one-line street address of the
// form "123 Main St Seattle WA 98101", where the city is the third
// field from the end. Falls back to the plain city column.
func parseCity(address, city string) string {
	if fields := strings.Fields(address); len(fields) >= 3 {
		return fields[len(fields)-3]
	}
	if city != "" {
		return city
	}
	return "Unknown"
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
