package phone

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// ValidationResult contains the result of phone number validation.
type ValidationResult struct {
	IsValid        bool   `json:"is_valid"`
	E164Format     string `json:"e164_format"`
	NationalFormat string `json:"national_format"`
	CountryCode    string `json:"country_code"`
}

// ValidatePhone validates a phone number and returns detailed information.
func ValidatePhone(phone, countryCode string) (*ValidationResult, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone number cannot be empty")
	}

	if countryCode == "" {
		countryCode = "US" // Default to US
	}

	parsed, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	return &ValidationResult{
		IsValid:        phonenumbers.IsValidNumber(parsed),
		E164Format:     phonenumbers.Format(parsed, phonenumbers.E164),
		NationalFormat: phonenumbers.Format(parsed, phonenumbers.NATIONAL),
		CountryCode:    phonenumbers.GetRegionCodeForNumber(parsed),
	}, nil
}

// NormalizePhone normalizes a phone number to E.164 format.
func NormalizePhone(phone, countryCode string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}

	if countryCode == "" {
		countryCode = "US"
	}

	parsed, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number")
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
