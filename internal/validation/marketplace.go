package validation

import (
	"fmt"
	"strings"
)

// Supported ISO 4217 currency codes. The set mirrors what the marketplace
// actually trades in.
var supportedCurrencies = map[string]struct{}{
	"RON": {},
	"EUR": {},
	"USD": {},
	"GBP": {},
}

// ValidateCurrency accepts an empty code (callers default it) or a supported
// ISO 4217 code.
func ValidateCurrency(code string) error {
	if code == "" {
		return nil
	}
	if _, ok := supportedCurrencies[strings.ToUpper(code)]; !ok {
		return fmt.Errorf("unsupported currency %q", code)
	}
	return nil
}

// ValidateAmount checks a monetary amount for offers and listing prices.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	if amount > 1_000_000_000 {
		return fmt.Errorf("amount is unreasonably large")
	}
	return nil
}

// ValidateListingTitle checks title presence and length.
func ValidateListingTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("title is required")
	}
	if len(trimmed) > 200 {
		return fmt.Errorf("title must not exceed 200 characters")
	}
	return nil
}

// ValidateMessageContent checks chat message bounds.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message content is required")
	}
	if len(content) > 4000 {
		return fmt.Errorf("message must not exceed 4000 characters")
	}
	return nil
}

// NormalizeCurrency upper-cases a currency code, leaving empty codes alone.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
