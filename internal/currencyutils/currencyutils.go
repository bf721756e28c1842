// Package currencyutils provides currency-code normalization and amount
// parsing used throughout the application.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultAliases maps known-bad currency codes seen in CRM exports to their
// corrected ISO 4217 codes. Encoded as data so new aliases can be added
// from configuration without touching normalization logic.
var DefaultAliases = map[string]string{
	"GPB": "GBP",
}

// NormalizeCode trims, uppercases and alias-corrects a currency code.
// An empty aliases map falls back to DefaultAliases.
func NormalizeCode(code string, aliases map[string]string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(aliases) == 0 {
		aliases = DefaultAliases
	}
	if corrected, ok := aliases[code]; ok {
		return corrected
	}
	return code
}

// ParseAmount parses a string representation of an amount into a decimal value.
// It handles various formats like "1,234.56", "1.234,56", "1234.56", "1234,56".
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if amountStr == "" {
		return decimal.Zero, nil
	}

	standardized := StandardizeAmount(amountStr)

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}

	return amount, nil
}

// StandardizeAmount converts various currency string formats to a standard
// format that can be parsed by decimal.NewFromString.
// Handles patterns like "€1.234,56", "$1,234.56", "1 234,56", etc.
func StandardizeAmount(amountStr string) string {
	// Remove currency symbols and whitespace
	re := regexp.MustCompile(`[€$£¥₣₧₹₽\s]`)
	amountStr = re.ReplaceAllString(amountStr, "")

	if strings.Contains(amountStr, ",") && strings.Contains(amountStr, ".") {
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			// European format (1.234,56)
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			// US format (1,234.56)
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	} else if strings.Contains(amountStr, ",") {
		parts := strings.Split(amountStr, ",")
		if len(parts) > 1 && len(parts[len(parts)-1]) <= 2 {
			// Comma used as decimal separator (1234,56)
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			// Comma used as thousand separator (1,234)
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	}

	return amountStr
}

// RoundCents rounds a monetary amount to 2 decimal places using half-up
// rounding, the convention for every converted amount in the pipeline.
func RoundCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
