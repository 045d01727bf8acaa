// Package money converts between major-unit decimal amounts and the integer
// cents everything downstream stores. Conversion happens exactly once at the
// API boundary; services, repositories, and the payment gateway only ever see
// cents.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnits converts a major-unit decimal amount (e.g. "1500.50") into
// integer cents, rounding half up.
func MinorUnits(major decimal.Decimal) int64 {
	return major.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ParseMinorUnits parses a major-unit amount string into cents.
func ParseMinorUnits(major string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(major))
	if err != nil {
		return 0, err
	}
	return MinorUnits(d), nil
}
