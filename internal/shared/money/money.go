package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Monetary amounts are carried as integer minor units (cents) end to end.
// Decimal strings only appear at process boundaries: commerce webhooks send
// "120.00", responses render cents back into the same shape.

var ErrInvalidAmount = errors.New("invalid monetary amount")

// ParseCents converts a decimal amount string into cents without going
// through floating point. Accepts "120", "120.5" and "120.50"; more than two
// fraction digits is rejected.
func ParseCents(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, ErrInvalidAmount
	}

	negative := false
	if strings.HasPrefix(value, "-") {
		negative = true
		value = value[1:]
	}

	whole := value
	fraction := ""
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		whole = value[:idx]
		fraction = value[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(fraction) > 2 {
		return 0, ErrInvalidAmount
	}
	for len(fraction) < 2 {
		fraction += "0"
	}

	wholeUnits, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	fractionUnits, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	cents := wholeUnits*100 + fractionUnits
	if negative {
		cents = -cents
	}
	return cents, nil
}

// FormatCents renders cents as a two-decimal display string.
func FormatCents(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}
	value := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if negative {
		return "-" + value
	}
	return value
}
