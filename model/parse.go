package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the as-of date layout of the feed and the REPL (dd.MM.yyyy)
const DateFormat = "02.01.2006"

// ParseDate parses a dd.MM.yyyy date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q does not match dd.MM.yyyy", ErrParse, s)
	}
	return d, nil
}

// ParseDecimal parses a plain decimal number with '.' or ',' as separator.
// Exponent forms such as 1e2 are rejected.
func ParseDecimal(s string) (decimal.Decimal, error) {
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal number", ErrParse, s)
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal number", ErrParse, s)
	}
	return d, nil
}
