// Package core holds the expense domain model: money in integer cents,
// calendar dates in dd.mm.yyyy form, and the error taxonomy shared by every
// layer above.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is a monetary amount in integer cents. Calculations stay in cents to
// avoid floating-point drift; floats appear only at the formatting edge and
// in the exchange-rate division.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Units returns the amount in currency units for display and spreadsheet
// cells. Not for arithmetic.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	return strconv.FormatFloat(m.Units(), 'f', 2, 64)
}

// ParseDecimalToCents converts a decimal string to cents. Both the dot and
// the comma are accepted as the fractional separator ("12.34" and "12,34"
// parse identically); the third fractional digit rounds half-up. Zero and
// negative amounts are rejected.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ConvertToReference prices a local-currency amount in the reference currency
// using the given local-per-reference rate. The result is rounded half-up to
// whole cents, matching round(amount/rate, 2) on unit amounts.
func ConvertToReference(local Money, rate float64) (Money, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Money{}, fmt.Errorf("%w: non-positive rate %v", ErrRateUnavailable, rate)
	}
	cents := int64(math.Floor(float64(local.Cents)/rate + 0.5))
	return Money{Cents: cents}, nil
}
