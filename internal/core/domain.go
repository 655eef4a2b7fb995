package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error roots for the whole system. Specific failures wrap one of these so
// callers can classify with errors.Is without knowing the exact cause.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

var (
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date", ErrValidation)
)

// Expense is the sole persisted entity: one spending record priced in the
// local currency (UAH) and, as a snapshot taken at write time, in the
// reference currency (USD). AmountRef is derived from AmountLocal and the
// exchange rate in effect at the moment of the last create or update; it is
// never recomputed on read.
type Expense struct {
	ID          int64
	Description string
	Date        Date
	AmountLocal Money
	AmountRef   Money
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(e.Description) > 255 {
		return fmt.Errorf("%w: description too long (max 255 characters)", ErrValidation)
	}
	if err := e.AmountLocal.Validate(); err != nil {
		return err
	}
	if err := e.AmountRef.Validate(); err != nil {
		return err
	}
	return nil
}
