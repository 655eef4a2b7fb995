package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used everywhere users type or see a
// date.
const DateLayout = "02.01.2006"

// isoLayout is the storage and wire representation; it sorts correctly as
// text.
const isoLayout = "2006-01-02"

// Date is a calendar date with no time component, normalized to UTC midnight.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a dd.mm.yyyy string. It also accepts an ISO yyyy-mm-dd
// value so API clients may send either form.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.ParseInLocation(isoLayout, s, time.UTC); err == nil {
		return Date{Time: t}, nil
	}
	return Date{}, fmt.Errorf("%w: %q does not match dd.mm.yyyy", ErrInvalidDate, s)
}

// ParseISODate parses only the storage form.
func ParseISODate(s string) (Date, error) {
	t, err := time.ParseInLocation(isoLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not an ISO date", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the user-facing dd.mm.yyyy form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// ISO renders the storage form.
func (d Date) ISO() string {
	return d.Format(isoLayout)
}

// Equal reports whether both values name the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}
