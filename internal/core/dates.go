package core

import (
	"encoding/json"
	"time"
)

const (
	displayLayout  = "02/01/2006"
	internalLayout = "2006-01-02"
)

// Date is a calendar day. The zero value means "no date recorded".
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDisplayDate parses a user-entered "DD/MM/AAAA" date. Non-calendar
// dates such as 31/02/2024 are rejected; any syntactically valid past or
// future date is accepted.
func ParseDisplayDate(s string) (Date, error) {
	t, err := time.ParseInLocation(displayLayout, s, time.UTC)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	// time.Parse normalizes overflow days, so round-trip to catch them.
	if t.Format(displayLayout) != s {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ParseInternalDate parses the sortable "YYYY-MM-DD" form used on disk.
func ParseInternalDate(s string) (Date, error) {
	t, err := time.ParseInLocation(internalLayout, s, time.UTC)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	if t.Format(internalLayout) != s {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Display formats the date as "DD/MM/AAAA". The zero date formats empty.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(displayLayout)
}

// Internal formats the date as "YYYY-MM-DD". The zero date formats empty.
func (d Date) Internal() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(internalLayout)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// MarshalJSON writes the internal form, or "" for the zero date.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Internal())
}

// UnmarshalJSON reads the internal form. Blank or malformed values yield the
// zero date without error: legacy files carry such entries and aggregate
// queries skip them instead of failing the whole load.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseInternalDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

// DaysSince returns the whole days elapsed from d to now, truncated toward
// zero. Negative when d is in the future.
func DaysSince(d Date, now time.Time) int {
	return int(now.Sub(d.Time).Hours() / 24)
}
