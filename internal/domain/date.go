package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Date is a calendar date without time of day. It is persisted as an ISO
// "YYYY-MM-DD" string and serialized the same way in JSON.
type Date struct {
	civil.Date
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

// ParseDate parses an ISO calendar date ("2006-01-02").
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{d}, nil
}

// MustParseDate is ParseDate for literals; it panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

func (d Date) Before(o Date) bool { return d.Date.Before(o.Date) }

func (d Date) After(o Date) bool { return d.Date.After(o.Date) }

func (d Date) Equal(o Date) bool { return d.Date == o.Date }

func (d Date) AddDays(n int) Date { return Date{d.Date.AddDays(n)} }

// DaysSince returns the signed number of days between o and d.
func (d Date) DaysSince(o Date) int { return d.Date.DaysSince(o.Date) }

func (d Date) IsZero() bool { return d.Date == civil.Date{} }

// Scan implements sql.Scanner. SQLite hands back TEXT, PostgreSQL DATE
// columns come back as time.Time.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Date{civil.DateOf(v)}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > 10 {
		// timestamps such as "2024-01-02T00:00:00Z"
		s = s[:10]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// NullableDate distinguishes an absent JSON field from an explicit null so a
// patch can clear a date.
type NullableDate struct {
	Set   bool
	Value *Date
}

// UnmarshalJSON is only invoked when the key is present.
func (n *NullableDate) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var d Date
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	n.Value = &d
	return nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" and, for form posts, an empty string
// meaning no date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a string, got %s", s)
	}
	s = s[1 : len(s)-1]
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}
