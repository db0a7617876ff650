package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// Expiry is an optional expiration date. The absent value orders after
// every present one.
type Expiry struct {
	date  time.Time
	valid bool
}

// ExpiresOn returns a present expiry truncated to the calendar day (UTC).
func ExpiresOn(t time.Time) Expiry {
	y, m, d := t.Date()
	return Expiry{date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// NoExpiry returns the absent expiry.
func NoExpiry() Expiry { return Expiry{} }

// ParseExpiry parses "YYYY-MM-DD"; an empty string yields NoExpiry.
func ParseExpiry(s string) (Expiry, error) {
	if s == "" {
		return NoExpiry(), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Expiry{}, fmt.Errorf("parse expiry %q: %w", s, err)
	}
	return ExpiresOn(t), nil
}

// MustExpiry is ParseExpiry that panics. Use only in tests and seeds.
func MustExpiry(s string) Expiry {
	e, err := ParseExpiry(s)
	if err != nil {
		panic(err)
	}
	return e
}

// Date returns the date and whether it is present.
func (e Expiry) Date() (time.Time, bool) { return e.date, e.valid }

func (e Expiry) IsSet() bool { return e.valid }

// Compare orders expiries: -1 if e sorts before o, 0 if equal, +1 otherwise.
func (e Expiry) Compare(o Expiry) int {
	switch {
	case !e.valid && !o.valid:
		return 0
	case !e.valid:
		return 1
	case !o.valid:
		return -1
	}
	return e.date.Compare(o.date)
}

// ExpiredAt reports whether the expiry is present and on or before day.
func (e Expiry) ExpiredAt(day time.Time) bool {
	return e.valid && !e.date.After(ExpiresOn(day).date)
}

func (e Expiry) String() string {
	if !e.valid {
		return ""
	}
	return e.date.Format(DateLayout)
}

func (e Expiry) MarshalJSON() ([]byte, error) {
	if !e.valid {
		return []byte("null"), nil
	}
	return json.Marshal(e.String())
}

func (e *Expiry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = NoExpiry()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expiry must be a date string: %w", err)
	}
	parsed, err := ParseExpiry(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Scan implements sql.Scanner for nullable DATE columns.
func (e *Expiry) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*e = NoExpiry()
	case time.Time:
		*e = ExpiresOn(v)
	case string:
		parsed, err := ParseExpiry(v)
		if err != nil {
			return err
		}
		*e = parsed
	case []byte:
		parsed, err := ParseExpiry(string(v))
		if err != nil {
			return err
		}
		*e = parsed
	default:
		return fmt.Errorf("cannot scan %T into Expiry", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (e Expiry) Value() (driver.Value, error) {
	if !e.valid {
		return nil, nil
	}
	return e.date, nil
}
