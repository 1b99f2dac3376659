package model

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the format of a calendar date on the wire and in the database.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day and without time zone. It is serialized to JSON as
// "YYYY-MM-DD" and stored in the database the same way.
type Date struct {
	time.Time
}

// NewDate returns the date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in the "YYYY-MM-DD" format. Full RFC 3339 timestamps are accepted too,
// in which case the time of day is dropped.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return NewDate(t.Date()), nil
	}
	t, errRFC := time.Parse(time.RFC3339, s)
	if errRFC != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return NewDate(t.Date()), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON writes the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON reads a "YYYY-MM-DD" string. A JSON null leaves the date untouched.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date %s, expected a string", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. Drivers hand out DATE columns either as time.Time (sqlite3, mysql
// with parseTime) or as text.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Date())
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case nil:
		return fmt.Errorf("cannot scan NULL into a date")
	default:
		return fmt.Errorf("cannot scan %T into a date", src)
	}
}

// Age returns the number of full years between the birth date and today.
func Age(birthDate Date, today time.Time) int {
	age := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// Contact is the data structure for a person that we know, as returned by the REST API. Phone and
// Address are optional and serialized as null when absent. Age is derived from the birth date on
// every response and never stored.
type Contact struct {
	Id        string  `json:"id"`
	Name      string  `json:"name"`
	BirthDate Date    `json:"birth_date"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Age       int     `json:"age"`
}

// ContactInput is the request body for creating and for replacing a contact. The id and the age
// cannot be set by the client.
type ContactInput struct {
	Name      string  `json:"name"       validate:"required"`
	BirthDate *Date   `json:"birth_date" validate:"required"`
	Email     string  `json:"email"      validate:"required,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}
