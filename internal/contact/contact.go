// Package contact holds the validated field types of an address book entry.
// Values are checked once at construction; a Record never holds invalid data.
package contact

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the textual birthday format, DD.MM.YYYY.
const DateLayout = "02.01.2006"

const phoneDigits = 10

var (
	// ErrInvalidName is returned for an empty contact name.
	ErrInvalidName = errors.New("name cannot be empty")
	// ErrInvalidPhone is returned when a phone is not exactly 10 digits.
	ErrInvalidPhone = errors.New("phone must contain 10 digits")
	// ErrInvalidDateFormat is returned when a birthday is not a real DD.MM.YYYY date.
	ErrInvalidDateFormat = errors.New("invalid date format, use DD.MM.YYYY")
)

// Name identifies a record.
type Name struct {
	value string
}

// NewName validates raw as a contact name.
func NewName(raw string) (Name, error) {
	if raw == "" {
		return Name{}, ErrInvalidName
	}
	return Name{value: raw}, nil
}

func (n Name) String() string { return n.value }

// Phone is a ten digit phone number.
type Phone struct {
	value string
}

// NewPhone validates raw as a phone number.
func NewPhone(raw string) (Phone, error) {
	if len(raw) != phoneDigits {
		return Phone{}, fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return Phone{}, fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
		}
	}
	return Phone{value: raw}, nil
}

func (p Phone) String() string { return p.value }

// Birthday is a calendar date stored at UTC midnight.
type Birthday struct {
	date time.Time
}

// NewBirthday parses raw as DD.MM.YYYY. Day and month must be zero padded
// and the date must exist.
func NewBirthday(raw string) (Birthday, error) {
	if len(raw) != len(DateLayout) {
		return Birthday{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, raw)
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Birthday{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, raw)
	}
	return Birthday{date: t}, nil
}

func (b Birthday) String() string { return b.date.Format(DateLayout) }

// Next returns the first anniversary of b on or after the date of asOf.
// A 29 February birthday falls on 28 February in common years.
func (b Birthday) Next(asOf time.Time) time.Time {
	today := dateOf(asOf)
	next := b.in(today.Year())
	if next.Before(today) {
		next = b.in(today.Year() + 1)
	}
	return next
}

func (b Birthday) in(year int) time.Time {
	month, day := b.date.Month(), b.date.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// dateOf drops the clock and zone of t, keeping its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Record is one contact: a fixed name, its phones in insertion order and an
// optional birthday.
type Record struct {
	name     Name
	phones   []Phone
	birthday *Birthday
}

// NewRecord creates an empty record for name.
func NewRecord(name string) (*Record, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	return &Record{name: n}, nil
}

// Name returns the record's name.
func (r *Record) Name() Name { return r.name }

// Phones returns a copy of the record's phones.
func (r *Record) Phones() []Phone {
	out := make([]Phone, len(r.phones))
	copy(out, r.phones)
	return out
}

// AddPhone validates raw and appends it. Duplicates are kept.
func (r *Record) AddPhone(raw string) error {
	p, err := NewPhone(raw)
	if err != nil {
		return err
	}
	r.phones = append(r.phones, p)
	return nil
}

// SetPhone replaces the phone at i. i == len(phones) appends.
func (r *Record) SetPhone(i int, p Phone) bool {
	switch {
	case i < 0 || i > len(r.phones):
		return false
	case i == len(r.phones):
		r.phones = append(r.phones, p)
	default:
		r.phones[i] = p
	}
	return true
}

// IndexOf returns the index of the first phone equal to raw, or -1.
func (r *Record) IndexOf(raw string) int {
	for i, p := range r.phones {
		if p.value == raw {
			return i
		}
	}
	return -1
}

// Birthday returns the birthday and whether one is set.
func (r *Record) Birthday() (Birthday, bool) {
	if r.birthday == nil {
		return Birthday{}, false
	}
	return *r.birthday, true
}

// SetBirthday sets or overwrites the birthday.
func (r *Record) SetBirthday(b Birthday) { r.birthday = &b }

func (r *Record) String() string {
	phones := make([]string, len(r.phones))
	for i, p := range r.phones {
		phones[i] = p.value
	}
	s := fmt.Sprintf("Contact name: %s, phones: %s", r.name, strings.Join(phones, ", "))
	if b, ok := r.Birthday(); ok {
		s += ", birthday: " + b.String()
	}
	return s
}
