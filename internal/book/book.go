// Package book implements the in-memory address book: contacts keyed by
// name, kept in insertion order, with an upcoming birthday query.
package book

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/zarlcorp/zbook/internal/contact"
)

var (
	// ErrContactNotFound is returned when no record has the given name.
	ErrContactNotFound = errors.New("contact not found")
	// ErrPhoneNotFound is returned when a record has no phone to replace.
	ErrPhoneNotFound = errors.New("phone not found")
)

// AddressBook maps contact names to records. It is not safe for concurrent
// use.
type AddressBook struct {
	index   map[string]int
	records []*contact.Record
}

// New returns an address book holding rs in order. A later record replaces
// an earlier one with the same name.
func New(rs ...*contact.Record) *AddressBook {
	b := &AddressBook{index: make(map[string]int, len(rs))}
	for _, r := range rs {
		b.Put(r)
	}
	return b
}

// Len returns the number of contacts.
func (b *AddressBook) Len() int { return len(b.records) }

// Put stores r under its name. An existing record with that name is
// replaced in place; nothing is merged.
func (b *AddressBook) Put(r *contact.Record) {
	key := r.Name().String()
	if i, ok := b.index[key]; ok {
		b.records[i] = r
		return
	}
	b.index[key] = len(b.records)
	b.records = append(b.records, r)
}

// Find returns the record named name.
func (b *AddressBook) Find(name string) (*contact.Record, bool) {
	i, ok := b.index[name]
	if !ok {
		return nil, false
	}
	return b.records[i], true
}

// AddContact appends phone to the record named name, creating the record
// first if needed. created reports whether a new record was made.
func (b *AddressBook) AddContact(name, phone string) (r *contact.Record, created bool, err error) {
	n, err := contact.NewName(name)
	if err != nil {
		return nil, false, err
	}
	p, err := contact.NewPhone(phone)
	if err != nil {
		return nil, false, err
	}

	r, ok := b.Find(n.String())
	if !ok {
		r, _ = contact.NewRecord(n.String())
		b.Put(r)
	}
	r.SetPhone(len(r.Phones()), p)
	return r, !ok, nil
}

// UpdatePhone replaces the phone at index i of the named record. Index 0 on
// a record with no phones sets its first phone.
func (b *AddressBook) UpdatePhone(name string, i int, newPhone string) error {
	r, err := b.lookup(name)
	if err != nil {
		return err
	}
	p, err := contact.NewPhone(newPhone)
	if err != nil {
		return err
	}
	n := len(r.Phones())
	if i < 0 || i > n || (i == n && n > 0) {
		return fmt.Errorf("%w: %s has no phone #%d", ErrPhoneNotFound, name, i+1)
	}
	r.SetPhone(i, p)
	return nil
}

// ReplacePhone replaces the first phone equal to oldPhone on the named
// record.
func (b *AddressBook) ReplacePhone(name, oldPhone, newPhone string) error {
	r, err := b.lookup(name)
	if err != nil {
		return err
	}
	p, err := contact.NewPhone(newPhone)
	if err != nil {
		return err
	}
	i := r.IndexOf(oldPhone)
	if i < 0 {
		return fmt.Errorf("%w: %s has no phone %s", ErrPhoneNotFound, name, oldPhone)
	}
	r.SetPhone(i, p)
	return nil
}

// GetPhones returns the phones of the named record in insertion order.
func (b *AddressBook) GetPhones(name string) ([]contact.Phone, error) {
	r, err := b.lookup(name)
	if err != nil {
		return nil, err
	}
	return r.Phones(), nil
}

// ListAll returns every record in insertion order.
func (b *AddressBook) ListAll() []*contact.Record {
	return slices.Clone(b.records)
}

// SetBirthday parses raw and sets it as the named record's birthday.
func (b *AddressBook) SetBirthday(name, raw string) error {
	r, err := b.lookup(name)
	if err != nil {
		return err
	}
	bd, err := contact.NewBirthday(raw)
	if err != nil {
		return err
	}
	r.SetBirthday(bd)
	return nil
}

// GetBirthday returns the named record's birthday. ok is false when the
// contact exists but has none.
func (b *AddressBook) GetBirthday(name string) (bd contact.Birthday, ok bool, err error) {
	r, err := b.lookup(name)
	if err != nil {
		return contact.Birthday{}, false, err
	}
	bd, ok = r.Birthday()
	return bd, ok, nil
}

// DeleteContact removes the named record.
func (b *AddressBook) DeleteContact(name string) error {
	i, ok := b.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrContactNotFound, name)
	}
	delete(b.index, name)
	b.records = slices.Delete(b.records, i, i+1)
	for j := i; j < len(b.records); j++ {
		b.index[b.records[j].Name().String()] = j
	}
	return nil
}

// Upcoming is a contact whose next birthday falls inside a query window.
type Upcoming struct {
	Name contact.Name
	On   time.Time
}

// UpcomingBirthdays returns the contacts whose next birthday on or after
// asOf falls within withinDays days of it, both ends inclusive. Results are
// ordered by date, then by name.
func (b *AddressBook) UpcomingBirthdays(withinDays int, asOf time.Time) []Upcoming {
	if withinDays < 0 {
		return nil
	}

	y, m, d := asOf.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, withinDays)

	var out []Upcoming
	for _, r := range b.records {
		bd, ok := r.Birthday()
		if !ok {
			continue
		}
		next := bd.Next(start)
		if next.After(end) {
			continue
		}
		out = append(out, Upcoming{Name: r.Name(), On: next})
	}

	slices.SortFunc(out, func(x, y Upcoming) int {
		if c := x.On.Compare(y.On); c != 0 {
			return c
		}
		return strings.Compare(x.Name.String(), y.Name.String())
	})
	return out
}

func (b *AddressBook) lookup(name string) (*contact.Record, error) {
	r, ok := b.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, name)
	}
	return r, nil
}
