// Package store persists an address book in an encrypted zstore.
// Each contact is one document in the contacts collection.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zbook/internal/book"
	"github.com/zarlcorp/zbook/internal/contact"
)

const contactsCollection = "contacts"

// ErrWrongPassword is returned when the master password does not open the
// store.
var ErrWrongPassword = zstore.ErrWrongPassword

// document is the persisted form of a contact.
type document struct {
	Name     string   `json:"name"`
	Phones   []string `json:"phones"`
	Birthday string   `json:"birthday,omitempty"`
	Position int      `json:"position"`
}

// Store loads and saves address books.
type Store struct {
	zs       *zstore.Store
	contacts *zstore.Collection[document]
}

// Open opens or initializes the encrypted store on fsys.
func Open(fsys zfilesystem.ReadWriteFileFS, password []byte) (*Store, error) {
	zs, err := zstore.Open(fsys, password)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	col, err := zstore.NewCollection[document](zs, contactsCollection)
	if err != nil {
		zs.Close()
		return nil, fmt.Errorf("open store: %s collection: %w", contactsCollection, err)
	}

	return &Store{zs: zs, contacts: col}, nil
}

// Load reads every stored contact into a new address book, restoring the
// order in which they were saved. An empty store yields an empty book.
func (s *Store) Load() (*book.AddressBook, error) {
	docs, err := s.contacts.List()
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Position < docs[j].Position
	})

	records := make([]*contact.Record, 0, len(docs))
	for _, d := range docs {
		r, err := d.record()
		if err != nil {
			return nil, fmt.Errorf("load contacts: %w", err)
		}
		records = append(records, r)
	}

	return book.New(records...), nil
}

// Save writes b to the store. Current contacts are written before stale
// ones are removed, so an interrupted save never drops a contact that b
// still holds.
func (s *Store) Save(b *book.AddressBook) error {
	var errs []error
	keep := make(map[string]bool, b.Len())
	for i, r := range b.ListAll() {
		d := newDocument(r, i)
		key := documentKey(d.Name)
		keep[key] = true
		if err := s.contacts.Put(key, d); err != nil {
			errs = append(errs, fmt.Errorf("save contact %s: %w", d.Name, err))
		}
	}

	stored, err := s.contacts.List()
	if err != nil {
		errs = append(errs, fmt.Errorf("save contacts: list: %w", err))
		return errors.Join(errs...)
	}

	for _, d := range stored {
		key := documentKey(d.Name)
		if keep[key] {
			continue
		}
		if err := s.contacts.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("remove contact %s: %w", d.Name, err))
		}
	}

	return errors.Join(errs...)
}

// Close releases the store's key material.
func (s *Store) Close() error {
	return s.zs.Close()
}

func newDocument(r *contact.Record, position int) document {
	d := document{
		Name:     r.Name().String(),
		Phones:   []string{},
		Position: position,
	}
	for _, p := range r.Phones() {
		d.Phones = append(d.Phones, p.String())
	}
	if bd, ok := r.Birthday(); ok {
		d.Birthday = bd.String()
	}
	return d
}

func (d document) record() (*contact.Record, error) {
	r, err := contact.NewRecord(d.Name)
	if err != nil {
		return nil, err
	}
	for _, p := range d.Phones {
		if err := r.AddPhone(p); err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
	}
	if d.Birthday != "" {
		bd, err := contact.NewBirthday(d.Birthday)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		r.SetBirthday(bd)
	}
	return r, nil
}

// documentKey maps a contact name to a fixed-length collection key that is
// safe to use as a file name whatever the name's length or script.
func documentKey(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}
