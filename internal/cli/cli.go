// Package cli implements zbook's one-shot subcommands and the store
// plumbing they share with the interactive loop.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zbook/internal/book"
	"github.com/zarlcorp/zbook/internal/contact"
	"github.com/zarlcorp/zbook/internal/store"
	"golang.org/x/term"
)

// PasswordEnv names the variable that supplies the master password
// without a prompt.
const PasswordEnv = "ZBOOK_PASSWORD"

// DataDir returns the default data directory for zbook.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d + "/zbook"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zbook"
	}
	return home + "/.local/share/zbook"
}

// ReadPassword prompts for a password on w and reads it without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// ReadNewPassword prompts for a new password with confirmation.
func ReadNewPassword(w io.Writer) (string, error) {
	pass, err := ReadPassword("master password: ", w)
	if err != nil {
		return "", err
	}
	confirm, err := ReadPassword("confirm password: ", w)
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return pass, nil
}

// IsFirstRun checks whether the store has been initialized.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(dir + "/salt")
	return err != nil
}

// Password returns the master password from PasswordEnv, or prompts for it
// on w. The first run asks for confirmation.
func Password(dir string, w io.Writer) ([]byte, error) {
	if p := os.Getenv(PasswordEnv); p != "" {
		return []byte(p), nil
	}

	var pass string
	var err error
	if IsFirstRun(dir) {
		pass, err = ReadNewPassword(w)
	} else {
		pass, err = ReadPassword("master password: ", w)
	}
	if err != nil {
		return nil, err
	}
	return []byte(pass), nil
}

// OpenStore creates dir if needed and opens the encrypted contact store
// in it.
func OpenStore(dir string, password []byte) (*store.Store, error) {
	defer zcrypto.Erase(password)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	fsys := zfilesystem.NewOSFileSystem(dir)
	return store.Open(fsys, password)
}

// contactView is the JSON form of a contact.
type contactView struct {
	Name     string   `json:"name"`
	Phones   []string `json:"phones"`
	Birthday string   `json:"birthday,omitempty"`
}

// upcomingView is the JSON form of an upcoming birthday.
type upcomingView struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	InDays int    `json:"in_days"`
}

// CmdList prints every contact in b.
func CmdList(w io.Writer, b *book.AddressBook, asJSON bool) error {
	records := b.ListAll()

	if asJSON {
		views := make([]contactView, 0, len(records))
		for _, r := range records {
			views = append(views, newContactView(r))
		}
		return printJSON(w, views)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "no contacts")
		return nil
	}

	for _, r := range records {
		v := newContactView(r)
		first := ""
		if len(v.Phones) > 0 {
			first = v.Phones[0]
		}
		if n := len(v.Phones); n > 1 {
			first += fmt.Sprintf(" (+%d)", n-1)
		}
		fmt.Fprintf(w, "  %-20s %-18s %s\n", v.Name, first, v.Birthday)
	}
	return nil
}

// CmdBirthdays prints contacts whose birthday falls within days of asOf.
func CmdBirthdays(w io.Writer, b *book.AddressBook, days int, asOf time.Time, asJSON bool) error {
	upcoming := b.UpcomingBirthdays(days, asOf)
	y, m, d := asOf.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	views := make([]upcomingView, 0, len(upcoming))
	for _, u := range upcoming {
		views = append(views, upcomingView{
			Name:   u.Name.String(),
			Date:   u.On.Format(contact.DateLayout),
			InDays: int(u.On.Sub(today).Hours() / 24),
		})
	}

	if asJSON {
		return printJSON(w, views)
	}

	if len(views) == 0 {
		fmt.Fprintf(w, "no birthdays in the next %d days\n", days)
		return nil
	}

	for _, v := range views {
		when := fmt.Sprintf("in %d days", v.InDays)
		switch v.InDays {
		case 0:
			when = "today"
		case 1:
			when = "tomorrow"
		}
		fmt.Fprintf(w, "  %-20s %s  %s\n", v.Name, v.Date, when)
	}
	return nil
}

// CmdForget deletes the named contact from b.
func CmdForget(w io.Writer, b *book.AddressBook, name string) error {
	if err := b.DeleteContact(name); err != nil {
		return fmt.Errorf("forget: %w", err)
	}
	fmt.Fprintf(w, "deleted %s\n", name)
	return nil
}

func newContactView(r *contact.Record) contactView {
	v := contactView{Name: r.Name().String(), Phones: []string{}}
	for _, p := range r.Phones() {
		v.Phones = append(v.Phones, p.String())
	}
	if bd, ok := r.Birthday(); ok {
		v.Birthday = bd.String()
	}
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
