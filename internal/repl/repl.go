// Package repl implements the interactive command loop. It parses one line
// at a time, runs the matching address book operation and prints the reply.
// All printing happens here; the book never writes output.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/zarlcorp/zbook/internal/book"
	"github.com/zarlcorp/zbook/internal/contact"
)

const (
	welcome = "Welcome to the assistant bot!"
	prompt  = "Enter a command: "
	goodbye = "Good bye!"
)

// Session runs commands against one address book.
type Session struct {
	book   *book.AddressBook
	out    io.Writer
	now    func() time.Time
	window int
	prompt bool
	log    *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for upcoming birthdays.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithWindow sets how many days ahead the birthdays command looks.
func WithWindow(days int) Option {
	return func(s *Session) { s.window = days }
}

// WithPrompt enables the input prompt before each line.
func WithPrompt(on bool) Option {
	return func(s *Session) { s.prompt = on }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New creates a session that writes replies to out.
func New(b *book.AddressBook, out io.Writer, opts ...Option) *Session {
	s := &Session{
		book:   b,
		out:    out,
		now:    time.Now,
		window: 7,
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run reads commands from in until close or exit, end of input, or ctx is
// done. It returns ctx.Err() when interrupted and nil otherwise.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
		close(lines)
	}()

	fmt.Fprintln(s.out, welcome)
	for {
		if s.prompt {
			fmt.Fprint(s.out, prompt)
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			s.log.Info("session interrupted")
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				s.log.Debug("end of input")
				return nil
			}

			reply, done := s.Execute(line)
			if reply != "" {
				fmt.Fprintln(s.out, reply)
			}
			if done {
				return nil
			}
		}
	}
}

// ParseInput splits line into a lower-cased command and its arguments.
// A blank line yields an empty command.
func ParseInput(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// Execute runs one input line and returns the reply. done reports whether
// the line ended the session.
func (s *Session) Execute(line string) (reply string, done bool) {
	cmd, args := ParseInput(line)
	if cmd == "" {
		return "", false
	}
	s.log.Debug("command", "cmd", cmd, "args", len(args))

	switch cmd {
	case "close", "exit":
		return goodbye, true
	case "hello":
		return "How can I help you?", false
	case "help":
		return helpText, false
	case "add":
		return s.add(args), false
	case "change":
		return s.change(args), false
	case "phone":
		return s.phone(args), false
	case "all":
		return s.all(), false
	case "add-birthday":
		return s.addBirthday(args), false
	case "show-birthday":
		return s.showBirthday(args), false
	case "birthdays":
		return s.birthdays(args), false
	case "delete":
		return s.delete(args), false
	default:
		return "Invalid command.", false
	}
}

const helpText = `Commands:
  hello                        greet
  add <name> <phone>           add a contact or another phone
  change <name> <phone>        replace the first phone
  change <name> <old> <new>    replace a specific phone
  phone <name>                 show phones
  all                          list contacts
  add-birthday <name> <date>   set birthday (DD.MM.YYYY)
  show-birthday <name>         show birthday
  birthdays [days]             upcoming birthdays
  delete <name>                remove a contact
  close, exit                  save and quit`

func (s *Session) add(args []string) string {
	if len(args) != 2 {
		return "Invalid number of arguments. Please provide name and phone."
	}
	_, created, err := s.book.AddContact(args[0], args[1])
	if err != nil {
		return s.fail(err)
	}
	if created {
		return "Contact added."
	}
	return "Contact updated."
}

func (s *Session) change(args []string) string {
	var err error
	switch len(args) {
	case 2:
		err = s.book.UpdatePhone(args[0], 0, args[1])
	case 3:
		err = s.book.ReplacePhone(args[0], args[1], args[2])
	default:
		return "Invalid number of arguments. Please provide name and new phone."
	}
	if err != nil {
		return s.fail(err)
	}
	return "Phone number changed."
}

func (s *Session) phone(args []string) string {
	if len(args) != 1 {
		return "Invalid number of arguments. Please provide name."
	}
	phones, err := s.book.GetPhones(args[0])
	if err != nil {
		return s.fail(err)
	}
	if len(phones) == 0 {
		return fmt.Sprintf("%s has no phone numbers.", args[0])
	}
	parts := make([]string, len(phones))
	for i, p := range phones {
		parts[i] = p.String()
	}
	return fmt.Sprintf("The phone number for %s is %s.", args[0], strings.Join(parts, ", "))
}

func (s *Session) all() string {
	records := s.book.ListAll()
	if len(records) == 0 {
		return "No contacts found."
	}
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

func (s *Session) addBirthday(args []string) string {
	if len(args) != 2 {
		return "Invalid number of arguments. Please provide name and birthday in format DD.MM.YYYY."
	}
	if err := s.book.SetBirthday(args[0], args[1]); err != nil {
		return s.fail(err)
	}
	return fmt.Sprintf("Birthday added for %s.", args[0])
}

func (s *Session) showBirthday(args []string) string {
	if len(args) != 1 {
		return "Invalid number of arguments. Please provide name of the contact."
	}
	bd, ok, err := s.book.GetBirthday(args[0])
	if err != nil {
		return s.fail(err)
	}
	if !ok {
		return "Birthday not set."
	}
	return fmt.Sprintf("%s's birthday is on %s.", args[0], bd)
}

func (s *Session) birthdays(args []string) string {
	days := s.window
	switch len(args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return "Invalid number of days. Please provide a non-negative number."
		}
		days = n
	default:
		return "Invalid number of arguments. Usage: birthdays [days]."
	}

	upcoming := s.book.UpcomingBirthdays(days, s.now())
	if len(upcoming) == 0 {
		return fmt.Sprintf("No birthdays in the next %d days.", days)
	}
	lines := make([]string, 0, len(upcoming)+1)
	lines = append(lines, fmt.Sprintf("Birthdays in the next %d days:", days))
	for _, u := range upcoming {
		lines = append(lines, fmt.Sprintf("  %s: %s (%s)", u.Name, u.On.Format(contact.DateLayout), u.On.Weekday()))
	}
	return strings.Join(lines, "\n")
}

func (s *Session) delete(args []string) string {
	if len(args) != 1 {
		return "Invalid number of arguments. Please provide name."
	}
	if err := s.book.DeleteContact(args[0]); err != nil {
		return s.fail(err)
	}
	return "Contact deleted."
}

// fail turns an operation error into the message shown to the user.
func (s *Session) fail(err error) string {
	s.log.Debug("command failed", "err", err)
	return Message(err)
}

// Message returns the user-facing text for an address book error.
func Message(err error) string {
	switch {
	case errors.Is(err, book.ErrContactNotFound):
		return "Contact not found."
	case errors.Is(err, book.ErrPhoneNotFound):
		return "Phone number not found."
	case errors.Is(err, contact.ErrInvalidName):
		return "Name cannot be empty."
	case errors.Is(err, contact.ErrInvalidPhone):
		return "Invalid phone number. It must contain 10 digits."
	case errors.Is(err, contact.ErrInvalidDateFormat):
		return "Invalid date format. Use DD.MM.YYYY"
	default:
		return "Error: " + err.Error()
	}
}
