// Package tui implements a read-only Bubble Tea browser for the address book.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zbook/internal/book"
	"github.com/zarlcorp/zbook/internal/contact"
)

type viewID int

const (
	viewList viewID = iota
	viewDetail
)

// accent is shared by the cursor and the upcoming birthday mark.
var accent = zstyle.ZburnAccent

// entry is a record with its birthday precomputed for display.
type entry struct {
	record *contact.Record
	next   time.Time // zero when the record has no birthday
	inDays int
	soon   bool
}

// navigateMsg tells the root model to switch views.
type navigateMsg struct {
	view viewID
}

// viewContactMsg requests the detail view for one contact.
type viewContactMsg struct {
	entry entry
}

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

// Model is the root TUI model.
type Model struct {
	version string
	active  viewID
	list    listModel
	detail  detailModel

	// terminal dimensions
	width  int
	height int
}

// New creates the root model over the contacts in b. Birthdays within
// window days of asOf are marked.
func New(version string, b *book.AddressBook, asOf time.Time, window int) Model {
	return Model{
		version: version,
		active:  viewList,
		list:    newListModel(entries(b, asOf, window)),
	}
}

// entries returns every contact in book order followed by the contacts
// with a birthday inside the window, in upcoming order.
func entries(b *book.AddressBook, asOf time.Time, window int) (all, upcoming []entry) {
	y, m, d := asOf.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	ups := b.UpcomingBirthdays(window, today)
	soon := make(map[string]bool, len(ups))
	for _, u := range ups {
		soon[u.Name.String()] = true
	}

	byName := make(map[string]entry)
	records := b.ListAll()
	all = make([]entry, 0, len(records))
	for _, r := range records {
		e := entry{record: r, soon: soon[r.Name().String()]}
		if bd, ok := r.Birthday(); ok {
			e.next = bd.Next(today)
			e.inDays = int(e.next.Sub(today).Hours() / 24)
		}
		all = append(all, e)
		byName[r.Name().String()] = e
	}

	for _, u := range ups {
		upcoming = append(upcoming, byName[u.Name.String()])
	}
	return all, upcoming
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case navigateMsg:
		m.active = msg.view
		return m, tea.ClearScreen

	case viewContactMsg:
		m.detail = newDetailModel(msg.entry)
		m.active = viewDetail
		return m, tea.ClearScreen
	}

	return m.updateActive(msg)
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewList:
		m.list, cmd = m.list.Update(msg)
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	}

	return m, cmd
}

func (m Model) View() string {
	var content string
	switch m.active {
	case viewList:
		content = m.list.View()
	case viewDetail:
		content = m.detail.View()
	}

	header := zstyle.RenderHeader("zbook", viewTitle(m.active, m.list.upcomingOnly), accent)
	if m.version != "" {
		header += " " + zstyle.MutedText.Render(m.version)
	}
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

// viewTitle returns the display title for each view.
func viewTitle(id viewID, upcomingOnly bool) string {
	switch id {
	case viewList:
		if upcomingOnly {
			return "Upcoming Birthdays"
		}
		return "Contacts"
	case viewDetail:
		return "Contact"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewList:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "view"},
			{Key: "b", Desc: "birthdays"},
			{Key: "q", Desc: "quit"},
		}
	case viewDetail:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "copy field"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	}
	return nil
}
