package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zbook/internal/contact"
)

// listModel displays contacts in a scrollable list.
type listModel struct {
	all          []entry
	upcoming     []entry
	shown        []entry
	upcomingOnly bool
	cursor       int
}

func newListModel(all, upcoming []entry) listModel {
	return listModel{all: all, upcoming: upcoming, shown: all}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m listModel) handleKey(msg tea.KeyMsg) (listModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if msg.String() == "b" {
		m.upcomingOnly = !m.upcomingOnly
		m.shown = m.all
		if m.upcomingOnly {
			m.shown = m.upcoming
		}
		m.cursor = 0
		return m, nil
	}

	if len(m.shown) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.shown)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		e := m.shown[m.cursor]
		return m, func() tea.Msg { return viewContactMsg{entry: e} }
	}

	return m, nil
}

func (m listModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"

	if len(m.shown) == 0 {
		empty := "no contacts"
		if m.upcomingOnly {
			empty = "no upcoming birthdays"
		}
		s += "  " + zstyle.MutedText.Render(empty) + "\n"
		return s
	}

	for i, e := range m.shown {
		name := truncate(e.record.Name().String(), 20)
		phone := ""
		if ps := e.record.Phones(); len(ps) > 0 {
			phone = ps[0].String()
		}
		birthday := ""
		if bd, ok := e.record.Birthday(); ok {
			birthday = bd.String()
		}
		line := fmt.Sprintf("%-20s %-12s %-10s", name, phone, birthday)

		if e.soon {
			line += "  " + zstyle.StatusWarn.Render(soonLabel(e))
		}

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	return s
}

func soonLabel(e entry) string {
	switch e.inDays {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	}
	return fmt.Sprintf("in %d days (%s)", e.inDays, e.next.Format(contact.DateLayout[:5]))
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
