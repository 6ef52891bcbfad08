package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zbook/internal/contact"
)

// contactField represents a labeled field for display and selection.
type contactField struct {
	label string
	value string
}

// detailModel displays all fields of one contact.
type detailModel struct {
	entry  entry
	fields []contactField
	cursor int
	flash  string
}

func newDetailModel(e entry) detailModel {
	return detailModel{
		entry:  e,
		fields: contactFields(e),
	}
}

func contactFields(e entry) []contactField {
	r := e.record
	fields := []contactField{{"name", r.Name().String()}}
	for i, p := range r.Phones() {
		label := "phone"
		if i > 0 {
			label = fmt.Sprintf("phone %d", i+1)
		}
		fields = append(fields, contactField{label, p.String()})
	}
	if bd, ok := r.Birthday(); ok {
		fields = append(fields,
			contactField{"birthday", bd.String()},
			contactField{"next", e.next.Format(contact.DateLayout)},
		)
	}
	return fields
}

func (m detailModel) Init() tea.Cmd {
	return nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		val := m.fields[m.cursor].value
		if err := copyToClipboard(val); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied!"
		return m, clearFlashAfter()
	}

	return m, nil
}

func (m detailModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n  " + zstyle.Subtitle.Render(m.entry.record.Name().String()) + "\n\n"

	for i, f := range m.fields {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-10s", f.label))
		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + label + " " + f.value + "\n"
		} else {
			s += "    " + label + " " + f.value + "\n"
		}
	}

	s += "\n"
	if _, ok := m.entry.record.Birthday(); ok {
		s += "  " + zstyle.MutedText.Render(untilText(m.entry.inDays)) + "\n"
	} else {
		s += "  " + zstyle.MutedText.Render("no birthday set") + "\n"
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

func untilText(days int) string {
	switch days {
	case 0:
		return "birthday is today"
	case 1:
		return "birthday is tomorrow"
	}
	return fmt.Sprintf("birthday in %d days", days)
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}
