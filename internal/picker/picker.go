// Package picker provides the interactive application selector for the CLI.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halcyonlab/entra-token-util/internal/catalog"
)

const pageSize = 10

type mode int

const (
	modeList mode = iota
	modeFilter
	modeCustom
)

// Model is a Bubbletea model that lets the user pick an application from the
// pinned shortlist, filter the full catalog, or enter a custom client ID.
type Model struct {
	cat     *catalog.Catalog
	visible []catalog.App
	cursor  int
	offset  int
	mode    mode
	query   string
	input   string
	choice  *catalog.App
	aborted bool
}

// New creates a picker showing the pinned applications first.
func New(cat *catalog.Catalog) Model {
	return Model{cat: cat, visible: cat.Pinned()}
}

// Choice returns the selected application, or nil when the picker was
// dismissed without a selection.
func (m Model) Choice() *catalog.App {
	return m.choice
}

// Aborted reports whether the user quit without selecting.
func (m Model) Aborted() bool {
	return m.aborted
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Type == tea.KeyCtrlC {
		m.aborted = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeFilter:
		return m.updateFilter(key)
	case modeCustom:
		return m.updateCustom(key)
	default:
		return m.updateList(key)
	}
}

func (m Model) updateList(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "esc":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			if m.cursor >= m.offset+pageSize {
				m.offset = m.cursor - pageSize + 1
			}
		}
	case "enter":
		if len(m.visible) > 0 {
			app := m.visible[m.cursor]
			m.choice = &app
			return m, tea.Quit
		}
	case "/":
		m.mode = modeFilter
		m.query = ""
	case "c":
		m.mode = modeCustom
		m.input = ""
	}
	return m, nil
}

func (m Model) updateFilter(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.query = ""
		m.visible = m.cat.Pinned()
		m.cursor, m.offset = 0, 0
	case tea.KeyEnter:
		m.mode = modeList
	case tea.KeyBackspace:
		if len(m.query) > 0 {
			m.query = m.query[:len(m.query)-1]
			m.applyFilter()
		}
	case tea.KeyRunes:
		m.query += string(key.Runes)
		m.applyFilter()
	case tea.KeySpace:
		m.query += " "
		m.applyFilter()
	}
	return m, nil
}

func (m *Model) applyFilter() {
	if strings.TrimSpace(m.query) == "" {
		m.visible = m.cat.Pinned()
	} else {
		m.visible = m.cat.Search(m.query, 0)
	}
	m.cursor, m.offset = 0, 0
}

func (m Model) updateCustom(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.input = ""
	case tea.KeyEnter:
		id := strings.TrimSpace(m.input)
		if id != "" {
			m.choice = &catalog.App{
				Name:     "Custom application",
				ClientID: id,
				Scope:    catalog.DefaultScope,
			}
			return m, tea.Quit
		}
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		m.input += string(key.Runes)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case modeCustom:
		sb.WriteString("Enter client ID (esc to cancel):\n\n")
		sb.WriteString("  " + m.input + "█\n")
		return sb.String()
	case modeFilter:
		sb.WriteString(fmt.Sprintf("Filter: %s█\n\n", m.query))
	default:
		sb.WriteString("Select an application (/ to filter, c for custom client ID, q to quit)\n\n")
	}

	if len(m.visible) == 0 {
		sb.WriteString("  No matching applications.\n")
		return sb.String()
	}

	end := m.offset + pageSize
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for i := m.offset; i < end; i++ {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		app := m.visible[i]
		sb.WriteString(fmt.Sprintf("%s%s\n    %s\n", prefix, app.Name, app.ClientID))
	}
	if len(m.visible) > pageSize {
		sb.WriteString(fmt.Sprintf("\n  %d-%d of %d\n", m.offset+1, end, len(m.visible)))
	}

	return sb.String()
}

// Run shows the picker and blocks until the user selects or quits.
// A nil App with a nil error means the user dismissed the picker.
func Run(cat *catalog.Catalog) (*catalog.App, error) {
	program := tea.NewProgram(New(cat))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running picker: %w", err)
	}
	model, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return model.Choice(), nil
}
