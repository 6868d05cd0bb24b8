package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"finboard/internal/i18n"
	"finboard/internal/model"
	"finboard/internal/table"
)

const maxSuggestions = 6

// FilterFormModel edits the filter of one column. Every keystroke updates
// the pending filter; enter confirms it and esc restores the confirmed one.
type FilterFormModel struct {
	engine      *table.Engine
	column      table.Column
	cat         *i18n.Catalog
	keys        FilterKeyMap
	input       textinput.Model
	values      []string
	suggestions []string
	hint        int
}

// NewFilterFormModel opens the editor on column, prefilled with its pending
// or confirmed value.
func NewFilterFormModel(engine *table.Engine, column table.Column, cat *i18n.Catalog) FilterFormModel {
	input := textinput.New()
	input.Placeholder = column.Label
	input.CharLimit = 100
	input.SetValue(engine.FilterValue(column.Key, true))
	input.CursorEnd()
	input.Focus()

	m := FilterFormModel{
		engine: engine,
		column: column,
		cat:    cat,
		keys:   DefaultFilterKeyMap(),
		input:  input,
		values: engine.Values(column.Key),
	}
	m.refreshSuggestions()
	return m
}

func (m *FilterFormModel) refreshSuggestions() {
	m.suggestions = table.Suggest(m.input.Value(), m.values, maxSuggestions)
	m.hint = 0
}

func (m FilterFormModel) close(applied, cleared bool) tea.Cmd {
	msg := model.FilterClosedMsg{Column: m.column.Key, Applied: applied, Cleared: cleared}
	return func() tea.Msg {
		return msg
	}
}

// Update handles all messages.
func (m FilterFormModel) Update(msg tea.Msg) (FilterFormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Apply):
		m.engine.ApplyFilter(m.column.Key)
		return m, m.close(true, false)
	case key.Matches(keyMsg, m.keys.Cancel):
		m.engine.CancelFilter(m.column.Key)
		return m, m.close(false, false)
	case key.Matches(keyMsg, m.keys.Clear):
		m.engine.ClearFilter(m.column.Key)
		return m, m.close(false, true)
	case key.Matches(keyMsg, m.keys.Complete):
		if len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[m.hint])
			m.input.CursorEnd()
			m.engine.SetPendingFilter(m.column.Key, m.input.Value())
			m.refreshSuggestions()
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.NextHint):
		if m.hint < len(m.suggestions)-1 {
			m.hint++
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.PrevHint):
		if m.hint > 0 {
			m.hint--
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	if m.input.Value() != before {
		m.engine.SetPendingFilter(m.column.Key, m.input.Value())
		m.refreshSuggestions()
	}
	return m, cmd
}

// Value returns the text being edited.
func (m FilterFormModel) Value() string {
	return m.input.Value()
}

// Suggestions returns the completions for the current text.
func (m FilterFormModel) Suggestions() []string {
	return m.suggestions
}

// View renders the filter editor.
func (m FilterFormModel) View(width int) string {
	var sections []string
	sections = append(sections, renderFormField(m.cat.T("filter.title", m.column.Label), m.input, true))

	if current := m.engine.FilterValue(m.column.Key, false); current != "" {
		sections = append(sections, HelpDescStyle.Render(m.cat.T("filter.current", current)))
	}

	if len(m.suggestions) > 0 {
		lines := []string{LabelStyle.Render(m.cat.T("filter.suggestions"))}
		for i, s := range m.suggestions {
			style := NormalRowStyle
			prefix := "  "
			if i == m.hint {
				style = SelectedRowStyle
				prefix = "› "
			}
			lines = append(lines, style.Render(prefix+s))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	sections = append(sections, HelpDescStyle.Render(m.cat.T("filter.hint")))

	return PanelStyle.Width(max(0, width-4)).Render(strings.Join(sections, "\n\n"))
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}
