package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/cashsearch/internal/tui/themes"
)

// SuggestionItem is one selectable line.
type SuggestionItem struct {
	Text   string
	Detail string
}

// SuggestionListModel renders a titled list with an optional selection.
type SuggestionListModel struct {
	theme    themes.Theme
	title    string
	empty    string
	items    []SuggestionItem
	selected int
}

// NewSuggestionList creates an empty list.
func NewSuggestionList(theme themes.Theme) SuggestionListModel {
	return SuggestionListModel{theme: theme, selected: -1}
}

// SetItems replaces the list contents. empty is shown when items is empty.
func (m *SuggestionListModel) SetItems(title string, items []SuggestionItem, empty string) {
	m.title = title
	m.items = items
	m.empty = empty
	if m.selected >= len(items) {
		m.selected = -1
	}
}

// Select highlights item i; -1 clears the selection.
func (m *SuggestionListModel) Select(i int) {
	if i < -1 || i >= len(m.items) {
		i = -1
	}
	m.selected = i
}

// Selected returns the highlighted index, or -1.
func (m SuggestionListModel) Selected() int {
	return m.selected
}

// View renders the list.
func (m SuggestionListModel) View() string {
	if len(m.items) == 0 {
		if m.empty == "" {
			return ""
		}
		return lipgloss.NewStyle().Foreground(m.theme.Muted).Italic(true).Render(m.empty)
	}

	lines := make([]string, 0, len(m.items)+1)
	if m.title != "" {
		lines = append(lines, m.theme.Bold.Render(m.title))
	}
	for i, item := range m.items {
		marker := "  "
		text := item.Text
		if i == m.selected {
			marker = "› "
			text = m.theme.Selected.Render(text)
		} else {
			text = m.theme.Normal.Render(text)
		}

		line := marker + text
		if item.Detail != "" {
			line += " " + lipgloss.NewStyle().Foreground(m.theme.Muted).Render(item.Detail)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
