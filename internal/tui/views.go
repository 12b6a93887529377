package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/suggest"
	"github.com/Veraticus/cashsearch/internal/tui/components"
)

// syncViews copies sub-machine state into the display components.
func (m *Model) syncViews() {
	switch {
	case m.showingHistory():
		items := make([]components.SuggestionItem, 0, len(m.history))
		for _, h := range m.history {
			items = append(items, components.SuggestionItem{
				Text:   h.Query,
				Detail: h.LastUsed.Format("Jan 2 15:04"),
			})
		}
		m.suggestions.SetItems("Recent searches", items, "")

	case len(m.pipeline.Suggestions()) > 0:
		items := make([]components.SuggestionItem, 0, len(m.pipeline.Suggestions()))
		for _, s := range m.pipeline.Suggestions() {
			items = append(items, components.SuggestionItem{Text: s.Text, Detail: s.Source})
		}
		m.suggestions.SetItems("Suggestions", items, "")

	case len(m.pipeline.Spelling()) > 0:
		items := make([]components.SuggestionItem, 0, len(m.pipeline.Spelling()))
		for _, s := range m.pipeline.Spelling() {
			items = append(items, components.SuggestionItem{
				Text:   s.Text,
				Detail: fmt.Sprintf("%.0f%%", s.Similarity*100),
			})
		}
		m.suggestions.SetItems("Did you mean:", items, "")

	case m.pipeline.Status() == suggest.StatusEmpty:
		m.suggestions.SetItems("", nil, "No suggestions found")

	default:
		m.suggestions.SetItems("", nil, "")
	}

	m.results.SetPage(m.search.PageQuery().Text, m.search.Page())
}

// render lays out the whole screen.
func (m Model) render() string {
	sections := []string{
		m.renderHeader(),
		m.renderInput(),
	}
	if s := m.renderSuggestions(); s != "" {
		sections = append(sections, s)
	}
	sections = append(sections, "", m.renderResults())
	if m.config.ShowHelp {
		sections = append(sections, "", m.help.View(m.keymap))
	}

	return m.theme.Box.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderHeader renders the title and the active scope.
func (m Model) renderHeader() string {
	title := m.theme.Title.Render("Cash Management Search")

	scope := m.search.Scope()
	flags := []struct {
		on     bool
		entity model.EntityType
	}{
		{scope.Payments, model.EntityPayment},
		{scope.Deposits, model.EntityDeposit},
		{scope.Loans, model.EntityLoan},
	}

	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		label := f.entity.Label() + "s"
		if f.on {
			parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.EntityColor(f.entity)).Render("[x] "+label))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Muted).Render("[ ] "+label))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(parts, "  "))
}

// renderInput renders the search box with the suggestion spinner.
func (m Model) renderInput() string {
	line := m.input.View()
	if m.pipeline.Loading() {
		line += " " + m.suggestSpinner.View()
	}
	return m.theme.BorderedBox.Padding(0, 1).Render(line)
}

// renderSuggestions renders recent searches, suggestions or corrections.
func (m Model) renderSuggestions() string {
	view := m.suggestions.View()
	if m.pipeline.Loading() && view == "" {
		return m.theme.StatusPending.Render("Looking for suggestions...")
	}
	return view
}

// renderResults renders the search outcome.
func (m Model) renderResults() string {
	var lines []string

	if m.search.Loading() {
		lines = append(lines, m.searchSpinner.View()+" "+m.theme.StatusPending.Render("Searching..."))
	}

	if msg := m.search.Err(); msg != "" {
		lines = append(lines, m.theme.StatusError.Render("✗ "+msg))
	}

	switch {
	case !m.search.Searched():
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Type a query and press Enter to search"))
	case m.search.Err() != "":
	case m.search.Loading() && m.search.Page().Empty():
	default:
		lines = append(lines, m.results.View())
	}

	return strings.Join(lines, "\n")
}
