package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/tui/themes"
)

// rankWidth is the number of cells in a relevance bar.
const rankWidth = 5

// ResultListModel renders one page of search results as a table.
type ResultListModel struct {
	theme   themes.Theme
	printer *message.Printer
	query   string
	page    model.PageState
	table   table.Model
	width   int
}

// NewResultList creates an empty result list.
func NewResultList(theme themes.Theme) ResultListModel {
	t := table.New(
		table.WithFocused(false),
		table.WithHeight(3),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	// The table is display only; no row is ever highlighted.
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	m := ResultListModel{
		theme:   theme,
		printer: message.NewPrinter(language.English),
		table:   t,
		width:   80,
	}
	m.updateColumnWidths()
	return m
}

// SetPage replaces the displayed page.
func (m *ResultListModel) SetPage(query string, page model.PageState) {
	m.query = query
	m.page = page
	m.table.SetRows(m.buildTableRows())
	// Header row plus its border.
	m.table.SetHeight(max(len(page.Items), 1) + 2)
}

// Resize updates the component width.
func (m *ResultListModel) Resize(width int) {
	m.width = width
	m.updateColumnWidths()
}

// View renders the count line, the table and the page footer.
func (m ResultListModel) View() string {
	if m.page.Empty() {
		return lipgloss.NewStyle().Foreground(m.theme.Muted).
			Render(fmt.Sprintf("No results found for \"%s\"", m.query))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.table.View(),
		m.renderFooter(),
	)
}

func (m ResultListModel) renderHeader() string {
	noun := "results"
	if m.page.TotalElements == 1 {
		noun = "result"
	}
	return m.theme.Subtitle.Render(
		fmt.Sprintf("%d %s found for \"%s\"", m.page.TotalElements, noun, m.query))
}

func (m ResultListModel) renderFooter() string {
	status := fmt.Sprintf("Page %d of %d", m.page.CurrentPageIndex+1, max(m.page.TotalPages, 1))

	var hints []string
	if m.page.HasPrev() {
		hints = append(hints, "[PgUp] Previous")
	}
	if m.page.HasNext() {
		hints = append(hints, "[PgDn] Next")
	}

	line := m.theme.Normal.Render(status)
	if len(hints) > 0 {
		line += "  " + lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(hints, "  "))
	}
	return line
}

func (m ResultListModel) buildTableRows() []table.Row {
	rows := make([]table.Row, 0, len(m.page.Items))
	for _, r := range m.page.Items {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format("2006-01-02")
		}
		rows = append(rows, table.Row{
			r.EntityType.Label(),
			r.PrimaryIdentifier,
			r.PartyInfo,
			m.formatAmount(r.Amount, r.Currency),
			r.Status,
			date,
			rankBar(r.Rank),
		})
	}
	return rows
}

func (m ResultListModel) formatAmount(amount float64, currency string) string {
	return strings.TrimSpace(m.printer.Sprintf("%.2f %s", amount, currency))
}

// updateColumnWidths adjusts column widths to the available space.
func (m *ResultListModel) updateColumnWidths() {
	availableWidth := max(m.width-4, 70)

	columns := []table.Column{
		{Title: "Type", Width: 8},
		{Title: "Identifier", Width: max(12, int(float64(availableWidth)*0.16))},
		{Title: "Party", Width: max(14, int(float64(availableWidth)*0.26))},
		{Title: "Amount", Width: max(12, int(float64(availableWidth)*0.16))},
		{Title: "Status", Width: 10},
		{Title: "Date", Width: 10},
		{Title: "Rank", Width: rankWidth},
	}
	m.table.SetColumns(columns)
}

// rankBar draws rank in [0,1] as a fixed-width bar.
func rankBar(rank float64) string {
	filled := int(rank*rankWidth + 0.5)
	filled = min(max(filled, 0), rankWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", rankWidth-filled)
}
