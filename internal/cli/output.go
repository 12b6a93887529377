package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/storage"
)

// Printer writes command output. Styling is applied by lipgloss, which
// degrades to plain text when w is not a terminal.
type Printer struct {
	w       io.Writer
	numbers *message.Printer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, numbers: message.NewPrinter(language.English)}
}

// Line writes a single line.
func (p *Printer) Line(s string) error {
	_, err := fmt.Fprintln(p.w, s)
	return err
}

// SearchResults writes one page of search results.
func (p *Printer) SearchResults(query string, resp model.SearchResponse) error {
	if len(resp.Content) == 0 {
		return p.Line(FormatInfo(fmt.Sprintf("No results found for %q", query)))
	}

	noun := "results"
	if resp.TotalElements == 1 {
		noun = "result"
	}
	if err := p.Line(FormatTitle(fmt.Sprintf("%d %s found for %q", resp.TotalElements, noun, query))); err != nil {
		return err
	}

	if err := p.results(resp.Content); err != nil {
		return err
	}

	return p.Line(SubtleStyle.Render(fmt.Sprintf("Page %d of %d", resp.Number+1, max(resp.TotalPages, 1))))
}

// FuzzyResults writes fuzzy matches, best first.
func (p *Printer) FuzzyResults(query string, results []model.SearchResult) error {
	if len(results) == 0 {
		return p.Line(FormatInfo(fmt.Sprintf("No fuzzy matches for %q", query)))
	}
	if err := p.Line(FormatTitle(fmt.Sprintf("%d fuzzy matches for %q", len(results), query))); err != nil {
		return err
	}
	return p.results(results)
}

func (p *Printer) results(results []model.SearchResult) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	header := []string{"TYPE", "IDENTIFIER", "PARTY", "AMOUNT", "STATUS", "DATE", "RANK"}
	for i, h := range header {
		header[i] = TableHeaderStyle.Render(h)
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range results {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format("2006-01-02")
		}
		row := []string{
			EntityStyle(r.EntityType).Render(r.EntityType.Label()),
			r.PrimaryIdentifier,
			r.PartyInfo,
			p.amount(r.Amount, r.Currency),
			r.Status,
			date,
			fmt.Sprintf("%.2f", r.Rank),
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return w.Flush()
}

func (p *Printer) amount(amount float64, currency string) string {
	return strings.TrimSpace(p.numbers.Sprintf("%.2f %s", amount, currency))
}

// Suggestions writes autocomplete suggestions, or the spelling corrections
// that replaced them.
func (p *Printer) Suggestions(input string, suggestions []model.AutocompleteSuggestion, spelling []model.SpellingSuggestion) error {
	switch {
	case len(suggestions) > 0:
		if err := p.Line(FormatTitle("Suggestions")); err != nil {
			return err
		}
		for _, s := range suggestions {
			if err := p.Line(fmt.Sprintf("  %s  %s", s.Text, SubtleStyle.Render(s.Source))); err != nil {
				return err
			}
		}
		return nil

	case len(spelling) > 0:
		if err := p.Line(FormatTitle("Did you mean:")); err != nil {
			return err
		}
		for _, s := range spelling {
			if err := p.Line(fmt.Sprintf("  %s  %s", s.Text, SubtleStyle.Render(fmt.Sprintf("%.0f%%", s.Similarity*100)))); err != nil {
				return err
			}
		}
		return nil

	default:
		return p.Line(FormatInfo(fmt.Sprintf("No suggestions found for %q", input)))
	}
}

// History writes recent searches, newest first.
func (p *Printer) History(entries []storage.HistoryEntry) error {
	if len(entries) == 0 {
		return p.Line(FormatInfo("No recent searches"))
	}
	if err := p.Line(FormatTitle("Recent searches")); err != nil {
		return err
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n",
		TableHeaderStyle.Render("QUERY"),
		TableHeaderStyle.Render("USES"),
		TableHeaderStyle.Render("LAST USED")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", e.Query, e.UseCount, e.LastUsed.Local().Format("2006-01-02 15:04")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return w.Flush()
}
