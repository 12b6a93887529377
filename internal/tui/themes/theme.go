package themes

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/cashsearch/internal/model"
)

// Palette is the set of colors a theme is derived from.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Error      lipgloss.Color

	// Entity accents color the scope toggles.
	Payment lipgloss.Color
	Deposit lipgloss.Color
	Loan    lipgloss.Color
}

// Theme defines the visual style for the TUI.
type Theme struct {
	Palette

	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	StatusPending lipgloss.Style
	StatusError   lipgloss.Style
	Box           lipgloss.Style
	BorderedBox   lipgloss.Style
}

// New derives every style of a theme from p.
func New(p Palette) Theme {
	fg := lipgloss.NewStyle().Foreground(p.Foreground)
	return Theme{
		Palette:       p,
		Title:         fg.Bold(true).MarginBottom(1),
		Subtitle:      lipgloss.NewStyle().Foreground(p.Subtle).MarginBottom(1),
		Normal:        fg,
		Bold:          fg.Bold(true),
		Selected:      fg.Background(p.Primary).Bold(true),
		StatusPending: lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		StatusError:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		Box:           lipgloss.NewStyle().Padding(1, 2),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(1, 2),
	}
}

// Default is the default theme.
var Default = New(Palette{
	Primary:    lipgloss.Color("#0e7490"),
	Foreground: lipgloss.Color("#f1f5f9"),
	Subtle:     lipgloss.Color("#94a3b8"),
	Muted:      lipgloss.Color("#64748b"),
	Border:     lipgloss.Color("#334155"),
	Error:      lipgloss.Color("#dc2626"),
	Payment:    lipgloss.Color("#38bdf8"),
	Deposit:    lipgloss.Color("#4ade80"),
	Loan:       lipgloss.Color("#fbbf24"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = New(Palette{
	Primary:    lipgloss.Color("#cba6f7"),
	Foreground: lipgloss.Color("#cdd6f4"),
	Subtle:     lipgloss.Color("#a6adc8"),
	Muted:      lipgloss.Color("#6c7086"),
	Border:     lipgloss.Color("#45475a"),
	Error:      lipgloss.Color("#f38ba8"),
	Payment:    lipgloss.Color("#89dceb"),
	Deposit:    lipgloss.Color("#a6e3a1"),
	Loan:       lipgloss.Color("#f9e2af"),
})

var byName = map[string]Theme{
	"default":          Default,
	"catppuccin-mocha": CatppuccinMocha,
}

// Names lists the selectable theme names.
func Names() []string {
	return []string{"default", "catppuccin-mocha"}
}

// GetTheme returns a theme by name, falling back to Default.
func GetTheme(name string) Theme {
	if t, ok := byName[name]; ok {
		return t
	}
	return Default
}

// EntityColor returns the accent color for an entity type.
func (t Theme) EntityColor(e model.EntityType) lipgloss.Color {
	switch e {
	case model.EntityPayment:
		return t.Payment
	case model.EntityDeposit:
		return t.Deposit
	case model.EntityLoan:
		return t.Loan
	default:
		return t.Muted
	}
}
