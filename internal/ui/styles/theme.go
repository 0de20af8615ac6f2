package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kanban/internal/models"
)

// Theme is the board's color scheme
type Theme struct {
	Name string

	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth caps the board width; three columns need more room than a classic terminal
const MaxWidth = 120

// ContentWidth returns the width to lay out in (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally when the terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds the pre-computed styles for the UI
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style
	Header     lipgloss.Style

	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnTitle   lipgloss.Style

	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardMeta     lipgloss.Style

	Blocked lipgloss.Style
	Stale   lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Popup lipgloss.Style

	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Header: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1).
			Bold(true),

		Column: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		ColumnFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		ColumnTitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			MarginBottom(1),

		Card: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		CardSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 1).
			Bold(true),

		CardMeta: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		Blocked: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Stale: lipgloss.NewStyle().
			Foreground(t.Warning).
			Italic(true),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),

		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		Button: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Foreground(t.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),

		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error).
			Padding(0, 1),
	}
}

// PriorityStyle colors a priority label
func PriorityStyle(p models.Priority) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch p {
	case models.PriorityHigh:
		return s.Foreground(Current.Error)
	case models.PriorityMedium:
		return s.Foreground(Current.Warning)
	}
	return s.Foreground(Current.Success)
}

// PriorityBadge is the short marker shown on cards
func PriorityBadge(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return PriorityStyle(p).Render("▲ high")
	case models.PriorityMedium:
		return PriorityStyle(p).Render("■ med")
	}
	return PriorityStyle(p).Render("▼ low")
}
