package printer

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorAccent    = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
)

// Styles holds the styles used for rendering. The zero value renders plain
// text.
type Styles struct {
	Kind     lipgloss.Style
	Name     lipgloss.Style
	Literal  lipgloss.Style
	Operator lipgloss.Style
	Branch   lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Value    lipgloss.Style
}

// DefaultStyles returns the coloured styles
func DefaultStyles() Styles {
	return Styles{
		Kind: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary),
		Name: lipgloss.NewStyle().
			Foreground(colorSecondary),
		Literal: lipgloss.NewStyle().
			Foreground(colorAccent),
		Operator: lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true),
		Branch: lipgloss.NewStyle().
			Foreground(colorMuted),
		Error: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(colorAccent),
		Value: lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true),
	}
}

// PlainStyles returns styles that render text unchanged
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Kind:     plain,
		Name:     plain,
		Literal:  plain,
		Operator: plain,
		Branch:   plain,
		Error:    plain,
		Warning:  plain,
		Value:    plain,
	}
}
