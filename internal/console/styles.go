package console

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection
)

// Color codes.
const (
	dimColorCode     = "240" // Dark gray
	errorColorCode   = "196" // Red
	labelColorCode   = "86"  // Cyan
	successColorCode = "42"  // Green
	warningColorCode = "226" // Yellow
)

// Styles renders console text, or passes it through untouched when plain.
type Styles struct {
	plain bool
}

// NewStyles returns colored styles, or plain ones when color is off.
func NewStyles(color bool) Styles {
	return Styles{plain: !color}
}

// ColorEnabled reports whether out is a terminal and color was not disabled
// by flag or by the NO_COLOR convention.
func ColorEnabled(out *os.File, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	return term.IsTerminal(int(out.Fd())) //nolint:gosec // file descriptors fit in int
}

// Error renders text in the attention style used for sync failures.
func (s Styles) Error(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(lipgloss.Color(errorColorCode)).Bold(true), text)
}

// Warning renders a warning.
func (s Styles) Warning(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(lipgloss.Color(warningColorCode)).Bold(true), text)
}

// Success renders a completed action.
func (s Styles) Success(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(lipgloss.Color(successColorCode)).Bold(true), text)
}

// Label renders a field name.
func (s Styles) Label(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(lipgloss.Color(labelColorCode)).Bold(true), text)
}

// Dim renders secondary text.
func (s Styles) Dim(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(lipgloss.Color(dimColorCode)), text)
}

func (s Styles) render(style lipgloss.Style, text string) string {
	if s.plain {
		return text
	}

	return style.Render(text)
}
