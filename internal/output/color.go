// Package output provides styled terminal rendering helpers for birthlog.
package output

import "github.com/charmbracelet/lipgloss"

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for met goals and unlocked achievements.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for broken streaks and failures.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for at-risk weeks and recovery challenges.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorStreak is used for the streak counter.
	ColorStreak = lipgloss.Color("#ff8a65")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	StyleHeader  lipgloss.Style
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleStreak  lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleBold    lipgloss.Style

	// StyleLabel is used for metric labels.
	StyleLabel lipgloss.Style

	// StyleValue is used for metric values.
	StyleValue lipgloss.Style
)

func init() {
	applyStyles(false)
}

func applyStyles(plain bool) {
	base := lipgloss.NewStyle()
	color := func(c lipgloss.Color) lipgloss.Style {
		if plain {
			return base
		}
		return base.Foreground(c)
	}

	StyleHeader = color(ColorPrimary).Bold(!plain)
	StyleSuccess = color(ColorSuccess)
	StyleError = color(ColorError)
	StyleWarning = color(ColorWarning)
	StyleStreak = color(ColorStreak).Bold(!plain)
	StyleMuted = color(ColorMuted)
	StyleBold = base.Bold(!plain)
	StyleLabel = base.Width(24)
	StyleValue = base.Bold(!plain).Width(12)
}

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or re-enables color output globally by reassigning
// the package-level styles.
func SetNoColor(disabled bool) {
	noColor = disabled
	applyStyles(disabled)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}
