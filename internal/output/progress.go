package output

import (
	"fmt"
	"strings"
)

// ProgressBar renders a visual bar for a 0-100 percentage.
// Example: "████████░░ 80%"
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((percent / 100.0) * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case percent >= 100:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case percent >= 50:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleMuted.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.0f%%", percent)))
}

// GoalDots renders one dot per weekly goal slot, filled for each log.
// Logs beyond the goal are shown as a "+n" suffix.
// Example: "●●○ 2/3"
func GoalDots(logs, goal int) string {
	if goal <= 0 {
		goal = 1
	}
	filled := min(max(logs, 0), goal)
	dots := StyleSuccess.Render(strings.Repeat("●", filled)) +
		StyleMuted.Render(strings.Repeat("○", goal-filled))
	if logs > goal {
		dots += StyleSuccess.Render(fmt.Sprintf(" +%d", logs-goal))
	}
	return fmt.Sprintf("%s %d/%d", dots, logs, goal)
}

// Shields renders held streak shields out of the maximum.
// Example: "◆◆◇"
func Shields(held, maximum int) string {
	held = max(0, min(held, maximum))
	return StyleWarning.Render(strings.Repeat("◆", held)) +
		StyleMuted.Render(strings.Repeat("◇", maximum-held))
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// KeyValue renders an aligned label/value line.
func KeyValue(label, value string) string {
	return fmt.Sprintf(" %s%s", StyleLabel.Render(label), value)
}
