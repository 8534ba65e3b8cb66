package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tests := []struct {
		name    string
		percent float64
		width   int
		want    string
	}{
		{"empty", 0, 4, "░░░░ 0%"},
		{"half", 50, 4, "██░░ 50%"},
		{"full", 100, 4, "████ 100%"},
		{"over", 150, 4, "████ 150%"},
		{"negative", -10, 4, "░░░░ -10%"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ProgressBar(tc.percent, tc.width))
		})
	}
}

func TestProgressBar_DefaultWidth(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)
	assert.Equal(t, 20, strings.Count(ProgressBar(0, 0), "░"))
}

func TestGoalDots(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "●●○ 2/3", GoalDots(2, 3))
	assert.Equal(t, "○ 0/1", GoalDots(0, 0))
	assert.Equal(t, "●● +1 3/2", GoalDots(3, 2))
}

func TestShields(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "◆◆◇", Shields(2, 3))
	assert.Equal(t, "◆◆◆", Shields(5, 3))
	assert.Equal(t, "◇◇◇", Shields(-1, 3))
}

func TestSection(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)
	s := Section("Streak")
	assert.Contains(t, s, "Streak")
	assert.Contains(t, s, strings.Repeat("─", 66))
}
