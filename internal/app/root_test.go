package app

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/birthlog/internal/records"
	"github.com/blackwell-systems/birthlog/internal/store"
)

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "db_path: " + filepath.Join(dir, "birthlog.db") + "\n" +
		"timezone: UTC\n" +
		"output:\n  color: false\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"log", "records", "streak", "goal", "achievements", "prefs", "reset", "serve"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "no-color", "json", "verbose"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestLogThenList(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := runCLI(t, cfg, "log", "--babies", "boy,girl", "--type", "vaginal", "--notes", "smooth")
	require.NoError(t, err)
	assert.Contains(t, out, "Delivery logged")
	assert.Contains(t, out, "Streak started!")
	assert.Contains(t, out, "First Catch")
	assert.Contains(t, out, "Double Trouble")

	out, err = runCLI(t, cfg, "--json", "records")
	require.NoError(t, err)
	var recs []records.BirthRecord
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "smooth", recs[0].Notes)
	assert.Len(t, recs[0].Babies, 2)

	out, err = runCLI(t, cfg, "records")
	require.NoError(t, err)
	assert.Contains(t, out, "Deliveries (1 of 1)")
	assert.Contains(t, out, "boy, girl")
}

func TestLog_Invalid(t *testing.T) {
	cfg := writeConfig(t, "")
	_, err := runCLI(t, cfg, "log", "--babies", "dragon")
	assert.ErrorIs(t, err, records.ErrInvalidRecord)

	_, err = runCLI(t, cfg, "log")
	assert.ErrorIs(t, err, records.ErrInvalidRecord)

	_, err = runCLI(t, cfg, "log", "--babies", "girl", "--at", "yesterday")
	assert.Error(t, err)
}

func TestStreakJSON(t *testing.T) {
	cfg := writeConfig(t, "default_weekly_goal: 1\n")
	_, err := runCLI(t, cfg, "log", "--babies", "girl")
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "--json", "streak")
	require.NoError(t, err)
	var resp struct {
		Data struct {
			CurrentStreak int `json:"currentStreak"`
			WeeklyGoal    int `json:"weeklyGoal"`
		} `json:"streakData"`
		Status struct {
			IsGoalMet bool `json:"isGoalMet"`
		} `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.CurrentStreak)
	assert.Equal(t, 1, resp.Data.WeeklyGoal)
	assert.True(t, resp.Status.IsGoalMet)

	out, err = runCLI(t, cfg, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Weekly streak")
	assert.Contains(t, out, "1 weeks")
}

func TestGoal(t *testing.T) {
	cfg := writeConfig(t, "")
	out, err := runCLI(t, cfg, "goal", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Weekly goal set to 7.")

	out, err = runCLI(t, cfg, "--json", "prefs")
	require.NoError(t, err)
	var prefs records.UserPreferences
	require.NoError(t, json.Unmarshal([]byte(out), &prefs))
	assert.Equal(t, 7, prefs.WeeklyGoal)

	_, err = runCLI(t, cfg, "goal", "many")
	assert.Error(t, err)
}

func TestPrefsUnlocksTutorial(t *testing.T) {
	cfg := writeConfig(t, "")
	out, err := runCLI(t, cfg, "prefs", "--tutorial-completed", "--name", "Nights")
	require.NoError(t, err)
	assert.Contains(t, out, "Oriented unlocked!")
	assert.Contains(t, out, "Nights")

	out, err = runCLI(t, cfg, "--json", "prefs")
	require.NoError(t, err)
	var prefs records.UserPreferences
	require.NoError(t, json.Unmarshal([]byte(out), &prefs))
	assert.True(t, prefs.TutorialCompleted)
}

func TestAchievements_CustomFromConfig(t *testing.T) {
	cfg := writeConfig(t, `custom_achievements:
  double_shift:
    name: Double Shift
    type: count
    value: 2
`)
	_, err := runCLI(t, cfg, "log", "--babies", "girl")
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "--json", "achievements")
	require.NoError(t, err)
	var resp struct {
		Achievements []struct {
			ID       string  `json:"id"`
			Unlocked bool    `json:"unlocked"`
			Progress float64 `json:"progress"`
		} `json:"achievements"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	found := false
	for _, a := range resp.Achievements {
		if a.ID == "double_shift" {
			found = true
			assert.False(t, a.Unlocked)
			assert.InDelta(t, 0.5, a.Progress, 1e-9)
		}
	}
	assert.True(t, found)

	out, err = runCLI(t, cfg, "achievements", "--unlocked")
	require.NoError(t, err)
	assert.Contains(t, out, "First Catch")
	assert.NotContains(t, out, "Double Shift")
}

func TestAchievements_InvalidCustomDefinition(t *testing.T) {
	cfg := writeConfig(t, `custom_achievements:
  broken:
    type: count
`)
	_, err := runCLI(t, cfg, "achievements")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	cfg := writeConfig(t, "")
	_, err := runCLI(t, cfg, "log", "--babies", "girl")
	require.NoError(t, err)

	_, err = runCLI(t, cfg, "reset")
	assert.Error(t, err)

	out, err := runCLI(t, cfg, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "reset")

	out, err = runCLI(t, cfg, "--json", "records")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "["))
	assert.Contains(t, out, `"girl"`)
}

func TestRecordsDelete(t *testing.T) {
	cfg := writeConfig(t, "")
	_, err := runCLI(t, cfg, "records", "delete", "nope")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestParseWhen(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15 03:40", time.Date(2024, time.January, 15, 3, 40, 0, 0, loc)},
		{"2024-01-15T03:40", time.Date(2024, time.January, 15, 3, 40, 0, 0, loc)},
		{"2024-01-15", time.Date(2024, time.January, 15, 0, 0, 0, 0, loc)},
		{"2024-01-15T03:40:00Z", time.Date(2024, time.January, 15, 3, 40, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseWhen(tc.in, loc)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v", got)
		})
	}

	_, err := parseWhen("15/01/2024", loc)
	assert.Error(t, err)
}

func TestBuildRecord(t *testing.T) {
	now := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	rec, err := buildRecord(" Boy, GIRL ,", "C-Section", "", now)
	require.NoError(t, err)
	assert.Equal(t, []records.Baby{{Gender: records.GenderBoy}, {Gender: records.GenderGirl}}, rec.Babies)
	assert.Equal(t, records.DeliveryCSection, rec.DeliveryType)
	require.NotNil(t, rec.Timestamp)
	assert.True(t, rec.Timestamp.Equal(now))
}
