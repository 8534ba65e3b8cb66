package achievement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/birthlog/internal/records"
	"github.com/blackwell-systems/birthlog/internal/store"
)

type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(kv KV, opts ...Option) *Engine {
	opts = append([]Option{WithLogger(quietLogger()), WithLocation(time.UTC)}, opts...)
	return NewEngine(kv, opts...)
}

// spread returns n single-baby records on consecutive days starting Feb 1 2024.
func spread(n int) []records.BirthRecord {
	out := make([]records.BirthRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rec(at(2024, time.February, 1+i, 10)))
	}
	return out
}

func TestCheck_TenDeliveriesUnlocksCountMilestones(t *testing.T) {
	e := newTestEngine(newFakeKV())
	unlocked := e.Check(context.Background(), spread(10), records.UserPreferences{})

	assert.Contains(t, unlocked, "first_delivery")
	assert.Contains(t, unlocked, "ten_deliveries")
	assert.NotContains(t, unlocked, "twenty_five_deliveries")
	assert.Less(t, indexOf(unlocked, "first_delivery"), indexOf(unlocked, "ten_deliveries"))

	ua := e.Load(context.Background())
	assert.Equal(t, 10, ua.Stats.TotalDeliveries)
	assert.Equal(t, 10, ua.Stats.DailyStreak)
	assert.Equal(t, 1.0, e.Catalog().Progress(ua, "ten_deliveries"))
	assert.InDelta(t, 0.4, e.Catalog().Progress(ua, "twenty_five_deliveries"), 1e-9)
}

func TestCheck_IsIdempotent(t *testing.T) {
	e := newTestEngine(newFakeKV())
	ctx := context.Background()
	recs := spread(3)

	first := e.Check(ctx, recs, records.UserPreferences{})
	require.NotEmpty(t, first)
	assert.Empty(t, e.Check(ctx, recs, records.UserPreferences{}))
}

func TestCheck_ProgressRecordedForEveryAchievement(t *testing.T) {
	e := newTestEngine(newFakeKV())
	e.Check(context.Background(), spread(3), records.UserPreferences{})

	ua := e.Load(context.Background())
	for _, a := range e.Catalog() {
		_, ok := ua.Progress[a.ID]
		assert.True(t, ok, "missing progress for %s", a.ID)
	}
	assert.InDelta(t, 0.3, e.Catalog().Progress(ua, "ten_deliveries"), 1e-9)
	assert.Equal(t, 3, ua.Progress["ten_deliveries"])
}

func TestCheck_UnlocksAreAppendOnly(t *testing.T) {
	e := newTestEngine(newFakeKV())
	ctx := context.Background()
	e.Check(ctx, spread(2), records.UserPreferences{})
	e.Check(ctx, nil, records.UserPreferences{})

	ua := e.Load(ctx)
	assert.True(t, ua.IsUnlocked("first_delivery"))
	assert.Zero(t, ua.Stats.TotalDeliveries)
	assert.Equal(t, 2, ua.Stats.LongestDailyStreak)
}

func TestCheck_SaveFailureIsSwallowed(t *testing.T) {
	kv := newFakeKV()
	kv.setErr = errors.New("read-only")
	e := newTestEngine(kv)

	unlocked := e.Check(context.Background(), spread(1), records.UserPreferences{})
	assert.Equal(t, []string{"first_delivery"}, unlocked)
	assert.Empty(t, kv.data)
}

func TestLoad_FailsOpen(t *testing.T) {
	kv := newFakeKV()
	kv.data[StorageKey] = "]["
	e := newTestEngine(kv)
	assert.Equal(t, NewUserAchievements(), e.Load(context.Background()))

	kv.getErr = errors.New("locked")
	assert.Equal(t, NewUserAchievements(), e.Load(context.Background()))
}

func TestCheck_UnknownConditionNeverUnlocks(t *testing.T) {
	a, err := FromDefinition(Definition{ID: "moonlight", Type: "specific", Value: 1, Condition: "full_moon"})
	require.NoError(t, err)
	catalog, err := Builtin().With(a)
	require.NoError(t, err)

	e := newTestEngine(newFakeKV(), WithCatalog(catalog))
	unlocked := e.Check(context.Background(), spread(5), records.UserPreferences{})
	assert.NotContains(t, unlocked, "moonlight")

	ua := e.Load(context.Background())
	assert.Zero(t, ua.Progress["moonlight"])
	assert.Zero(t, catalog.Progress(ua, "moonlight"))
}

func TestCheck_TutorialCondition(t *testing.T) {
	e := newTestEngine(newFakeKV())
	unlocked := e.Check(context.Background(), nil, records.UserPreferences{TutorialCompleted: true})
	assert.Equal(t, []string{"tutorial_complete"}, unlocked)
}

func TestCheck_Twins(t *testing.T) {
	e := newTestEngine(newFakeKV())
	recs := []records.BirthRecord{rec(at(2024, time.May, 2, 10), records.GenderBoy, records.GenderGirl)}
	unlocked := e.Check(context.Background(), recs, records.UserPreferences{})
	assert.Contains(t, unlocked, "first_twins")
	assert.NotContains(t, unlocked, "first_triplets")
}

func TestProgress_UnknownID(t *testing.T) {
	assert.Zero(t, Builtin().Progress(NewUserAchievements(), "does_not_exist"))
}

func TestCatalog_Builtin(t *testing.T) {
	c := Builtin()
	seen := make(map[string]bool)
	for _, a := range c {
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
		assert.True(t, a.Category.Valid(), a.ID)
		assert.Positive(t, a.Requirement.Value, a.ID)
		if a.Requirement.Type == RequirementSpecific {
			assert.NotNil(t, a.Requirement.Condition, a.ID)
		}
	}
	first, ok := c.Lookup("first_delivery")
	require.True(t, ok)
	assert.Equal(t, 1, first.Requirement.Value)
	ten, ok := c.Lookup("ten_deliveries")
	require.True(t, ok)
	assert.Equal(t, 10, ten.Requirement.Value)
}

func TestCatalogWith_RejectsDuplicate(t *testing.T) {
	_, err := Builtin().With(Achievement{ID: "first_delivery"})
	assert.ErrorIs(t, err, ErrInvalidAchievement)
}

func TestFromDefinition(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr bool
	}{
		{"count", Definition{ID: "x", Type: "count", Value: 3}, false},
		{"streak", Definition{ID: "x", Type: "streak", Value: 3, Category: "streak"}, false},
		{"specific", Definition{ID: "x", Type: "specific", Value: 1, Condition: "twins"}, false},
		{"missing id", Definition{Type: "count", Value: 3}, true},
		{"zero value", Definition{ID: "x", Type: "count"}, true},
		{"bad type", Definition{ID: "x", Type: "weekly", Value: 1}, true},
		{"bad category", Definition{ID: "x", Type: "count", Value: 1, Category: "bonus"}, true},
		{"specific without condition", Definition{ID: "x", Type: "specific", Value: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := FromDefinition(tt.def)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAchievement)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "x", a.Name)
			assert.True(t, a.Category.Valid())
		})
	}
}

func TestRequirementJSON(t *testing.T) {
	b, err := json.Marshal(Requirement{Type: RequirementSpecific, Value: 2, Condition: Holiday{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"specific","value":2,"condition":"holiday"}`, string(b))
}

func TestEngine_WithSQLiteStore(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	e := newTestEngine(db)
	e.Check(ctx, spread(4), records.UserPreferences{})

	raw, ok, err := db.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	var ua UserAchievements
	require.NoError(t, json.Unmarshal([]byte(raw), &ua))
	assert.Equal(t, 4, ua.Stats.TotalDeliveries)
	assert.Equal(t, 4, ua.Stats.DailyStreak)
	assert.True(t, ua.IsUnlocked("daily_streak_3"))
}

func indexOf(ids []string, id string) int {
	for i, got := range ids {
		if got == id {
			return i
		}
	}
	return -1
}
