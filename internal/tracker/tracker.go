// Package tracker ties record persistence to the streak engine and the
// achievement evaluator.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/birthlog/internal/achievement"
	"github.com/blackwell-systems/birthlog/internal/records"
	"github.com/blackwell-systems/birthlog/internal/streak"
)

// Store is the persistence the tracker needs: record CRUD plus the
// key-value blobs the engines and preferences live in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	InsertRecord(ctx context.Context, rec *records.BirthRecord) error
	UpdateRecord(ctx context.Context, rec *records.BirthRecord) error
	GetRecord(ctx context.Context, id string) (*records.BirthRecord, error)
	ListRecords(ctx context.Context) ([]records.BirthRecord, error)
	DeleteRecord(ctx context.Context, id string) error
}

// Outcome reports everything a saved record caused.
type Outcome struct {
	Record   records.BirthRecord       `json:"record"`
	Streak   *streak.DeliveryResult    `json:"streak,omitempty"`
	Unlocked []achievement.Achievement `json:"newAchievements"`
}

// Tracker is safe for concurrent use. Mutations hold mu from the record
// write through evaluation, so an evaluation never runs on a record list
// older than the one a concurrent call already evaluated.
type Tracker struct {
	db           Store
	streaks      *streak.Engine
	achievements *achievement.Engine
	now          func() time.Time
	logger       *slog.Logger

	mu sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger for fail-open reads.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New returns a Tracker over db and the two engines.
func New(db Store, streaks *streak.Engine, achievements *achievement.Engine, opts ...Option) *Tracker {
	t := &Tracker{
		db:           db,
		streaks:      streaks,
		achievements: achievements,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time { return t.now() }

// Streaks returns the streak engine.
func (t *Tracker) Streaks() *streak.Engine { return t.streaks }

// Achievements returns the achievement engine.
func (t *Tracker) Achievements() *achievement.Engine { return t.achievements }

// Save validates and persists a new record, then updates the streak and
// evaluates achievements concurrently. The record stays saved when the
// streak update fails; the error is returned alongside the outcome.
func (t *Tracker) Save(ctx context.Context, rec records.BirthRecord) (Outcome, error) {
	rec.NumberBabies()
	if err := rec.Validate(); err != nil {
		return Outcome{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.db.InsertRecord(ctx, &rec); err != nil {
		return Outcome{}, fmt.Errorf("saving record: %w", err)
	}

	all, err := t.db.ListRecords(ctx)
	if err != nil {
		return Outcome{Record: rec}, fmt.Errorf("listing records: %w", err)
	}
	prefs := t.Preferences(ctx)
	now := t.now()

	var (
		g        errgroup.Group
		result   streak.DeliveryResult
		unlocked []string
	)
	g.Go(func() error {
		var err error
		result, err = t.streaks.UpdateOnDelivery(ctx, now)
		return err
	})
	g.Go(func() error {
		unlocked = t.achievements.Check(ctx, all, prefs)
		return nil
	})
	err = g.Wait()

	out := Outcome{Record: rec, Unlocked: t.resolve(unlocked)}
	if err != nil {
		return out, fmt.Errorf("updating streak: %w", err)
	}
	out.Streak = &result
	return out, nil
}

// Update replaces an existing record and re-evaluates achievements. Edits
// never count as a new log for the streak.
func (t *Tracker) Update(ctx context.Context, rec records.BirthRecord) (Outcome, error) {
	rec.NumberBabies()
	if err := rec.Validate(); err != nil {
		return Outcome{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.db.UpdateRecord(ctx, &rec); err != nil {
		return Outcome{}, fmt.Errorf("updating record: %w", err)
	}
	unlocked, err := t.evaluate(ctx)
	return Outcome{Record: rec, Unlocked: unlocked}, err
}

// Delete removes a record and re-evaluates achievements.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.db.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	_, err := t.evaluate(ctx)
	return err
}

// Records lists all records, newest first.
func (t *Tracker) Records(ctx context.Context) ([]records.BirthRecord, error) {
	return t.db.ListRecords(ctx)
}

// Record returns a single record.
func (t *Tracker) Record(ctx context.Context, id string) (*records.BirthRecord, error) {
	return t.db.GetRecord(ctx, id)
}

// Evaluate runs a full achievement pass over the stored records.
func (t *Tracker) Evaluate(ctx context.Context) ([]achievement.Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.evaluate(ctx)
}

func (t *Tracker) evaluate(ctx context.Context) ([]achievement.Achievement, error) {
	all, err := t.db.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return t.resolve(t.achievements.Check(ctx, all, t.Preferences(ctx))), nil
}

// Reconcile brings the streak up to date with the current time.
func (t *Tracker) Reconcile(ctx context.Context) (streak.Data, streak.ReconcileReport, error) {
	return t.streaks.Reconcile(ctx, t.now())
}

// Preferences returns the stored preferences, or the zero value when they
// are missing or unreadable.
func (t *Tracker) Preferences(ctx context.Context) records.UserPreferences {
	var prefs records.UserPreferences
	raw, ok, err := t.db.Get(ctx, records.PreferencesKey)
	if err != nil {
		t.logger.Warn("reading preferences failed, using defaults", "key", records.PreferencesKey, "error", err)
		return prefs
	}
	if !ok {
		return prefs
	}
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		t.logger.Warn("decoding preferences failed, using defaults", "key", records.PreferencesKey, "error", err)
		return records.UserPreferences{}
	}
	return prefs
}

// SavePreferences persists prefs. A non-zero weekly goal is applied to the
// streak, and achievements are re-evaluated since some depend on
// preferences.
func (t *Tracker) SavePreferences(ctx context.Context, prefs records.UserPreferences) ([]achievement.Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.savePreferences(ctx, &prefs); err != nil {
		return nil, err
	}
	return t.evaluate(ctx)
}

// SetWeeklyGoal changes the weekly goal in both the preferences and the
// streak state, so the two never disagree.
func (t *Tracker) SetWeeklyGoal(ctx context.Context, goal int) (streak.Data, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prefs := t.Preferences(ctx)
	prefs.WeeklyGoal = streak.ClampGoal(goal)
	return t.savePreferences(ctx, &prefs)
}

// savePreferences writes prefs and, when it carries a goal, applies the goal
// to the streak. The returned streak state is zero when no goal was set.
func (t *Tracker) savePreferences(ctx context.Context, prefs *records.UserPreferences) (streak.Data, error) {
	if prefs.WeeklyGoal != 0 {
		prefs.WeeklyGoal = streak.ClampGoal(prefs.WeeklyGoal)
	}
	b, err := json.Marshal(prefs)
	if err != nil {
		return streak.Data{}, fmt.Errorf("encoding preferences: %w", err)
	}
	if err := t.db.Set(ctx, records.PreferencesKey, string(b)); err != nil {
		return streak.Data{}, fmt.Errorf("saving preferences: %w", err)
	}
	if prefs.WeeklyGoal == 0 {
		return streak.Data{}, nil
	}
	return t.streaks.SetWeeklyGoal(ctx, prefs.WeeklyGoal)
}

// Reset clears streak and achievement state. Records are kept.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.streaks.Reset(ctx); err != nil {
		return err
	}
	return t.achievements.Reset(ctx)
}

func (t *Tracker) resolve(ids []string) []achievement.Achievement {
	out := make([]achievement.Achievement, 0, len(ids))
	catalog := t.achievements.Catalog()
	for _, id := range ids {
		if a, ok := catalog.Lookup(id); ok {
			out = append(out, a)
		}
	}
	return out
}
