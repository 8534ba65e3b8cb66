package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/blackwell-systems/birthlog/internal/achievement"
	"github.com/blackwell-systems/birthlog/internal/config"
	"github.com/blackwell-systems/birthlog/internal/output"
	"github.com/blackwell-systems/birthlog/internal/store"
	"github.com/blackwell-systems/birthlog/internal/streak"
	"github.com/blackwell-systems/birthlog/internal/tracker"
)

// env is everything a command needs, opened from the configuration.
type env struct {
	cfg     *config.Config
	db      *store.DB
	loc     *time.Location
	tracker *tracker.Tracker
}

func (e *env) Close() error {
	return e.db.Close()
}

// now returns the current time in the configured zone.
func (e *env) now() time.Time {
	return e.tracker.Now()
}

func openEnv() (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	catalog, err := buildCatalog(cfg.CustomAchievements)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	logger := slog.Default()
	streaks := streak.NewEngine(db,
		streak.WithLogger(logger),
		streak.WithDefaultGoal(cfg.DefaultWeeklyGoal),
	)
	achievements := achievement.NewEngine(db,
		achievement.WithLogger(logger),
		achievement.WithCatalog(catalog),
		achievement.WithLocation(loc),
	)
	tr := tracker.New(db, streaks, achievements,
		tracker.WithLogger(logger),
		tracker.WithClock(func() time.Time { return time.Now().In(loc) }),
	)
	return &env{cfg: cfg, db: db, loc: loc, tracker: tr}, nil
}

// buildCatalog appends configured achievements to the built-in catalog in
// ID order.
func buildCatalog(defs map[string]config.AchievementDefinition) (achievement.Catalog, error) {
	ids := make([]string, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	extra := make([]achievement.Achievement, 0, len(ids))
	for _, id := range ids {
		d := defs[id]
		a, err := achievement.FromDefinition(achievement.Definition{
			ID:          id,
			Name:        d.Name,
			Description: d.Description,
			Icon:        d.Icon,
			Category:    d.Category,
			Type:        d.Type,
			Value:       d.Value,
			Condition:   d.Condition,
		})
		if err != nil {
			return nil, fmt.Errorf("custom achievement: %w", err)
		}
		extra = append(extra, a)
	}
	return achievement.Builtin().With(extra...)
}
