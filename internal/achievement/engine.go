package achievement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blackwell-systems/birthlog/internal/records"
)

// KV is the whole-blob key-value store the engine persists into.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Evaluate recomputes stats from recs and unlocks every catalog entry whose
// progress has reached its requirement. Unlocks are append-only. It returns
// the updated state and the IDs unlocked by this pass, in catalog order.
func Evaluate(prev UserAchievements, catalog Catalog, recs []records.BirthRecord, prefs records.UserPreferences, loc *time.Location) (UserAchievements, []string) {
	ua := prev.clone()
	ua.Stats = ComputeStats(recs, prev.Stats, loc)
	tally := NewTally(recs, prefs, loc)

	unlocked := []string{}
	for _, a := range catalog {
		progress := measure(a.Requirement, ua.Stats, tally)
		if ua.IsUnlocked(a.ID) {
			if _, ok := ua.Progress[a.ID]; !ok {
				ua.Progress[a.ID] = progress
			}
			continue
		}
		ua.Progress[a.ID] = progress
		if progress >= a.Requirement.Value {
			ua.Unlocked = append(ua.Unlocked, a.ID)
			unlocked = append(unlocked, a.ID)
		}
	}
	return ua, unlocked
}

func measure(req Requirement, stats Stats, tally *Tally) int {
	switch req.Type {
	case RequirementCount:
		return stats.TotalDeliveries
	case RequirementStreak:
		return stats.DailyStreak
	case RequirementSpecific:
		if req.Condition == nil {
			return 0
		}
		return req.Condition.Measure(tally)
	}
	return 0
}

// Progress returns the completion ratio of the achievement in [0, 1].
// Unknown IDs report 0.
func (c Catalog) Progress(ua UserAchievements, id string) float64 {
	a, ok := c.Lookup(id)
	if !ok || a.Requirement.Value <= 0 {
		return 0
	}
	ratio := float64(ua.Progress[id]) / float64(a.Requirement.Value)
	return min(ratio, 1)
}

// Engine evaluates the catalog against the record set and persists the
// result. Persistence failures never block the caller.
type Engine struct {
	kv      KV
	catalog Catalog
	loc     *time.Location
	logger  *slog.Logger

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for swallowed storage errors.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(c Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithLocation sets the zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewEngine returns an Engine persisting into kv.
func NewEngine(kv KV, opts ...Option) *Engine {
	e := &Engine{
		kv:      kv,
		catalog: Builtin(),
		loc:     time.Local,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine evaluates.
func (e *Engine) Catalog() Catalog { return e.catalog }

// Load returns the stored state, or an empty state when the blob is missing
// or unreadable.
func (e *Engine) Load(ctx context.Context) UserAchievements {
	raw, ok, err := e.kv.Get(ctx, StorageKey)
	if err != nil {
		e.logger.Warn("reading achievements failed, using defaults", "key", StorageKey, "error", err)
		return NewUserAchievements()
	}
	if !ok {
		return NewUserAchievements()
	}
	var ua UserAchievements
	if err := json.Unmarshal([]byte(raw), &ua); err != nil {
		e.logger.Warn("decoding achievements failed, using defaults", "key", StorageKey, "error", err)
		return NewUserAchievements()
	}
	if ua.Unlocked == nil {
		ua.Unlocked = []string{}
	}
	if ua.Progress == nil {
		ua.Progress = make(map[string]int)
	}
	return ua
}

// Check runs a full evaluation pass over recs and returns the newly
// unlocked IDs. A failed save is logged and the unlocks are still reported.
func (e *Engine) Check(ctx context.Context, recs []records.BirthRecord, prefs records.UserPreferences) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ua, unlocked := Evaluate(e.Load(ctx), e.catalog, recs, prefs, e.loc)
	if err := e.save(ctx, ua); err != nil {
		e.logger.Error("saving achievements failed", "key", StorageKey, "error", err)
	}
	return unlocked
}

// Reset discards all unlocks, progress and stats.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.save(ctx, NewUserAchievements())
}

func (e *Engine) save(ctx context.Context, ua UserAchievements) error {
	b, err := json.Marshal(ua)
	if err != nil {
		return fmt.Errorf("encoding achievements: %w", err)
	}
	if err := e.kv.Set(ctx, StorageKey, string(b)); err != nil {
		return fmt.Errorf("saving achievements: %w", err)
	}
	return nil
}
