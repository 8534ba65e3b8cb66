package streak

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// KV is the whole-blob key-value store the engine persists into.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Engine persists streak state and applies transitions to it. Each mutating
// call is a load-modify-save cycle serialized by a mutex, so concurrent
// callers sharing an Engine never lose updates.
type Engine struct {
	kv          KV
	logger      *slog.Logger
	defaultGoal int

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for fail-open reads.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDefaultGoal sets the weekly goal of a fresh installation.
func WithDefaultGoal(goal int) Option {
	return func(e *Engine) { e.defaultGoal = ClampGoal(goal) }
}

// NewEngine returns an Engine persisting into kv.
func NewEngine(kv KV, opts ...Option) *Engine {
	e := &Engine{
		kv:          kv,
		logger:      slog.Default(),
		defaultGoal: DefaultWeeklyGoal,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load returns the stored state. A missing, unreadable or corrupt blob
// yields the default state so that logging is never blocked.
func (e *Engine) Load(ctx context.Context) Data {
	d, _ := e.load(ctx)
	return d
}

// load is Load that also reports whether the read itself failed. The blob
// may still be intact in that case and must not be overwritten by a
// caller that only wanted to look at it.
func (e *Engine) load(ctx context.Context) (d Data, readFailed bool) {
	raw, ok, err := e.kv.Get(ctx, StorageKey)
	if err != nil {
		e.logger.Warn("reading streak data failed, using defaults", "key", StorageKey, "error", err)
		return Default(e.defaultGoal), true
	}
	if !ok {
		return Default(e.defaultGoal), false
	}

	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		e.logger.Warn("decoding streak data failed, using defaults", "key", StorageKey, "error", err)
		return Default(e.defaultGoal), false
	}
	d.normalize()
	return d, false
}

func (e *Engine) save(ctx context.Context, d Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding streak data: %w", err)
	}
	if err := e.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("saving streak data: %w", err)
	}
	return nil
}

// UpdateOnDelivery records that a delivery was logged at now. A second log on
// the same calendar day is a no-op and is not persisted.
func (e *Engine) UpdateOnDelivery(ctx context.Context, now time.Time) (DeliveryResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := ApplyDelivery(e.Load(ctx), now)
	if res.Duplicate {
		return res, nil
	}
	if err := e.save(ctx, res.Data); err != nil {
		return res, err
	}
	if res.NewMilestone > 0 {
		e.logger.Debug("streak milestone reached", "weeks", res.NewMilestone)
	}
	return res, nil
}

// Reconcile runs the app-open check: it forfeits an expired recovery
// challenge and closes weeks that elapsed without a log. State is written
// only when it changed, and never after a failed read.
func (e *Engine) Reconcile(ctx context.Context, now time.Time) (Data, ReconcileReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	loaded, readFailed := e.load(ctx)
	d, report := Reconcile(loaded, now)
	if readFailed || !report.Changed() {
		return d, report, nil
	}
	if err := e.save(ctx, d); err != nil {
		return d, report, err
	}
	return d, report, nil
}

// SetWeeklyGoal stores a new weekly goal, clamped to [1,7].
func (e *Engine) SetWeeklyGoal(ctx context.Context, goal int) (Data, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := e.Load(ctx)
	d.WeeklyGoal = ClampGoal(goal)
	return d, e.save(ctx, d)
}

// Reset replaces the stored state with the default state.
func (e *Engine) Reset(ctx context.Context) (Data, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := Default(e.defaultGoal)
	return d, e.save(ctx, d)
}
