package reconcile

import (
	"context"
	"fmt"
	"time"

	"inventory-ledger/core/ledger"

	"go.uber.org/zap"
)

// Engine reconciles change events against the ledger.
// It holds no per-item state; every decision is derived from store queries, so
// several engines (or processes) may share one store.
type Engine struct {
	store  ledger.Store
	zones  ZoneResolver
	names  LocationNamer
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithZones sets the shop time zone source. Without it every shop uses UTC.
func WithZones(z ZoneResolver) Option {
	return func(e *Engine) { e.zones = z }
}

// WithLocationNames sets the location name source. Without it names fall back to raw ids.
func WithLocationNames(n LocationNamer) Option {
	return func(e *Engine) { e.names = n }
}

// WithClock overrides the receipt clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over store.
func NewEngine(store ledger.Store, cfg Config, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:  store,
		cfg:    cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile runs one raw change through normalization, classification, decision
// and application. It returns ErrMalformedInput or ErrStoreUnavailable (wrapped)
// when the event could not be recorded.
func (e *Engine) Reconcile(ctx context.Context, raw RawChange) (*Result, error) {
	plan, err := e.Prepare(ctx, raw)
	if err != nil {
		return nil, err
	}
	return e.Apply(ctx, plan)
}

// Prepare normalizes, classifies and decides without writing anything.
// It is what a dry run reports.
func (e *Engine) Prepare(ctx context.Context, raw RawChange) (*Plan, error) {
	ev, err := e.Normalize(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := Classify(ev); err != nil {
		return nil, err
	}
	return e.Decide(ctx, ev)
}

// withStoreTimeout bounds one store call.
func (e *Engine) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.StoreTimeout)
}

// storeErr wraps a persistence failure so callers can match ErrStoreUnavailable.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func (e *Engine) eventLogger(ev *ChangeEvent) *zap.Logger {
	return e.logger.With(
		zap.String("shop", ev.Shop),
		zap.String("item_id", ev.ItemID),
		zap.String("location_id", ev.LocationID),
		zap.String("idempotency_key", ev.IdempotencyKey),
		zap.String("activity", string(ev.Activity)),
	)
}
