package reconcile

import (
	"context"
	"errors"
	"fmt"

	"inventory-ledger/core/ledger"

	"go.uber.org/zap"
)

// Decide computes the transition for a classified event. The checks run in a fixed
// order and the first match wins: exact replay, no-op, duplicate, upgrade, insert.
// Nothing is written; use Apply for that.
func (e *Engine) Decide(ctx context.Context, ev *ChangeEvent) (*Plan, error) {
	log := e.eventLogger(ev)
	match := ev.Match()

	// Exact replay
	existing, err := e.findByKey(ctx, ev.Shop, ev.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Debug("Event already recorded", zap.String("entry_id", existing.ID))
		return &Plan{Event: ev, Outcome: OutcomeReplay, Existing: existing, Reason: "idempotency key already recorded"}, nil
	}

	// Delta against the most recent entry
	storeCtx, cancel := e.withStoreTimeout(ctx)
	prior, err := e.store.FindMostRecent(storeCtx, match)
	cancel()
	if err != nil {
		return nil, storeErr("find most recent", err)
	}
	res := ResolveDelta(ev, prior)
	log.Debug("Delta resolved",
		zap.Intp("delta", res.Delta),
		zap.Bool("direct", res.Direct),
		zap.Intp("quantity_after", res.QuantityAfter),
		zap.String("prior_id", res.PriorID),
	)

	// No-op suppression
	if ev.Tier == ledger.TierPlaceholder && res.Delta != nil && *res.Delta == 0 {
		log.Debug("Placeholder changes nothing, dropping")
		return &Plan{Event: ev, Outcome: OutcomeNoop, Resolution: &res, Reason: "resolved delta is zero"}, nil
	}

	// Cross-source duplicate suppression. Only a quantity the channel actually
	// reported is compared; a reconstructed one proves nothing.
	if ev.QuantityAfter != nil {
		from := ev.OccurredAt.Add(-e.cfg.DuplicateWindow)
		to := ev.OccurredAt.Add(e.cfg.DuplicateWindow)

		storeCtx, cancel := e.withStoreTimeout(ctx)
		dup, err := e.store.FindDuplicateCandidate(storeCtx, match, *ev.QuantityAfter, ledger.TierAttributed, from, to)
		cancel()
		if err != nil {
			return nil, storeErr("find duplicate candidate", err)
		}
		if dup != nil {
			log.Debug("Change already attributed by another channel", zap.String("entry_id", dup.ID))
			return &Plan{
				Event:      ev,
				Outcome:    OutcomeDuplicate,
				Existing:   dup,
				Resolution: &res,
				Reason:     fmt.Sprintf("attributed entry with quantity %d within %s", *ev.QuantityAfter, e.cfg.DuplicateWindow),
			}, nil
		}
	}

	// Upgrade of a placeholder, attributed events only
	if ev.Tier == ledger.TierAttributed {
		from := ev.OccurredAt.Add(-e.cfg.UpgradeLookback)
		to := ev.OccurredAt.Add(e.cfg.UpgradeLookahead)

		storeCtx, cancel := e.withStoreTimeout(ctx)
		candidate, err := e.store.FindUpgradeCandidate(storeCtx, match, ledger.TierPlaceholder, from, to)
		cancel()
		if err != nil {
			return nil, storeErr("find upgrade candidate", err)
		}
		if candidate != nil {
			log.Debug("Placeholder found for upgrade", zap.String("entry_id", candidate.ID))
			return &Plan{Event: ev, Outcome: OutcomeUpgraded, Existing: candidate, Resolution: &res, Reason: "placeholder within upgrade window"}, nil
		}
	}

	return &Plan{Event: ev, Outcome: OutcomeInserted, Resolution: &res, Reason: "no matching entry"}, nil
}

// Apply executes a plan. An upgrade that lost the race against another worker falls
// through to a plain insert; an insert that hits the unique key reports a replay.
func (e *Engine) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	ev := plan.Event

	switch plan.Outcome {
	case OutcomeReplay, OutcomeDuplicate:
		return e.result(plan.Outcome, plan.Existing.ID, ev, plan.Existing.Delta), nil

	case OutcomeNoop:
		return e.result(OutcomeNoop, "", ev, plan.Resolution.Delta), nil

	case OutcomeUpgraded:
		result, applied, err := e.applyUpgrade(ctx, plan)
		if err != nil || applied {
			return result, err
		}
		// The winner may have been this very event under another worker.
		existing, err := e.findByKey(ctx, ev.Shop, ev.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			e.eventLogger(ev).Debug("Concurrent delivery already upgraded the placeholder", zap.String("entry_id", existing.ID))
			return e.result(OutcomeReplay, existing.ID, ev, existing.Delta), nil
		}
		e.eventLogger(ev).Info("Placeholder upgraded concurrently, inserting instead",
			zap.String("entry_id", plan.Existing.ID),
		)
		return e.applyInsert(ctx, plan)

	case OutcomeInserted:
		return e.applyInsert(ctx, plan)
	}

	return nil, fmt.Errorf("unknown plan outcome %q", plan.Outcome)
}

func (e *Engine) applyUpgrade(ctx context.Context, plan *Plan) (*Result, bool, error) {
	ev := plan.Event
	res := plan.Resolution

	fields := ledger.Upgrade{
		Activity:          ev.Activity,
		SourceType:        ev.SourceType,
		SourceID:          ev.SourceID,
		AdjustmentGroupID: ev.AdjustmentGroupID,
		LocationName:      e.locationName(ctx, ev),
		UpgradeKey:        ev.IdempotencyKey,
		QuantityAfter:     ev.QuantityAfter,
	}
	// A chained delta was computed against the placeholder itself and says nothing
	// about this change; only a delta the event carries replaces the stored one.
	switch {
	case res.Direct:
		fields.Delta = res.Delta
	case ev.ImpliedDelta != nil && plan.Existing.Delta == nil:
		fields.Delta = intPtr(*ev.ImpliedDelta)
	}

	storeCtx, cancel := e.withStoreTimeout(ctx)
	applied, err := e.store.Upgrade(storeCtx, plan.Existing.ID, fields)
	cancel()
	if errors.Is(err, ledger.ErrAlreadyExists) {
		// Another worker upgraded a placeholder with this very event.
		return e.replayAfterConflict(ctx, ev)
	}
	if err != nil {
		return nil, false, storeErr("upgrade entry", err)
	}
	if !applied {
		return nil, false, nil
	}

	delta := plan.Existing.Delta
	if fields.Delta != nil {
		delta = fields.Delta
	}
	e.eventLogger(ev).Debug("Placeholder upgraded", zap.String("entry_id", plan.Existing.ID))
	return e.result(OutcomeUpgraded, plan.Existing.ID, ev, delta), true, nil
}

func (e *Engine) applyInsert(ctx context.Context, plan *Plan) (*Result, error) {
	ev := plan.Event
	res := plan.Resolution

	entry := &ledger.Entry{
		Shop:              ev.Shop,
		OccurredAt:        ev.OccurredAt,
		Date:              ev.Date,
		ItemID:            ev.ItemID,
		VariantID:         ev.VariantID,
		SKU:               ev.SKU,
		LocationID:        ev.LocationID,
		LocationName:      e.locationName(ctx, ev),
		Activity:          ev.Activity,
		Delta:             res.Delta,
		QuantityAfter:     res.QuantityAfter,
		SourceType:        ev.SourceType,
		SourceID:          ev.SourceID,
		AdjustmentGroupID: ev.AdjustmentGroupID,
		IdempotencyKey:    ev.IdempotencyKey,
		Note:              ev.Note,
	}

	storeCtx, cancel := e.withStoreTimeout(ctx)
	id, err := e.store.Insert(storeCtx, entry)
	cancel()
	if errors.Is(err, ledger.ErrAlreadyExists) {
		result, _, err := e.replayAfterConflict(ctx, ev)
		return result, err
	}
	if err != nil {
		return nil, storeErr("insert entry", err)
	}

	e.eventLogger(ev).Debug("Entry inserted", zap.String("entry_id", id))
	return e.result(OutcomeInserted, id, ev, res.Delta), nil
}

// replayAfterConflict reports the entry that won the unique key.
func (e *Engine) replayAfterConflict(ctx context.Context, ev *ChangeEvent) (*Result, bool, error) {
	existing, err := e.findByKey(ctx, ev.Shop, ev.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, storeErr("resolve conflicting entry", fmt.Errorf("key %s conflicted but is not visible", ev.IdempotencyKey))
	}
	e.eventLogger(ev).Debug("Concurrent delivery already recorded the event", zap.String("entry_id", existing.ID))
	return e.result(OutcomeReplay, existing.ID, ev, existing.Delta), true, nil
}

func (e *Engine) findByKey(ctx context.Context, shop, key string) (*ledger.Entry, error) {
	storeCtx, cancel := e.withStoreTimeout(ctx)
	defer cancel()
	existing, err := e.store.FindByIdempotencyKey(storeCtx, shop, key)
	if err != nil {
		return nil, storeErr("find by idempotency key", err)
	}
	return existing, nil
}

func (e *Engine) result(outcome Outcome, entryID string, ev *ChangeEvent, delta *int) *Result {
	return &Result{
		Outcome:        outcome,
		EntryID:        entryID,
		IdempotencyKey: ev.IdempotencyKey,
		Activity:       ev.Activity,
		Delta:          delta,
	}
}
