package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"inventory-ledger/core/ledger"
	"inventory-ledger/core/ledger/mocks"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fmtInt(p *int) string {
	if p == nil {
		return "nil"
	}
	return strconv.Itoa(*p)
}

func fmtStr(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}

// TestEngine_Scenarios replays the reference sequence for s1/I1/L1 and compares the
// decision trace and the final ledger with the golden file.
func TestEngine_Scenarios(t *testing.T) {
	engine, db := setupEngine(t, "engine_scenarios")
	ctx := context.Background()

	transfer := RawChange{
		Shop:           "s1",
		OccurredAt:     t0.Add(30 * time.Second),
		ItemID:         "I1",
		LocationID:     "L1",
		Activity:       ledger.ActivityTransferOut,
		QuantityAfter:  intPtr(45),
		SourceType:     ledger.SourcePOS,
		SourceID:       "transfer-9",
		IdempotencyKey: "pos:transfer-9",
	}
	refund := RawChange{
		Shop:           "s1",
		OccurredAt:     t0.Add(21 * time.Minute),
		ItemID:         "I1",
		LocationID:     "L1",
		QuantityAfter:  intPtr(48),
		ImpliedDelta:   intPtr(3),
		SourceType:     ledger.SourceRefund,
		SourceID:       "O1",
		IdempotencyKey: "refund:R1:RL1",
	}

	steps := []struct {
		name    string
		change  RawChange
		outcome Outcome
	}{
		{"1 webhook available=50", webhookChange(t0, 50), OutcomeInserted},
		{"2 webhook available=45", webhookChange(t0.Add(time.Second), 45), OutcomeInserted},
		{"3 pos transfer_out quantity_after=45", transfer, OutcomeUpgraded},
		{"3r pos transfer_out redelivered", transfer, OutcomeReplay},
		{"4 webhook available=50 redelivered", webhookChange(t0, 50), OutcomeReplay},
		{"5 webhook available=45 echo", webhookChange(t0.Add(10*time.Minute), 45), OutcomeNoop},
		{"6a webhook available=48", webhookChange(t0.Add(20*time.Minute), 48), OutcomeInserted},
		{"6b refund quantity=3", refund, OutcomeUpgraded},
	}

	var trace bytes.Buffer
	ids := map[string]string{}
	for _, step := range steps {
		res, err := engine.Reconcile(ctx, step.change)
		require.NoError(t, err, step.name)
		assert.Equal(t, step.outcome, res.Outcome, step.name)
		ids[step.name] = res.EntryID
		fmt.Fprintf(&trace, "%s: %s delta=%s entries=%d\n", step.name, res.Outcome, fmtInt(res.Delta), countEntries(t, db))
	}

	// Upgrades keep the placeholder's identity.
	assert.Equal(t, ids["2 webhook available=45"], ids["3 pos transfer_out quantity_after=45"])
	assert.Equal(t, ids["3 pos transfer_out quantity_after=45"], ids["3r pos transfer_out redelivered"])
	assert.Equal(t, ids["1 webhook available=50"], ids["4 webhook available=50 redelivered"])
	assert.Equal(t, ids["6a webhook available=48"], ids["6b refund quantity=3"])

	var entries []ledger.Entry
	require.NoError(t, db.Order("occurred_at ASC").Find(&entries).Error)
	trace.WriteString("ledger:\n")
	for _, e := range entries {
		fmt.Fprintf(&trace, "%s %s delta=%s qty=%s source=%s source_id=%s location=%s\n",
			e.OccurredAt.UTC().Format(time.RFC3339),
			e.Activity,
			fmtInt(e.Delta),
			fmtInt(e.QuantityAfter),
			e.SourceType,
			fmtStr(e.SourceID),
			e.LocationName,
		)
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "scenarios", trace.Bytes())
}

func TestEngine_Idempotency(t *testing.T) {
	engine, db := setupEngine(t, "engine_idempotency")
	ctx := context.Background()

	changes := []RawChange{
		webhookChange(t0, 10),
		{Shop: "s1", OccurredAt: t0.Add(time.Hour), ItemID: "I2", LocationID: "L1", ImpliedDelta: intPtr(1), SourceType: ledger.SourceRefund, IdempotencyKey: "refund:1:1"},
		{Shop: "s1", OccurredAt: t0.Add(2 * time.Hour), ItemID: "I3", LocationID: "L1", Activity: ledger.ActivityLoss, Delta: intPtr(-1), SourceType: ledger.SourceAdmin},
	}

	for _, change := range changes {
		first, err := engine.Reconcile(ctx, change)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInserted, first.Outcome)

		second, err := engine.Reconcile(ctx, change)
		require.NoError(t, err)
		assert.Equal(t, OutcomeReplay, second.Outcome)
		assert.Equal(t, first.EntryID, second.EntryID)
	}

	assert.Equal(t, int64(len(changes)), countEntries(t, db))
}

func TestEngine_ConcurrentRedelivery(t *testing.T) {
	engine, db := setupEngine(t, "engine_concurrent")
	ctx := context.Background()
	change := webhookChange(t0, 7)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[Outcome]int{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := engine.Reconcile(ctx, change)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			outcomes[res.Outcome]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, outcomes[OutcomeInserted])
	assert.Equal(t, workers-1, outcomes[OutcomeReplay])
	assert.Equal(t, int64(1), countEntries(t, db))
}

func TestEngine_ConvergesInEitherOrder(t *testing.T) {
	sale := RawChange{
		Shop:          "s1",
		OccurredAt:    t0,
		ItemID:        "I1",
		LocationID:    "L1",
		Activity:      ledger.ActivitySale,
		Delta:         intPtr(-1),
		QuantityAfter: intPtr(9),
		SourceType:    ledger.SourcePOS,
		SourceID:      "order-1",
	}

	t.Run("placeholder first", func(t *testing.T) {
		engine, db := setupEngine(t, "engine_converge_placeholder_first")
		ctx := context.Background()

		_, err := engine.Reconcile(ctx, webhookChange(t0.Add(-time.Hour), 10))
		require.NoError(t, err)
		_, err = engine.Reconcile(ctx, webhookChange(t0.Add(20*time.Second), 9))
		require.NoError(t, err)

		res, err := engine.Reconcile(ctx, sale)
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpgraded, res.Outcome)
		assert.Equal(t, int64(2), countEntries(t, db))

		entry := loadEntry(t, db, res.EntryID)
		assert.Equal(t, ledger.ActivitySale, entry.Activity)
		assert.Equal(t, -1, *entry.Delta)
		assert.Equal(t, "order-1", *entry.SourceID)
	})

	t.Run("attributed first", func(t *testing.T) {
		engine, db := setupEngine(t, "engine_converge_attributed_first")
		ctx := context.Background()

		_, err := engine.Reconcile(ctx, webhookChange(t0.Add(-time.Hour), 10))
		require.NoError(t, err)

		res, err := engine.Reconcile(ctx, sale)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInserted, res.Outcome)

		late, err := engine.Reconcile(ctx, webhookChange(t0.Add(20*time.Second), 9))
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoop, late.Outcome)
		assert.Equal(t, int64(2), countEntries(t, db))
	})
}

func TestEngine_NoReverseDowngrade(t *testing.T) {
	engine, db := setupEngine(t, "engine_no_downgrade")
	ctx := context.Background()

	stocktake, err := engine.Reconcile(ctx, RawChange{
		Shop: "s1", OccurredAt: t0, ItemID: "I1", LocationID: "L1",
		Activity: ledger.ActivityStocktake, QuantityAfter: intPtr(30), SourceType: ledger.SourceAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeInserted, stocktake.Outcome)

	res, err := engine.Reconcile(ctx, webhookChange(t0.Add(time.Minute), 28))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, res.Outcome)
	assert.Equal(t, -2, *res.Delta)

	entry := loadEntry(t, db, stocktake.EntryID)
	assert.Equal(t, ledger.ActivityStocktake, entry.Activity)
	assert.Equal(t, 30, *entry.QuantityAfter)
}

func TestEngine_DuplicateSuppression(t *testing.T) {
	engine, db := setupEngine(t, "engine_duplicate")
	ctx := context.Background()

	sale, err := engine.Reconcile(ctx, RawChange{
		Shop: "s1", OccurredAt: t0, ItemID: "I1", LocationID: "L1",
		Activity: ledger.ActivitySale, QuantityAfter: intPtr(44), SourceType: ledger.SourcePOS, SourceID: "order-1",
	})
	require.NoError(t, err)
	_, err = engine.Reconcile(ctx, webhookChange(t0.Add(30*time.Second), 40))
	require.NoError(t, err)

	// The webhook for the sale is delivered late, after the next change.
	res, err := engine.Reconcile(ctx, webhookChange(t0.Add(time.Second), 44))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, res.Outcome)
	assert.Equal(t, sale.EntryID, res.EntryID)
	assert.Equal(t, int64(2), countEntries(t, db))

	// Outside the window the same quantity is a new change.
	res, err = engine.Reconcile(ctx, webhookChange(t0.Add(5*time.Minute), 44))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, res.Outcome)
}

func TestEngine_UpgradeWindow(t *testing.T) {
	engine, db := setupEngine(t, "engine_upgrade_window")
	ctx := context.Background()

	_, err := engine.Reconcile(ctx, webhookChange(t0.Add(-40*time.Minute), 10))
	require.NoError(t, err)
	_, err = engine.Reconcile(ctx, webhookChange(t0.Add(10*time.Minute), 12))
	require.NoError(t, err)

	// Placeholders 40 minutes before and 10 minutes after are both out of reach.
	res, err := engine.Reconcile(ctx, RawChange{
		Shop: "s1", OccurredAt: t0, ItemID: "I1", LocationID: "L1",
		Activity: ledger.ActivityPurchase, Delta: intPtr(5), SourceType: ledger.SourceAdmin, SourceID: "po-1",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, res.Outcome)
	assert.Equal(t, int64(3), countEntries(t, db))

	// Within the lookahead the newest placeholder is picked.
	res, err = engine.Reconcile(ctx, RawChange{
		Shop: "s1", OccurredAt: t0.Add(6 * time.Minute), ItemID: "I1", LocationID: "L1",
		Activity: ledger.ActivityTransferIn, SourceType: ledger.SourcePOS, SourceID: "transfer-2",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpgraded, res.Outcome)
	assert.Equal(t, 2, *res.Delta, "chained delta of the placeholder is kept")
	assert.Equal(t, ledger.ActivityTransferIn, loadEntry(t, db, res.EntryID).Activity)
}

func TestEngine_DeltaOnlyEventReconstructsQuantity(t *testing.T) {
	engine, db := setupEngine(t, "engine_derived_quantity")
	ctx := context.Background()

	_, err := engine.Reconcile(ctx, webhookChange(t0.Add(-2*time.Hour), 50))
	require.NoError(t, err)

	res, err := engine.Reconcile(ctx, RawChange{
		Shop: "s1", OccurredAt: t0, ItemID: "I1", LocationID: "L1",
		Activity: ledger.ActivityLoss, Delta: intPtr(-2), SourceType: ledger.SourceAdmin, Note: "broken",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeInserted, res.Outcome)

	entry := loadEntry(t, db, res.EntryID)
	assert.Equal(t, -2, *entry.Delta)
	assert.Equal(t, 48, *entry.QuantityAfter)
	assert.Equal(t, "broken", *entry.Note)
	assert.Equal(t, "admin:I1:L1:28501200:d-2", entry.IdempotencyKey)
}

func TestEngine_RejectsMalformedInput(t *testing.T) {
	engine, db := setupEngine(t, "engine_malformed")
	ctx := context.Background()

	_, err := engine.Reconcile(ctx, RawChange{Shop: "s1", ItemID: "I1", LocationID: "L1", Activity: ledger.ActivityObserved, SourceType: ledger.SourcePOS})
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = engine.Reconcile(ctx, RawChange{Shop: "s1", LocationID: "L1", Activity: ledger.ActivitySale, SourceType: ledger.SourcePOS})
	assert.ErrorIs(t, err, ErrMalformedInput)

	assert.Equal(t, int64(0), countEntries(t, db))
}

func TestEngine_LocationNames(t *testing.T) {
	ctx := context.Background()
	change := RawChange{
		Shop: "s1", OccurredAt: t0, ItemID: "1", LocationID: "2", LocationName: "Unknown location",
		Activity: ledger.ActivityAdjustment, Delta: intPtr(1), SourceType: ledger.SourceAdmin,
	}

	t.Run("resolved before insert", func(t *testing.T) {
		names := &namerStub{fn: func(ctx context.Context, shop, locationID string) (string, error) {
			assert.Equal(t, "gid://shopify/Location/2", locationID)
			return "Warehouse", nil
		}}
		engine, db := setupEngine(t, "engine_names_ok", WithLocationNames(names))

		res, err := engine.Reconcile(ctx, change)
		require.NoError(t, err)
		assert.Equal(t, "Warehouse", loadEntry(t, db, res.EntryID).LocationName)
		assert.Equal(t, int32(1), names.calls.Load())
	})

	t.Run("failure falls back to raw id", func(t *testing.T) {
		names := &namerStub{fn: func(ctx context.Context, shop, locationID string) (string, error) {
			return "", errors.New("platform down")
		}}
		engine, db := setupEngine(t, "engine_names_fail", WithLocationNames(names))

		res, err := engine.Reconcile(ctx, change)
		require.NoError(t, err)
		assert.Equal(t, "2", loadEntry(t, db, res.EntryID).LocationName)
	})

	t.Run("timeout falls back to raw id", func(t *testing.T) {
		names := &namerStub{fn: func(ctx context.Context, shop, locationID string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}}
		db := setupTestDB(t, "engine_names_timeout")
		cfg := DefaultConfig()
		cfg.EnrichmentTimeout = 20 * time.Millisecond
		engine := NewEngine(ledger.NewGormStore(db), cfg, zap.NewNop(), WithLocationNames(names))

		res, err := engine.Reconcile(ctx, change)
		require.NoError(t, err)
		assert.Equal(t, "2", loadEntry(t, db, res.EntryID).LocationName)
	})

	t.Run("known names skip the lookup", func(t *testing.T) {
		names := &namerStub{fn: func(ctx context.Context, shop, locationID string) (string, error) {
			return "Warehouse", nil
		}}
		engine, db := setupEngine(t, "engine_names_known", WithLocationNames(names))

		named := change
		named.LocationName = "Front store"
		res, err := engine.Reconcile(ctx, named)
		require.NoError(t, err)
		assert.Equal(t, "Front store", loadEntry(t, db, res.EntryID).LocationName)
		assert.Equal(t, int32(0), names.calls.Load())
	})

	t.Run("no lookup when nothing is written", func(t *testing.T) {
		names := &namerStub{fn: func(ctx context.Context, shop, locationID string) (string, error) {
			return "Warehouse", nil
		}}
		engine, _ := setupEngine(t, "engine_names_lazy", WithLocationNames(names))

		_, err := engine.Reconcile(ctx, change)
		require.NoError(t, err)
		_, err = engine.Reconcile(ctx, change)
		require.NoError(t, err)
		assert.Equal(t, int32(1), names.calls.Load())
	})
}

func TestEngine_UpgradeRaceFallsThroughToInsert(t *testing.T) {
	placeholder := &ledger.Entry{ID: "p1", Activity: ledger.ActivityObserved, QuantityAfter: intPtr(45), Delta: intPtr(-5)}

	store := new(mocks.Store)
	store.On("FindByIdempotencyKey", mock.Anything, "s1", "pos:1").Return(nil, nil)
	store.On("FindMostRecent", mock.Anything, mock.Anything).Return(placeholder, nil)
	store.On("FindDuplicateCandidate", mock.Anything, mock.Anything, 45, ledger.TierAttributed, mock.Anything, mock.Anything).Return(nil, nil)
	store.On("FindUpgradeCandidate", mock.Anything, mock.Anything, ledger.TierPlaceholder, mock.Anything, mock.Anything).Return(placeholder, nil)
	store.On("Upgrade", mock.Anything, "p1", mock.AnythingOfType("ledger.Upgrade")).Return(false, nil)
	store.On("Insert", mock.Anything, mock.AnythingOfType("*ledger.Entry")).Return("e2", nil)

	engine := NewEngine(store, DefaultConfig(), zap.NewNop())
	res, err := engine.Reconcile(context.Background(), RawChange{
		Shop: "s1", OccurredAt: t0, ItemID: "I1", LocationID: "L1",
		Activity: ledger.ActivitySale, QuantityAfter: intPtr(45), SourceType: ledger.SourcePOS, IdempotencyKey: "pos:1",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, res.Outcome)
	assert.Equal(t, "e2", res.EntryID)
	store.AssertExpectations(t)
}

func TestEngine_UpgradeSendsOnlyKnownFields(t *testing.T) {
	placeholder := &ledger.Entry{ID: "p1", Activity: ledger.ActivityObserved, QuantityAfter: intPtr(45), Delta: intPtr(-5)}

	store := new(mocks.Store)
	store.On("FindByIdempotencyKey", mock.Anything, "s1", "refund:9:1").Return(nil, nil)
	store.On("FindMostRecent", mock.Anything, mock.Anything).Return(placeholder, nil)
	store.On("FindUpgradeCandidate", mock.Anything, mock.Anything, ledger.TierPlaceholder, mock.Anything, mock.Anything).Return(placeholder, nil)
	store.On("Upgrade", mock.Anything, "p1", mock.MatchedBy(func(u ledger.Upgrade) bool {
		return u.Activity == ledger.ActivityRefund &&
			u.UpgradeKey == "refund:9:1" &&
			u.Delta != nil && *u.Delta == 3 &&
			u.QuantityAfter == nil &&
			u.AdjustmentGroupID == nil &&
			u.SourceID != nil && *u.SourceID == "order-9"
	})).Return(true, nil)

	engine := NewEngine(store, DefaultConfig(), zap.NewNop())
	res, err := engine.Reconcile(context.Background(), RawChange{
		Shop: "s1", OccurredAt: t0, ItemID: "I1", LocationID: "L1",
		ImpliedDelta: intPtr(3), SourceType: ledger.SourceRefund, SourceID: "order-9", IdempotencyKey: "refund:9:1",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpgraded, res.Outcome)
	assert.Equal(t, 3, *res.Delta)
	store.AssertExpectations(t)
}

func TestEngine_StoreUnavailable(t *testing.T) {
	store := new(mocks.Store)
	store.On("FindByIdempotencyKey", mock.Anything, "s1", mock.Anything).Return(nil, errors.New("connection refused"))

	engine := NewEngine(store, DefaultConfig(), zap.NewNop())
	_, err := engine.Reconcile(context.Background(), webhookChange(t0, 1))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorContains(t, err, "connection refused")
}

func TestEngine_InsertConflictIsReplay(t *testing.T) {
	store := new(mocks.Store)
	existing := &ledger.Entry{ID: "winner", Activity: ledger.ActivityObserved}
	store.On("FindByIdempotencyKey", mock.Anything, "s1", mock.Anything).Return(nil, nil).Once()
	store.On("FindMostRecent", mock.Anything, mock.Anything).Return(nil, nil)
	store.On("FindDuplicateCandidate", mock.Anything, mock.Anything, 1, ledger.TierAttributed, mock.Anything, mock.Anything).Return(nil, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return("", ledger.ErrAlreadyExists)
	store.On("FindByIdempotencyKey", mock.Anything, "s1", mock.Anything).Return(existing, nil).Once()

	engine := NewEngine(store, DefaultConfig(), zap.NewNop())
	res, err := engine.Reconcile(context.Background(), webhookChange(t0, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplay, res.Outcome)
	assert.Equal(t, "winner", res.EntryID)
}

func TestEngine_PrepareDoesNotWrite(t *testing.T) {
	engine, db := setupEngine(t, "engine_prepare")

	plan, err := engine.Prepare(context.Background(), webhookChange(t0, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, plan.Outcome)
	assert.NotEmpty(t, plan.Reason)
	assert.Equal(t, int64(0), countEntries(t, db))
}

func TestEngine_UpgradeAdoptsImpliedDeltaOverChained(t *testing.T) {
	engine, db := setupEngine(t, "engine_upgrade_implied")
	ctx := context.Background()

	// First sighting of the item: the placeholder has no delta.
	placeholder, err := engine.Reconcile(ctx, webhookChange(t0, 47))
	require.NoError(t, err)
	require.Nil(t, placeholder.Delta)

	// The refund reports the same resulting quantity, so chaining yields 0.
	res, err := engine.Reconcile(ctx, RawChange{
		Shop: "s1", OccurredAt: t0.Add(30 * time.Second), ItemID: "I1", LocationID: "L1",
		QuantityAfter: intPtr(47), ImpliedDelta: intPtr(2),
		SourceType: ledger.SourceRefund, SourceID: "O1", IdempotencyKey: "refund:R2:RL1",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpgraded, res.Outcome)
	assert.Equal(t, placeholder.EntryID, res.EntryID)
	assert.Equal(t, 2, *res.Delta)

	entry := loadEntry(t, db, res.EntryID)
	assert.Equal(t, ledger.ActivityRefund, entry.Activity)
	assert.Equal(t, 2, *entry.Delta)
	assert.Equal(t, 47, *entry.QuantityAfter)
}

func TestEngine_FallbackKeyUsesSourceID(t *testing.T) {
	engine, db := setupEngine(t, "engine_fallback_source_id")
	ctx := context.Background()

	transfer := func(id string, at time.Time) RawChange {
		return RawChange{
			Shop: "s1", OccurredAt: at, ItemID: "I1", LocationID: "L1",
			Activity: ledger.ActivityTransferOut, Delta: intPtr(-5), SourceType: ledger.SourcePOS, SourceID: id,
		}
	}

	first, err := engine.Reconcile(ctx, transfer("transfer-9", t0.Add(5*time.Second)))
	require.NoError(t, err)
	require.Equal(t, OutcomeInserted, first.Outcome)
	assert.Equal(t, "pos:transfer-9:I1:L1", first.IdempotencyKey)

	// A different transfer of the same size within the same minute is its own change.
	second, err := engine.Reconcile(ctx, transfer("transfer-10", t0.Add(40*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, second.Outcome)
	assert.NotEqual(t, first.EntryID, second.EntryID)
	assert.Equal(t, int64(2), countEntries(t, db))

	again, err := engine.Reconcile(ctx, transfer("transfer-9", t0.Add(5*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplay, again.Outcome)
	assert.Equal(t, first.EntryID, again.EntryID)
}

func TestEngine_ConcurrentUpgradeIsReplay(t *testing.T) {
	engine, db := setupEngine(t, "engine_concurrent_upgrade")
	ctx := context.Background()

	_, err := engine.Reconcile(ctx, webhookChange(t0.Add(-time.Hour), 50))
	require.NoError(t, err)
	placeholder, err := engine.Reconcile(ctx, webhookChange(t0, 45))
	require.NoError(t, err)

	transfer := RawChange{
		Shop: "s1", OccurredAt: t0.Add(30 * time.Second), ItemID: "I1", LocationID: "L1",
		Activity: ledger.ActivityTransferOut, QuantityAfter: intPtr(45), SourceType: ledger.SourcePOS,
		SourceID: "transfer-9", IdempotencyKey: "pos:transfer-9",
	}

	// Two workers plan the same delivery before either writes.
	first, err := engine.Prepare(ctx, transfer)
	require.NoError(t, err)
	second, err := engine.Prepare(ctx, transfer)
	require.NoError(t, err)
	require.Equal(t, OutcomeUpgraded, first.Outcome)
	require.Equal(t, OutcomeUpgraded, second.Outcome)

	won, err := engine.Apply(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpgraded, won.Outcome)
	assert.Equal(t, placeholder.EntryID, won.EntryID)

	lost, err := engine.Apply(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplay, lost.Outcome)
	assert.Equal(t, placeholder.EntryID, lost.EntryID)
	assert.Equal(t, int64(2), countEntries(t, db))
}
