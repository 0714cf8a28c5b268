package actions

import (
	"context"
	"reflect"
	"strings"

	"inventory-ledger/core/ledger"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Reconciler records one change.
type Reconciler interface {
	Reconcile(ctx context.Context, raw reconcile.RawChange) (*reconcile.Result, error)
}

// Service submits first-party action batches to the engine.
type Service struct {
	engine   Reconciler
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new actions service.
func NewService(engine Reconciler, logger *zap.Logger) *Service {
	v := validator.New()
	// Report JSON names so clients can map errors back to their payload.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, validate: v, logger: logger}
}

// ValidateBatch checks the batch envelope. Events are validated one by one in Submit
// so a bad event does not reject its siblings.
func (s *Service) ValidateBatch(b *Batch) error {
	return s.validate.Struct(b)
}

// Submit reconciles each event in order. Events are independent: a failure is
// reported for that event only.
func (s *Service) Submit(ctx context.Context, shop string, events []Event) *BatchResult {
	out := &BatchResult{Success: true, Results: make([]EventResult, 0, len(events))}

	for i, ev := range events {
		res := EventResult{Index: i}

		if err := s.validate.Struct(ev); err != nil {
			res.Error = reconcile.ErrMalformedInput.Error()
			res.Fields = utils.ValidationErrors(err)
			out.Success = false
			out.Results = append(out.Results, res)
			continue
		}

		result, err := s.engine.Reconcile(ctx, toRawChange(shop, ev))
		if err != nil {
			s.logger.Warn("Action rejected",
				zap.String("shop", shop),
				zap.Int("index", i),
				zap.String("activity", ev.Activity),
				zap.Error(err),
			)
			res.Error = err.Error()
			out.Success = false
		} else {
			res.Result = result
		}
		out.Results = append(out.Results, res)
	}
	return out
}

func toRawChange(shop string, ev Event) reconcile.RawChange {
	source := ledger.SourceAdmin
	if ev.Source == string(ledger.SourcePOS) {
		source = ledger.SourcePOS
	}

	raw := reconcile.RawChange{
		Shop:              shop,
		ItemID:            string(ev.InventoryItemID),
		VariantID:         string(ev.VariantID),
		SKU:               ev.SKU,
		LocationID:        string(ev.LocationID),
		LocationName:      ev.LocationName,
		Activity:          ledger.Activity(ev.Activity),
		Delta:             ev.Delta,
		QuantityAfter:     ev.QuantityAfter,
		SourceType:        source,
		SourceID:          ev.SourceID,
		AdjustmentGroupID: string(ev.AdjustmentGroupID),
		IdempotencyKey:    ev.IdempotencyKey,
		Note:              ev.Note,
	}
	if ev.OccurredAt != nil {
		raw.OccurredAt = *ev.OccurredAt
	}
	return raw
}
