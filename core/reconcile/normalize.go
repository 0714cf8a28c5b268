package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// unspecifiedNames are labels channels send when they do not know the location name.
var unspecifiedNames = map[string]struct{}{
	"":                 {},
	"unknown":          {},
	"unknown location": {},
	"unspecified":      {},
}

// IsUnspecifiedName reports whether name carries no information about the location.
func IsUnspecifiedName(name string) bool {
	_, ok := unspecifiedNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Normalize converts a raw change into a ChangeEvent without classifying it.
// It canonicalizes identifiers, defaults optional fields, computes the shop-local
// date and derives an idempotency key when the channel gave none.
func (e *Engine) Normalize(ctx context.Context, raw RawChange) (*ChangeEvent, error) {
	shop := strings.TrimSpace(raw.Shop)
	if shop == "" {
		return nil, fmt.Errorf("%w: missing shop", ErrMalformedInput)
	}

	itemID, err := Canonical(KindInventoryItem, raw.ItemID)
	if err != nil {
		return nil, fmt.Errorf("item: %w", err)
	}
	locationID, err := Canonical(KindLocation, raw.LocationID)
	if err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}

	occurredAt := raw.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = e.now()
	}
	// Millisecond precision survives every supported database column type.
	occurredAt = occurredAt.UTC().Truncate(time.Millisecond)

	ev := &ChangeEvent{
		Shop:              shop,
		OccurredAt:        occurredAt,
		Date:              occurredAt.In(e.shopZone(ctx, shop)).Format("2006-01-02"),
		ItemID:            itemID,
		SKU:               strings.TrimSpace(raw.SKU),
		LocationID:        locationID,
		RawLocationID:     strings.TrimSpace(raw.LocationID),
		Activity:          raw.Activity,
		Delta:             raw.Delta,
		QuantityAfter:     raw.QuantityAfter,
		ImpliedDelta:      raw.ImpliedDelta,
		SourceType:        raw.SourceType,
		SourceID:          optional(raw.SourceID),
		AdjustmentGroupID: optional(raw.AdjustmentGroupID),
		IdempotencyKey:    strings.TrimSpace(raw.IdempotencyKey),
		Note:              optional(raw.Note),
	}

	if raw.VariantID != "" {
		variantID, err := Canonical(KindProductVariant, raw.VariantID)
		if err != nil {
			return nil, fmt.Errorf("variant: %w", err)
		}
		ev.VariantID = &variantID
	}

	if IsUnspecifiedName(raw.LocationName) {
		ev.LocationName = ev.RawLocationID
	} else {
		ev.LocationName = strings.TrimSpace(raw.LocationName)
		ev.NameKnown = true
	}

	if ev.IdempotencyKey == "" {
		ev.IdempotencyKey = CompositeKey(ev)
	}

	return ev, nil
}

// CompositeKey builds the fallback idempotency key. Events naming their
// source record use <source>:<source id>:<item>:<location>; the rest get the
// time-rounded <source>:<item>:<location>:<unix minute>:<qty|delta>.
func CompositeKey(ev *ChangeEvent) string {
	if ev.SourceID != nil && *ev.SourceID != "" {
		return fmt.Sprintf("%s:%s:%s:%s", ev.SourceType, *ev.SourceID, NumericID(ev.ItemID), NumericID(ev.LocationID))
	}
	amount := "-"
	switch {
	case ev.QuantityAfter != nil:
		amount = "q" + strconv.Itoa(*ev.QuantityAfter)
	case ev.Delta != nil:
		amount = "d" + strconv.Itoa(*ev.Delta)
	}
	return fmt.Sprintf("%s:%s:%s:%d:%s",
		ev.SourceType,
		NumericID(ev.ItemID),
		NumericID(ev.LocationID),
		ev.OccurredAt.Unix()/60,
		amount,
	)
}

// shopZone returns the shop time zone, UTC when unknown or on lookup failure.
func (e *Engine) shopZone(ctx context.Context, shop string) *time.Location {
	if e.zones == nil {
		return time.UTC
	}
	loc, err := e.zones.Location(ctx, shop)
	if err != nil || loc == nil {
		if err != nil {
			e.logger.Warn("Shop time zone unavailable, using UTC",
				zap.String("shop", shop),
				zap.Error(err),
			)
		}
		return time.UTC
	}
	return loc
}

// locationName resolves the display name right before a write. Failures degrade to
// the raw location id.
func (e *Engine) locationName(ctx context.Context, ev *ChangeEvent) string {
	if ev.NameKnown || e.names == nil {
		return ev.LocationName
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.cfg.EnrichmentTimeout)
	defer cancel()

	name, err := e.names.LocationName(lookupCtx, ev.Shop, ev.LocationID)
	if err != nil || IsUnspecifiedName(name) {
		if err == nil {
			err = fmt.Errorf("no name for location %s", ev.LocationID)
		}
		e.logger.Warn("Location name lookup failed, using raw id",
			zap.String("shop", ev.Shop),
			zap.String("location_id", ev.LocationID),
			zap.Error(fmt.Errorf("%w: %w", ErrEnrichmentUnavailable, err)),
		)
		return ev.LocationName
	}

	ev.LocationName = name
	ev.NameKnown = true
	return name
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
