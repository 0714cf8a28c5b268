package reconcile

import (
	"time"

	"inventory-ledger/core/ledger"
)

// RawChange is the channel-neutral shape every ingestion adapter produces.
// Identifiers may use either platform encoding; the normalizer canonicalizes them.
type RawChange struct {
	// Shop is the shop domain the change belongs to.
	Shop string

	// OccurredAt is the event timestamp. Zero means receipt time.
	OccurredAt time.Time

	ItemID       string
	VariantID    string
	SKU          string
	LocationID   string
	LocationName string

	// Activity is the label reported by the channel, if any. The classifier decides
	// what is actually recorded.
	Activity ledger.Activity

	// Delta is an explicit signed change reported by the channel.
	Delta *int

	// QuantityAfter is the absolute resulting quantity reported by the channel.
	QuantityAfter *int

	// ImpliedDelta is the change implied by the source semantics when no explicit
	// delta exists (a refund restock implies +returned quantity).
	ImpliedDelta *int

	SourceType        ledger.SourceType
	SourceID          string
	AdjustmentGroupID string

	// IdempotencyKey is derived from source identifiers. When empty the normalizer
	// builds a time-rounded composite.
	IdempotencyKey string

	Note string
}

// ChangeEvent is a normalized and classified change.
type ChangeEvent struct {
	Shop       string
	OccurredAt time.Time
	// Date is the shop-local calendar date (YYYY-MM-DD).
	Date string

	ItemID    string
	VariantID *string
	SKU       string

	LocationID string
	// LocationName falls back to RawLocationID until it is resolved.
	LocationName string
	// RawLocationID is the location id as the channel sent it.
	RawLocationID string
	// NameKnown is false when the channel gave no usable location name.
	NameKnown bool

	Activity ledger.Activity
	Tier     ledger.Tier

	Delta         *int
	QuantityAfter *int
	ImpliedDelta  *int

	SourceType        ledger.SourceType
	SourceID          *string
	AdjustmentGroupID *string
	IdempotencyKey    string
	Note              *string
}

// Match returns the store selector for the event's (shop, item, location).
func (e *ChangeEvent) Match() ledger.Match {
	return ledger.Match{
		Shop:        e.Shop,
		ItemIDs:     IDForms(e.ItemID),
		LocationIDs: IDForms(e.LocationID),
	}
}

// Resolution is the output of the delta resolver.
type Resolution struct {
	// Delta is the signed change, nil when unknown.
	Delta *int `json:"delta"`

	// Direct is true when Delta came from the event itself (explicit or implied)
	// rather than from chaining against the prior entry.
	Direct bool `json:"direct"`

	// QuantityAfter is the provided resulting quantity, or one reconstructed from
	// the prior entry when QuantityDerived is set.
	QuantityAfter *int `json:"quantity_after"`

	QuantityDerived bool `json:"quantity_derived"`

	// PriorID is the entry the resolution chained against.
	PriorID string `json:"prior_id,omitempty"`
}

// Outcome is the terminal state of one reconciled event.
type Outcome string

const (
	// OutcomeReplay means the event was already recorded under its key.
	OutcomeReplay Outcome = "replay"
	// OutcomeNoop means a placeholder event changed nothing.
	OutcomeNoop Outcome = "noop"
	// OutcomeDuplicate means another channel already recorded the change with attribution.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeUpgraded means a placeholder entry now carries the event's attribution.
	OutcomeUpgraded Outcome = "upgraded"
	// OutcomeInserted means a new entry was created.
	OutcomeInserted Outcome = "inserted"
)

// Result describes what happened to one event.
type Result struct {
	Outcome        Outcome         `json:"outcome"`
	EntryID        string          `json:"entry_id,omitempty"`
	IdempotencyKey string          `json:"idempotency_key"`
	Activity       ledger.Activity `json:"activity"`
	Delta          *int            `json:"delta"`
}

// Plan is a reconciliation decision that has not been applied yet.
type Plan struct {
	// Event is the normalized event being reconciled.
	Event *ChangeEvent `json:"-"`

	// Outcome is the decided transition.
	Outcome Outcome `json:"outcome"`

	// Existing is the entry the decision refers to (replayed, duplicated or upgrade target).
	Existing *ledger.Entry `json:"-"`

	// Resolution is nil when the decision was taken before the delta was resolved.
	Resolution *Resolution `json:"resolution,omitempty"`

	// Reason is a short human-readable explanation for logs and dry runs.
	Reason string `json:"reason"`
}
