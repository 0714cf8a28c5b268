package reconcile

import (
	"fmt"

	"inventory-ledger/core/ledger"
)

// Classify assigns the activity and tier an event is recorded with. The label
// follows from the channel, never from a previous entry, so an event is never
// downgraded.
func Classify(ev *ChangeEvent) error {
	switch ev.SourceType {
	case ledger.SourceInventoryLevel:
		// The generic webhook carries no business context, whatever label it sends.
		ev.Activity = ledger.ActivityObserved

	case ledger.SourceRefund:
		ev.Activity = ledger.ActivityRefund

	case ledger.SourcePOS, ledger.SourceAdmin:
		if !ev.Activity.Valid() {
			return fmt.Errorf("%w: unknown activity %q", ErrMalformedInput, ev.Activity)
		}
		if ev.Activity.Tier() != ledger.TierAttributed {
			return fmt.Errorf("%w: activity %q cannot be submitted by %s", ErrMalformedInput, ev.Activity, ev.SourceType)
		}

	default:
		return fmt.Errorf("%w: unknown source type %q", ErrMalformedInput, ev.SourceType)
	}

	ev.Tier = ev.Activity.Tier()
	return nil
}
