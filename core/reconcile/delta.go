package reconcile

import "inventory-ledger/core/ledger"

// ResolveDelta computes the signed change of ev against the most recent entry for
// the same (shop, item, location). prior may be nil.
//
// Order of precedence:
//  1. an explicit delta on the event;
//  2. the resulting quantity minus the prior entry's resulting quantity;
//  3. the delta implied by the source (refund restock);
//  4. unknown.
func ResolveDelta(ev *ChangeEvent, prior *ledger.Entry) Resolution {
	var res Resolution
	if prior != nil {
		res.PriorID = prior.ID
	}

	switch {
	case ev.Delta != nil:
		res.Delta = intPtr(*ev.Delta)
		res.Direct = true
	case ev.QuantityAfter != nil && prior != nil && prior.QuantityAfter != nil:
		res.Delta = intPtr(*ev.QuantityAfter - *prior.QuantityAfter)
	case ev.ImpliedDelta != nil:
		res.Delta = intPtr(*ev.ImpliedDelta)
		res.Direct = true
	}

	switch {
	case ev.QuantityAfter != nil:
		res.QuantityAfter = intPtr(*ev.QuantityAfter)
	case res.Direct && prior != nil && prior.QuantityAfter != nil:
		res.QuantityAfter = intPtr(*prior.QuantityAfter + *res.Delta)
		res.QuantityDerived = true
	}

	return res
}

func intPtr(v int) *int {
	return &v
}
