// Package reconcile turns raw inventory change notifications into ledger entries.
//
// Three channels report the same physical change with different detail and no shared
// sequence number: a generic quantity webhook (placeholder, tier 0), a refund webhook
// and a first-party action channel (attributed, tier 1). Delivery is at-least-once and
// unordered, so every decision is an idempotent function of the event and the current
// ledger contents.
//
// # Pipeline
//
// Each event runs synchronously through four steps:
//
// 1. Normalize: canonical identifiers (gid://shopify/<Kind>/<id>), defaults, the
// shop-local date and a fallback idempotency key.
//
// 2. Classify: activity label and tier, decided by the channel alone.
//
// 3. ResolveDelta: explicit delta, else chained against the most recent entry, else
// the delta implied by the source.
//
// 4. Decide then Apply: exact replay, no-op, cross-source duplicate, placeholder
// upgrade or plain insert, first match wins.
//
// # Concurrency
//
// There are no locks. The (shop, idempotency_key) unique index rejects concurrent
// exact replays, and placeholder upgrades are conditional on the row still being a
// placeholder. Two distinct changes racing for the same upgrade window may still be
// merged; the windows are configurable but that risk is accepted.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(ledger.NewGormStore(db), cfg.Reconcile, log,
//	    reconcile.WithZones(shops),
//	    reconcile.WithLocationNames(reconcile.NewNameCache(platformClient, rdb, ttl, log)),
//	)
//
//	result, err := engine.Reconcile(ctx, reconcile.RawChange{...})
//
//	// Dry run
//	plan, err := engine.Prepare(ctx, raw)
package reconcile
