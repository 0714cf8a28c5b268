// Package ledger persists reconciled inventory movements.
//
// An Entry is one physical quantity change for a (shop, item, location). Entries are
// created once, upgraded in place at most once (placeholder to attributed) and never
// deleted here. The (shop, idempotency_key) unique index is the only strict concurrency
// guard; everything else the reconciler does is best-effort matching on top of the
// Store queries.
//
// # Usage
//
//	if err := ledger.Migrate(db); err != nil {
//	    return err
//	}
//	store := ledger.NewGormStore(db)
//	page, err := store.Query(ctx, ledger.Filter{Shop: "s1", From: "2024-01-01", To: "2024-01-31"})
package ledger
