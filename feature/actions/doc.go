// Package actions is the first-party channel: staff record transfers, losses,
// stocktakes and other attributed movements from the app, in batches.
//
// Every event carries a tier-1 activity label. Events are validated and reconciled
// one at a time and in order, so a rejected event never blocks its siblings and an
// earlier event of the batch is visible to the delta chaining of a later one.
package actions
