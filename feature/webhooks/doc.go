// Package webhooks ingests platform webhook deliveries.
//
// Two topics are handled, each by its own reconcile.Adapter:
//
//   - inventory_levels/update: the generic quantity notification. It becomes a
//     placeholder change carrying the new available quantity.
//   - refunds/create: every restocked refund line becomes a refund change with an
//     implied +quantity delta. Line items are resolved to inventory items through
//     the platform API; the current available quantity is looked up fail-soft.
//
// Deliveries arrive over HTTP (POST /webhooks/<topic>) or through a Pub/Sub
// subscription whose messages carry the webhook headers as attributes. Either way a
// delivery that cannot be fully recorded is archived to the dead-letter store before
// it is acknowledged. Only when archiving fails too does the handler answer 500 (or
// nack the message) so the platform redelivers.
package webhooks
