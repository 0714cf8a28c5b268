// Package history serves the ledger read interface, GET /ledger.
//
// A query names a shop and an inclusive range of shop-local dates, optionally
// narrowed to locations, items and activities. Results are sorted by event
// timestamp then id, and paged with a fixed page size.
package history
