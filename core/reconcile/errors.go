package reconcile

import "errors"

var (
	// ErrMalformedInput rejects a single event: a required identifier or label is missing or invalid.
	ErrMalformedInput = errors.New("malformed input")

	// ErrEnrichmentUnavailable marks a failed or timed out lookup. The engine degrades to a
	// fallback value and never returns it to callers.
	ErrEnrichmentUnavailable = errors.New("enrichment unavailable")

	// ErrStoreUnavailable means the ledger store could not be reached in time. The event was
	// not recorded and the caller's own redelivery is relied upon.
	ErrStoreUnavailable = errors.New("ledger store unavailable")
)
