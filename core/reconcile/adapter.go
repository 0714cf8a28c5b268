package reconcile

import (
	"context"
	"time"
)

// Adapter turns one inbound payload of a channel into raw changes.
// Each ingestion channel (generic webhook, refund webhook, first-party actions)
// provides its own implementation so the engine never branches on payload shape.
type Adapter interface {
	// Name returns the channel name (e.g., "inventory_levels/update").
	Name() string

	// Changes parses payload for shop and returns zero or more raw changes.
	// A payload that yields no movement (e.g., a refund without restock) returns
	// an empty slice and no error. Unparseable payloads return ErrMalformedInput.
	Changes(ctx context.Context, shop string, payload []byte) ([]RawChange, error)
}

// ZoneResolver provides the configured time zone of a shop.
type ZoneResolver interface {
	// Location returns the shop's time zone. Implementations may return an error;
	// the engine then falls back to UTC.
	Location(ctx context.Context, shop string) (*time.Location, error)
}

// LocationNamer resolves a location id to its display name.
type LocationNamer interface {
	LocationName(ctx context.Context, shop, locationID string) (string, error)
}
