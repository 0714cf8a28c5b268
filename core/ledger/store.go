package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyExists is returned by Insert and Upgrade when the (shop, key) uniqueness
// constraint rejected the write. Callers treat it as "already recorded".
var ErrAlreadyExists = errors.New("ledger entry already exists")

// SortOrder is the direction of the event timestamp sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter selects a page of ledger entries for reporting.
type Filter struct {
	// Shop is required.
	Shop string
	// From and To are inclusive shop-local dates (YYYY-MM-DD). Both are required.
	From string
	To   string

	LocationIDs []string
	ItemIDs     []string
	Activities  []Activity

	Sort SortOrder
	// Page is 1-based.
	Page     int
	PageSize int
}

// Page is one page of a ledger query.
type Page struct {
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Entries  []Entry `json:"entries"`
}

// Store is the persistence port of the reconciliation engine.
// None of the methods run inside a cross-row transaction.
type Store interface {
	// Insert persists a new entry and returns its id.
	// It returns ErrAlreadyExists when (shop, idempotency key) is already recorded.
	Insert(ctx context.Context, entry *Entry) (string, error)

	// FindByIdempotencyKey returns the entry recorded under key, either as its own
	// idempotency key or as the key of the event that upgraded it. Nil when absent.
	FindByIdempotencyKey(ctx context.Context, shop, key string) (*Entry, error)

	// FindMostRecent returns the latest entry by event timestamp for the match. Nil when absent.
	FindMostRecent(ctx context.Context, match Match) (*Entry, error)

	// FindUpgradeCandidate returns the most recent entry of the given tier whose
	// timestamp lies in [from, to]. Nil when absent.
	FindUpgradeCandidate(ctx context.Context, match Match, tier Tier, from, to time.Time) (*Entry, error)

	// FindDuplicateCandidate returns the most recent entry of the given tier with the
	// given resulting quantity whose timestamp lies in [from, to]. Nil when absent.
	FindDuplicateCandidate(ctx context.Context, match Match, quantityAfter int, tier Tier, from, to time.Time) (*Entry, error)

	// Upgrade applies attribution to a placeholder entry. It reports false when the
	// entry is no longer a placeholder.
	Upgrade(ctx context.Context, id string, fields Upgrade) (bool, error)

	// Query returns a page of entries ordered by event timestamp.
	Query(ctx context.Context, filter Filter) (*Page, error)
}
