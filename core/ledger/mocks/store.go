package mocks

import (
	"context"
	"time"

	"inventory-ledger/core/ledger"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of ledger.Store
type Store struct {
	mock.Mock
}

func (m *Store) Insert(ctx context.Context, entry *ledger.Entry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *Store) FindByIdempotencyKey(ctx context.Context, shop, key string) (*ledger.Entry, error) {
	args := m.Called(ctx, shop, key)
	return entryArg(args, 0), args.Error(1)
}

func (m *Store) FindMostRecent(ctx context.Context, match ledger.Match) (*ledger.Entry, error) {
	args := m.Called(ctx, match)
	return entryArg(args, 0), args.Error(1)
}

func (m *Store) FindUpgradeCandidate(ctx context.Context, match ledger.Match, tier ledger.Tier, from, to time.Time) (*ledger.Entry, error) {
	args := m.Called(ctx, match, tier, from, to)
	return entryArg(args, 0), args.Error(1)
}

func (m *Store) FindDuplicateCandidate(ctx context.Context, match ledger.Match, quantityAfter int, tier ledger.Tier, from, to time.Time) (*ledger.Entry, error) {
	args := m.Called(ctx, match, quantityAfter, tier, from, to)
	return entryArg(args, 0), args.Error(1)
}

func (m *Store) Upgrade(ctx context.Context, id string, fields ledger.Upgrade) (bool, error) {
	args := m.Called(ctx, id, fields)
	return args.Bool(0), args.Error(1)
}

func (m *Store) Query(ctx context.Context, filter ledger.Filter) (*ledger.Page, error) {
	args := m.Called(ctx, filter)
	if page, ok := args.Get(0).(*ledger.Page); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func entryArg(args mock.Arguments, i int) *ledger.Entry {
	if entry, ok := args.Get(i).(*ledger.Entry); ok {
		return entry
	}
	return nil
}
