package reconcile

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"inventory-ledger/core/ledger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var t0 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// zoneStub resolves shop time zones from a map.
type zoneStub struct {
	zones map[string]*time.Location
	err   error
}

func (z zoneStub) Location(ctx context.Context, shop string) (*time.Location, error) {
	if z.err != nil {
		return nil, z.err
	}
	return z.zones[shop], nil
}

// namerStub counts lookups and delegates to fn.
type namerStub struct {
	calls atomic.Int32
	fn    func(ctx context.Context, shop, locationID string) (string, error)
}

func (n *namerStub) LocationName(ctx context.Context, shop, locationID string) (string, error) {
	n.calls.Add(1)
	return n.fn(ctx, shop, locationID)
}

// setupTestDB creates an in-memory SQLite ledger. A single connection keeps
// concurrent tests from tripping over shared-cache table locks.
func setupTestDB(t *testing.T, dbName string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, ledger.Migrate(db))
	return db
}

func setupEngine(t *testing.T, dbName string, opts ...Option) (*Engine, *gorm.DB) {
	db := setupTestDB(t, dbName)
	opts = append([]Option{WithClock(func() time.Time { return t0 })}, opts...)
	return NewEngine(ledger.NewGormStore(db), DefaultConfig(), zap.NewNop(), opts...), db
}

func countEntries(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&ledger.Entry{}).Count(&n).Error)
	return n
}

func loadEntry(t *testing.T, db *gorm.DB, id string) ledger.Entry {
	var entry ledger.Entry
	require.NoError(t, db.First(&entry, "id = ?", id).Error)
	return entry
}

// webhookChange builds a generic quantity webhook change for s1/I1/L1.
func webhookChange(at time.Time, available int) RawChange {
	return RawChange{
		Shop:           "s1",
		OccurredAt:     at,
		ItemID:         "I1",
		LocationID:     "L1",
		QuantityAfter:  intPtr(available),
		SourceType:     ledger.SourceInventoryLevel,
		IdempotencyKey: fmt.Sprintf("inventory_level:I1:L1:%d:%d", at.Unix(), available),
	}
}
