package webhooks

import (
	"context"
	"sync"
	"testing"
	"time"

	"inventory-ledger/core/database"
	"inventory-ledger/core/ledger"
	"inventory-ledger/core/platform"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var receivedAt = time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)

type orderLookupMock struct {
	mock.Mock
}

func (m *orderLookupMock) OrderLineItems(ctx context.Context, shop, orderID string) (map[string]platform.LineItem, error) {
	args := m.Called(ctx, shop, orderID)
	items, _ := args.Get(0).(map[string]platform.LineItem)
	return items, args.Error(1)
}

func (m *orderLookupMock) AvailableQuantity(ctx context.Context, shop, inventoryItemID, locationID string) (int, error) {
	args := m.Called(ctx, shop, inventoryItemID, locationID)
	return args.Int(0), args.Error(1)
}

type archiveStub struct {
	mu      sync.Mutex
	letters []storage.Letter
	err     error
}

func (a *archiveStub) Archive(ctx context.Context, letter storage.Letter) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.letters = append(a.letters, letter)
	return "deadletter/" + letter.Shop + "/1.json", nil
}

func setupEngine(t *testing.T) (*reconcile.Engine, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, ledger.Migrate(db))

	engine := reconcile.NewEngine(ledger.NewGormStore(db), reconcile.DefaultConfig(), zap.NewNop(),
		reconcile.WithClock(func() time.Time { return receivedAt }),
	)
	return engine, db
}

func setupService(t *testing.T, orders OrderLookup, archive Archiver) (*Service, *gorm.DB) {
	t.Helper()
	engine, db := setupEngine(t)
	if orders == nil {
		orders = new(orderLookupMock)
	}
	svc := NewService(engine, archive, zap.NewNop(),
		InventoryLevelAdapter{},
		NewRefundAdapter(orders, time.Second, zap.NewNop()),
	)
	return svc, db
}

func ledgerEntries(t *testing.T, db *gorm.DB) []ledger.Entry {
	t.Helper()
	var entries []ledger.Entry
	require.NoError(t, db.Order("occurred_at ASC").Find(&entries).Error)
	return entries
}

const levelPayload = `{"inventory_item_id": 271878346596, "location_id": 24826418, "available": 45, "updated_at": "2024-03-10T12:00:00Z"}`

const refundPayloadJSON = `{
  "id": 509562969,
  "order_id": 450789469,
  "created_at": "2024-03-10T12:00:30Z",
  "note": "wrong size",
  "refund_line_items": [
    {"id": 104689539, "line_item_id": 703073504, "quantity": 2, "restock_type": "return", "location_id": 24826418,
     "line_item": {"variant_id": 457924702, "sku": "IPOD-342-N"}},
    {"id": 104689540, "line_item_id": 703073505, "quantity": 1, "restock_type": "no_restock", "location_id": null,
     "line_item": {"variant_id": 457924703, "sku": "IPOD-342-B"}}
  ]
}`
