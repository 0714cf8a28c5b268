package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory-ledger/core/ledger"
	"inventory-ledger/core/platform"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Webhook topics handled by this feature.
const (
	TopicInventoryLevelUpdate = "inventory_levels/update"
	TopicRefundCreate         = "refunds/create"
)

var validate = validator.New()

// decode parses a webhook body keeping numbers exact.
func decode(payload []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", reconcile.ErrMalformedInput, err)
	}
	return nil
}

func invalid(err error) error {
	if fields := utils.ValidationErrors(err); fields != nil {
		return fmt.Errorf("%w: invalid fields %v", reconcile.ErrMalformedInput, fields)
	}
	return fmt.Errorf("%w: %v", reconcile.ErrMalformedInput, err)
}

// parseTime accepts RFC 3339 timestamps; empty means receipt time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", reconcile.ErrMalformedInput, s)
	}
	return t, nil
}

// InventoryLevelAdapter reads the generic quantity webhook. It knows the new
// available quantity and nothing about why it changed.
type InventoryLevelAdapter struct{}

type inventoryLevelPayload struct {
	InventoryItemID   any    `json:"inventory_item_id"`
	LocationID        any    `json:"location_id"`
	Available         any    `json:"available"`
	UpdatedAt         string `json:"updated_at"`
	AdjustmentGroupID any    `json:"inventory_adjustment_group_id"`
}

type inventoryLevelUpdate struct {
	ItemID     string `validate:"required"`
	LocationID string `validate:"required"`
	Available  *int
	UpdatedAt  time.Time
}

// Name implements reconcile.Adapter.
func (InventoryLevelAdapter) Name() string { return TopicInventoryLevelUpdate }

// Changes implements reconcile.Adapter.
func (InventoryLevelAdapter) Changes(ctx context.Context, shop string, payload []byte) ([]reconcile.RawChange, error) {
	var p inventoryLevelPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}

	updatedAt, err := parseTime(p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u := inventoryLevelUpdate{
		ItemID:     utils.ToString(p.InventoryItemID),
		LocationID: utils.ToString(p.LocationID),
		Available:  utils.ToOptionalInt(p.Available),
		UpdatedAt:  updatedAt,
	}
	if err := validate.Struct(u); err != nil {
		return nil, invalid(err)
	}
	// A null quantity carries no level to record and nothing to chain from.
	if u.Available == nil {
		return nil, nil
	}

	change := reconcile.RawChange{
		Shop:              shop,
		OccurredAt:        u.UpdatedAt,
		ItemID:            u.ItemID,
		LocationID:        u.LocationID,
		QuantityAfter:     u.Available,
		SourceType:        ledger.SourceInventoryLevel,
		AdjustmentGroupID: utils.ToString(p.AdjustmentGroupID),
	}
	// Without a timestamp the normalizer derives a time-rounded key.
	if !u.UpdatedAt.IsZero() {
		change.IdempotencyKey = fmt.Sprintf("inventory_level:%s:%s:%d:%d",
			reconcile.NumericID(u.ItemID), reconcile.NumericID(u.LocationID), u.UpdatedAt.Unix(), *u.Available)
	}
	return []reconcile.RawChange{change}, nil
}

// OrderLookup resolves refund line items through the platform API.
type OrderLookup interface {
	OrderLineItems(ctx context.Context, shop, orderID string) (map[string]platform.LineItem, error)
	AvailableQuantity(ctx context.Context, shop, inventoryItemID, locationID string) (int, error)
}

// RefundAdapter reads the refund webhook. Every restocked line becomes one
// attributed change with an implied positive delta.
type RefundAdapter struct {
	orders  OrderLookup
	timeout time.Duration
	logger  *zap.Logger
}

// NewRefundAdapter creates the refund adapter. timeout bounds each platform call.
func NewRefundAdapter(orders OrderLookup, timeout time.Duration, logger *zap.Logger) *RefundAdapter {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefundAdapter{orders: orders, timeout: timeout, logger: logger}
}

type refundPayload struct {
	ID              any    `json:"id"`
	OrderID         any    `json:"order_id"`
	CreatedAt       string `json:"created_at"`
	Note            string `json:"note"`
	RefundLineItems []struct {
		ID          any    `json:"id"`
		LineItemID  any    `json:"line_item_id"`
		Quantity    any    `json:"quantity"`
		RestockType string `json:"restock_type"`
		LocationID  any    `json:"location_id"`
		LineItem    struct {
			VariantID any    `json:"variant_id"`
			SKU       string `json:"sku"`
		} `json:"line_item"`
	} `json:"refund_line_items"`
}

type refundHeader struct {
	ID      string `validate:"required"`
	OrderID string `validate:"required"`
}

// Name implements reconcile.Adapter.
func (a *RefundAdapter) Name() string { return TopicRefundCreate }

// Changes implements reconcile.Adapter. A refund whose line items cannot be
// resolved to inventory items returns ErrEnrichmentUnavailable, so the delivery is
// kept for replay instead of being recorded without an item.
func (a *RefundAdapter) Changes(ctx context.Context, shop string, payload []byte) ([]reconcile.RawChange, error) {
	var p refundPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	h := refundHeader{ID: utils.ToString(p.ID), OrderID: utils.ToString(p.OrderID)}
	if err := validate.Struct(h); err != nil {
		return nil, invalid(err)
	}
	createdAt, err := parseTime(p.CreatedAt)
	if err != nil {
		return nil, err
	}

	log := a.logger.With(zap.String("shop", shop), zap.String("refund_id", h.ID))

	var lineItems map[string]platform.LineItem
	var changes []reconcile.RawChange
	for _, rli := range p.RefundLineItems {
		lineID := utils.ToString(rli.ID)
		quantity := utils.ToInt(rli.Quantity)
		locationID := utils.ToString(rli.LocationID)

		if rli.RestockType == "no_restock" || quantity <= 0 {
			continue
		}
		if locationID == "" {
			log.Warn("Restocked refund line without location, skipping", zap.String("refund_line_item_id", lineID))
			continue
		}

		// One order lookup per payload, only when something was restocked.
		if lineItems == nil {
			lineItems, err = a.lineItems(ctx, shop, h.OrderID)
			if err != nil {
				return nil, err
			}
		}

		item, ok := lineItems[reconcile.NumericID(utils.ToString(rli.LineItemID))]
		if !ok || item.InventoryItemID == "" {
			return nil, fmt.Errorf("%w: line item %v of order %s has no inventory item",
				reconcile.ErrEnrichmentUnavailable, rli.LineItemID, h.OrderID)
		}

		sku := item.SKU
		if sku == "" {
			sku = rli.LineItem.SKU
		}
		variantID := item.VariantID
		if variantID == "" {
			variantID = utils.ToString(rli.LineItem.VariantID)
		}

		changes = append(changes, reconcile.RawChange{
			Shop:           shop,
			OccurredAt:     createdAt,
			ItemID:         item.InventoryItemID,
			VariantID:      variantID,
			SKU:            sku,
			LocationID:     locationID,
			QuantityAfter:  a.available(ctx, log, shop, item.InventoryItemID, locationID),
			ImpliedDelta:   &quantity,
			SourceType:     ledger.SourceRefund,
			SourceID:       h.OrderID,
			IdempotencyKey: fmt.Sprintf("refund:%s:%s", h.ID, lineID),
			Note:           p.Note,
		})
	}
	return changes, nil
}

func (a *RefundAdapter) lineItems(ctx context.Context, shop, orderID string) (map[string]platform.LineItem, error) {
	gid, err := reconcile.Canonical(reconcile.KindOrder, orderID)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	items, err := a.orders.OrderLineItems(callCtx, shop, gid)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s: %w", reconcile.ErrEnrichmentUnavailable, orderID, err)
	}
	return items, nil
}

// available is fail-soft: without it the refund is recorded with its implied delta only.
func (a *RefundAdapter) available(ctx context.Context, log *zap.Logger, shop, itemID, locationID string) *int {
	locationGID, err := reconcile.Canonical(reconcile.KindLocation, locationID)
	if err != nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	qty, err := a.orders.AvailableQuantity(callCtx, shop, itemID, locationGID)
	if err != nil {
		if !errors.Is(err, platform.ErrNotFound) {
			log.Warn("Available quantity lookup failed",
				zap.String("inventory_item_id", itemID),
				zap.Error(fmt.Errorf("%w: %w", reconcile.ErrEnrichmentUnavailable, err)),
			)
		}
		return nil
	}
	return &qty
}
