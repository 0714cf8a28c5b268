package actions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"inventory-ledger/core/reconcile"
)

// ID is a platform identifier sent either as a JSON number or a string.
type ID string

// UnmarshalJSON accepts 123, "123" and "gid://shopify/Kind/123".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Event is one inventory action entered by staff in the first-party app.
type Event struct {
	InventoryItemID   ID         `json:"inventory_item_id" validate:"required"`
	LocationID        ID         `json:"location_id" validate:"required"`
	Activity          string     `json:"activity" validate:"required"`
	Delta             *int       `json:"delta"`
	QuantityAfter     *int       `json:"quantity_after" validate:"omitempty,gte=0"`
	SourceID          string     `json:"source_id" validate:"max=255"`
	OccurredAt        *time.Time `json:"occurred_at"`
	VariantID         ID         `json:"variant_id"`
	SKU               string     `json:"sku" validate:"max=255"`
	LocationName      string     `json:"location_name" validate:"max=255"`
	AdjustmentGroupID ID         `json:"adjustment_group_id"`
	IdempotencyKey    string     `json:"idempotency_key" validate:"max=255"`
	Note              string     `json:"note" validate:"max=1024"`
	Source            string     `json:"source" validate:"omitempty,oneof=pos admin"`
}

// Batch is the body of POST /actions.
type Batch struct {
	// Shop is used when the X-Shop-Domain header is absent.
	Shop   string  `json:"shop"`
	Events []Event `json:"events" validate:"required,min=1,max=250"`
}

// EventResult is the outcome of one event of a batch. On success the fields of
// reconcile.Result are inlined.
type EventResult struct {
	Index int `json:"index"`
	*reconcile.Result
	Error string `json:"error,omitempty"`
	// Fields lists failed validations as field -> rule.
	Fields map[string]string `json:"fields,omitempty"`
}

// BatchResult is the response of POST /actions.
type BatchResult struct {
	Success bool          `json:"success"`
	Results []EventResult `json:"results"`
}
