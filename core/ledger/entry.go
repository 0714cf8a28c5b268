package ledger

import "time"

// Activity is the business label attached to a ledger entry.
type Activity string

const (
	// ActivityObserved is the placeholder label: a quantity change was seen but its cause is unknown.
	ActivityObserved Activity = "observed"
	// ActivityTransferIn is stock received from another location.
	ActivityTransferIn Activity = "transfer_in"
	// ActivityTransferOut is stock sent to another location.
	ActivityTransferOut Activity = "transfer_out"
	// ActivityLoss is stock written off (damage, theft, expiry).
	ActivityLoss Activity = "loss"
	// ActivityStocktake is a counted correction.
	ActivityStocktake Activity = "stocktake"
	// ActivityPurchase is stock received from a supplier.
	ActivityPurchase Activity = "purchase"
	// ActivityPurchaseCancel reverses a purchase receipt.
	ActivityPurchaseCancel Activity = "purchase_cancel"
	// ActivitySale is stock sold.
	ActivitySale Activity = "sale"
	// ActivityRefund is stock returned by a customer.
	ActivityRefund Activity = "refund"
	// ActivityAdjustment is a manual adjustment entered by staff.
	ActivityAdjustment Activity = "adjustment"
)

// Activities lists every label of the fixed enumeration.
var Activities = []Activity{
	ActivityObserved,
	ActivityTransferIn,
	ActivityTransferOut,
	ActivityLoss,
	ActivityStocktake,
	ActivityPurchase,
	ActivityPurchaseCancel,
	ActivitySale,
	ActivityRefund,
	ActivityAdjustment,
}

// Tier is the precedence rank of an activity.
type Tier int

const (
	// TierPlaceholder describes a change without business context.
	TierPlaceholder Tier = 0
	// TierAttributed describes a change with an explicit business cause.
	TierAttributed Tier = 1
)

// Valid reports whether a is a member of the enumeration.
func (a Activity) Valid() bool {
	for _, known := range Activities {
		if a == known {
			return true
		}
	}
	return false
}

// Tier returns the precedence tier of the activity.
func (a Activity) Tier() Tier {
	if a == ActivityObserved {
		return TierPlaceholder
	}
	return TierAttributed
}

// SourceType tags the channel an entry was recorded from.
type SourceType string

const (
	SourceInventoryLevel SourceType = "inventory_level_webhook"
	SourceRefund         SourceType = "refund_webhook"
	SourcePOS            SourceType = "pos"
	SourceAdmin          SourceType = "admin"
)

// Entry is one reconciled inventory movement.
// Unique constraints: (shop, idempotency_key) and (shop, upgrade_key).
type Entry struct {
	ID                string     `gorm:"size:36;primaryKey" json:"id"`
	Shop              string     `gorm:"size:255;not null;uniqueIndex:uniq_ledger_shop_key,priority:1;uniqueIndex:uniq_ledger_shop_upgrade_key,priority:1;index:idx_ledger_item_location,priority:1;index:idx_ledger_shop_date,priority:1" json:"shop"`
	OccurredAt        time.Time  `gorm:"not null;index:idx_ledger_item_location,priority:4;index:idx_ledger_shop_date,priority:3" json:"occurred_at"`
	Date              string     `gorm:"size:10;not null;index:idx_ledger_shop_date,priority:2" json:"date"`
	ItemID            string     `gorm:"size:128;not null;index:idx_ledger_item_location,priority:2" json:"item_id"`
	VariantID         *string    `gorm:"size:128" json:"variant_id"`
	SKU               string     `gorm:"size:255;not null" json:"sku"`
	LocationID        string     `gorm:"size:128;not null;index:idx_ledger_item_location,priority:3" json:"location_id"`
	LocationName      string     `gorm:"size:255;not null" json:"location_name"`
	Activity          Activity   `gorm:"size:32;not null;index" json:"activity"`
	Delta             *int       `json:"delta"`
	QuantityAfter     *int       `json:"quantity_after"`
	SourceType        SourceType `gorm:"size:32;not null" json:"source_type"`
	SourceID          *string    `gorm:"size:255" json:"source_id"`
	AdjustmentGroupID *string    `gorm:"size:255" json:"adjustment_group_id"`
	IdempotencyKey    string     `gorm:"size:255;not null;uniqueIndex:uniq_ledger_shop_key,priority:2" json:"idempotency_key"`
	UpgradeKey        *string    `gorm:"size:255;uniqueIndex:uniq_ledger_shop_upgrade_key,priority:2" json:"upgrade_key,omitempty"`
	Note              *string    `gorm:"type:text" json:"note"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name used by GORM.
func (Entry) TableName() string {
	return "inventory_ledger_entries"
}

// Tier returns the tier of the entry's current activity.
func (e Entry) Tier() Tier {
	return e.Activity.Tier()
}

// Match selects the history of one (shop, item, location).
// ItemIDs and LocationIDs carry every accepted encoding of the same identifier.
type Match struct {
	Shop        string
	ItemIDs     []string
	LocationIDs []string
}

// Upgrade holds the fields written when a placeholder entry gains attribution.
// Nil pointers leave the stored value untouched.
type Upgrade struct {
	Activity          Activity
	SourceType        SourceType
	SourceID          *string
	AdjustmentGroupID *string
	LocationName      string
	UpgradeKey        string
	Delta             *int
	QuantityAfter     *int
}
