package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPageSize is used by Query when the filter carries no page size.
const DefaultPageSize = 50

// GormStore implements Store on top of a GORM connection (MySQL or SQLite).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store bound to db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the ledger table and its indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate ledger entries: %w", err)
	}
	return nil
}

// Insert persists entry. A conflicting (shop, idempotency key) is reported as ErrAlreadyExists.
func (s *GormStore) Insert(ctx context.Context, entry *Entry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry)
	if res.Error != nil {
		if isDuplicateKeyErr(res.Error) {
			return "", ErrAlreadyExists
		}
		return "", fmt.Errorf("failed to insert ledger entry: %w", res.Error)
	}
	// ON CONFLICT DO NOTHING swallows the violation; no row means the key was taken.
	if res.RowsAffected == 0 {
		return "", ErrAlreadyExists
	}
	return entry.ID, nil
}

// FindByIdempotencyKey looks the key up both as an idempotency key and as an upgrade key.
func (s *GormStore) FindByIdempotencyKey(ctx context.Context, shop, key string) (*Entry, error) {
	var entry Entry
	err := s.db.WithContext(ctx).
		Where("shop = ? AND (idempotency_key = ? OR upgrade_key = ?)", shop, key, key).
		Order("created_at ASC").
		Take(&entry).Error
	return found(&entry, err, "find by idempotency key")
}

// FindMostRecent returns the newest entry for the (shop, item, location) match.
func (s *GormStore) FindMostRecent(ctx context.Context, match Match) (*Entry, error) {
	var entry Entry
	err := s.scoped(ctx, match).
		Order(newestFirst).
		Take(&entry).Error
	return found(&entry, err, "find most recent")
}

// FindUpgradeCandidate returns the newest entry of tier inside [from, to].
func (s *GormStore) FindUpgradeCandidate(ctx context.Context, match Match, tier Tier, from, to time.Time) (*Entry, error) {
	var entry Entry
	err := withTier(s.scoped(ctx, match), tier).
		Where("occurred_at BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Order(newestFirst).
		Take(&entry).Error
	return found(&entry, err, "find upgrade candidate")
}

// FindDuplicateCandidate returns the newest entry of tier with the given resulting quantity inside [from, to].
func (s *GormStore) FindDuplicateCandidate(ctx context.Context, match Match, quantityAfter int, tier Tier, from, to time.Time) (*Entry, error) {
	var entry Entry
	err := withTier(s.scoped(ctx, match), tier).
		Where("quantity_after = ?", quantityAfter).
		Where("occurred_at BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Order(newestFirst).
		Take(&entry).Error
	return found(&entry, err, "find duplicate candidate")
}

// Upgrade rewrites a placeholder entry. The update only applies while the row is still
// a placeholder, so two concurrent upgrades cannot both win.
func (s *GormStore) Upgrade(ctx context.Context, id string, fields Upgrade) (bool, error) {
	updates := map[string]interface{}{
		"activity":      fields.Activity,
		"source_type":   fields.SourceType,
		"location_name": fields.LocationName,
		"upgrade_key":   fields.UpgradeKey,
	}
	if fields.SourceID != nil {
		updates["source_id"] = *fields.SourceID
	}
	if fields.AdjustmentGroupID != nil {
		updates["adjustment_group_id"] = *fields.AdjustmentGroupID
	}
	if fields.Delta != nil {
		updates["delta"] = *fields.Delta
	}
	if fields.QuantityAfter != nil {
		updates["quantity_after"] = *fields.QuantityAfter
	}

	res := s.db.WithContext(ctx).
		Model(&Entry{}).
		Where("id = ? AND activity = ?", id, ActivityObserved).
		Updates(updates)
	if res.Error != nil {
		if isDuplicateKeyErr(res.Error) {
			return false, ErrAlreadyExists
		}
		return false, fmt.Errorf("failed to upgrade ledger entry %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Query returns one page of entries matching filter, sorted by event timestamp then id.
func (s *GormStore) Query(ctx context.Context, filter Filter) (*Page, error) {
	if filter.Shop == "" || filter.From == "" || filter.To == "" {
		return nil, fmt.Errorf("shop, from and to are required")
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	q := s.db.WithContext(ctx).Model(&Entry{}).
		Where("shop = ?", filter.Shop).
		Where("date BETWEEN ? AND ?", filter.From, filter.To)
	if len(filter.LocationIDs) > 0 {
		q = q.Where("location_id IN ?", filter.LocationIDs)
	}
	if len(filter.ItemIDs) > 0 {
		q = q.Where("item_id IN ?", filter.ItemIDs)
	}
	if len(filter.Activities) > 0 {
		q = q.Where("activity IN ?", filter.Activities)
	}
	// Count and Find each start from the same filtered statement.
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	order := "occurred_at ASC, id ASC"
	if filter.Sort == SortDesc {
		order = "occurred_at DESC, id DESC"
	}

	entries := make([]Entry, 0, pageSize)
	err := q.Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}

	return &Page{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Entries:  entries,
	}, nil
}

const newestFirst = "occurred_at DESC, created_at DESC, id DESC"

// scoped restricts a query to one (shop, item, location), matching every id encoding.
func (s *GormStore) scoped(ctx context.Context, match Match) *gorm.DB {
	return s.db.WithContext(ctx).
		Where("shop = ?", match.Shop).
		Where("item_id IN ?", match.ItemIDs).
		Where("location_id IN ?", match.LocationIDs)
}

func withTier(q *gorm.DB, tier Tier) *gorm.DB {
	if tier == TierPlaceholder {
		return q.Where("activity = ?", ActivityObserved)
	}
	return q.Where("activity <> ?", ActivityObserved)
}

// found maps gorm's not-found error to a nil entry.
func found(entry *Entry, err error, op string) (*Entry, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return entry, nil
}

// isDuplicateKeyErr recognises unique violations from MySQL (1062), SQLite and
// GORM's translated error.
func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
