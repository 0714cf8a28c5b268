package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"gorm.io/gorm"
)

// ErrUnknownShop is returned when a shop has no row in the shops table.
var ErrUnknownShop = errors.New("unknown shop")

// Shop is the read-only settings row of an installed shop.
type Shop struct {
	Domain       string `gorm:"column:domain;size:255;primaryKey"`
	IANATimezone string `gorm:"column:iana_timezone;size:64"`
	AccessToken  string `gorm:"column:access_token;size:255"`
}

// TableName overrides the table name used by GORM.
func (Shop) TableName() string {
	return "shops"
}

// cachedShop with a nil shop records a miss.
type cachedShop struct {
	shop     *Shop
	location *time.Location
	built    time.Time
}

// Directory looks shops up by domain and keeps them in memory for ttl.
type Directory struct {
	db  *gorm.DB
	ttl time.Duration

	mu    sync.RWMutex
	cache map[string]cachedShop
	now   func() time.Time
}

// NewDirectory creates a directory reading from db.
func NewDirectory(db *gorm.DB, ttl time.Duration) *Directory {
	return &Directory{
		db:    db,
		ttl:   ttl,
		cache: make(map[string]cachedShop),
		now:   time.Now,
	}
}

// Location returns the shop's time zone. Unknown shops and unparseable zone names
// use UTC; only a database failure is an error.
func (d *Directory) Location(ctx context.Context, domain string) (*time.Location, error) {
	entry, err := d.get(ctx, domain)
	if errors.Is(err, ErrUnknownShop) {
		return time.UTC, nil
	}
	if err != nil {
		return nil, err
	}
	return entry.location, nil
}

// AccessToken returns the platform API token of the shop.
func (d *Directory) AccessToken(ctx context.Context, domain string) (string, error) {
	entry, err := d.get(ctx, domain)
	if err != nil {
		return "", err
	}
	if entry.shop.AccessToken == "" {
		return "", fmt.Errorf("shop %s has no access token", domain)
	}
	return entry.shop.AccessToken, nil
}

// Known reports whether the shop is installed.
func (d *Directory) Known(ctx context.Context, domain string) (bool, error) {
	_, err := d.get(ctx, domain)
	if errors.Is(err, ErrUnknownShop) {
		return false, nil
	}
	return err == nil, err
}

func (d *Directory) get(ctx context.Context, domain string) (cachedShop, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))

	d.mu.RLock()
	entry, ok := d.cache[domain]
	d.mu.RUnlock()
	if ok && d.now().Sub(entry.built) <= d.ttl {
		if entry.shop == nil {
			return cachedShop{}, fmt.Errorf("%w: %s", ErrUnknownShop, domain)
		}
		return entry, nil
	}

	var s Shop
	err := d.db.WithContext(ctx).Where("domain = ?", domain).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Misses are cached too so unknown senders cost one query per ttl.
		d.mu.Lock()
		d.cache[domain] = cachedShop{built: d.now()}
		d.mu.Unlock()
		return cachedShop{}, fmt.Errorf("%w: %s", ErrUnknownShop, domain)
	}
	if err != nil {
		return cachedShop{}, fmt.Errorf("failed to load shop %s: %w", domain, err)
	}

	loc, err := time.LoadLocation(s.IANATimezone)
	if err != nil || s.IANATimezone == "" {
		loc = time.UTC
	}

	entry = cachedShop{shop: &s, location: loc, built: d.now()}
	d.mu.Lock()
	d.cache[domain] = entry
	d.mu.Unlock()
	return entry, nil
}
