package reconcile

import "time"

// Config holds the matching windows and timeouts of the engine.
type Config struct {
	// UpgradeLookback is how far before an attributed event a placeholder may be upgraded.
	UpgradeLookback time.Duration `mapstructure:"upgrade_lookback" default:"30m"`
	// UpgradeLookahead is how far after an attributed event a placeholder may be upgraded.
	UpgradeLookahead time.Duration `mapstructure:"upgrade_lookahead" default:"5m"`
	// DuplicateWindow is the symmetric window used for cross-source duplicate suppression.
	DuplicateWindow time.Duration `mapstructure:"duplicate_window" default:"2m"`
	// StoreTimeout bounds every ledger store call.
	StoreTimeout time.Duration `mapstructure:"store_timeout" default:"5s"`
	// EnrichmentTimeout bounds location name lookups.
	EnrichmentTimeout time.Duration `mapstructure:"enrichment_timeout" default:"2s"`
	// LocationCacheTTL is how long resolved location names are kept.
	LocationCacheTTL time.Duration `mapstructure:"location_cache_ttl" default:"1h"`
}

// DefaultConfig returns the configuration used when no overrides are given.
func DefaultConfig() Config {
	return Config{
		UpgradeLookback:   30 * time.Minute,
		UpgradeLookahead:  5 * time.Minute,
		DuplicateWindow:   2 * time.Minute,
		StoreTimeout:      5 * time.Second,
		EnrichmentTimeout: 2 * time.Second,
		LocationCacheTTL:  time.Hour,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UpgradeLookback <= 0 {
		c.UpgradeLookback = d.UpgradeLookback
	}
	if c.UpgradeLookahead <= 0 {
		c.UpgradeLookahead = d.UpgradeLookahead
	}
	if c.DuplicateWindow <= 0 {
		c.DuplicateWindow = d.DuplicateWindow
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = d.StoreTimeout
	}
	if c.EnrichmentTimeout <= 0 {
		c.EnrichmentTimeout = d.EnrichmentTimeout
	}
	if c.LocationCacheTTL <= 0 {
		c.LocationCacheTTL = d.LocationCacheTTL
	}
	return c
}
