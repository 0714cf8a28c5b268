package ledger

// Config holds ledger read settings.
type Config struct {
	// PageSize is the fixed number of entries per query page.
	PageSize int `mapstructure:"page_size" default:"50"`
}
