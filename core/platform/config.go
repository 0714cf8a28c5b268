package platform

// Config holds configuration for the platform Admin GraphQL API.
type Config struct {
	// APIVersion is the dated Admin API version.
	APIVersion string `mapstructure:"api_version" default:"2024-07"`
	// BaseURL overrides https://<shop> (used against local mocks).
	BaseURL string `mapstructure:"base_url" default:""`
	// TimeoutSeconds bounds every API call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}
