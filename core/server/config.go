package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret required on the first-party and ledger routes. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps request bodies. Action batches and refund payloads are small.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"4"`
	// ReadTimeoutSeconds bounds reading a request.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"15"`
	// ShutdownTimeoutSeconds bounds draining in-flight requests on shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"20"`
}

// BodyLimit returns the body limit in bytes, at least 1 MiB.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 1 << 20
	}
	return c.BodyLimitMB << 20
}

// ReadTimeout returns the request read timeout.
func (c Config) ReadTimeout() time.Duration {
	if c.ReadTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns how long shutdown waits for in-flight requests.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
