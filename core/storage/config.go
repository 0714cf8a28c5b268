package storage

import "time"

// Config holds configuration for the S3-compatible dead-letter storage.
type Config struct {
	// Endpoint is host:port of the storage service. A https:// scheme implies UseSSL.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket holds every archived delivery. It is created on startup when missing.
	Bucket string `mapstructure:"bucket" default:"inventory-ledger"`
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds connection setup and the wait for a response.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// DeadLetterPrefix is the key prefix of failed webhook deliveries.
	DeadLetterPrefix string `mapstructure:"dead_letter_prefix" default:"deadletter"`
}

// Timeout returns the network timeout, 30s when unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
