package messaging

import "time"

// Config holds configuration for Pub/Sub webhook delivery.
type Config struct {
	// Enabled starts the subscriber alongside the HTTP server.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// ProjectID is the Google Cloud project. Falls back to GOOGLE_CLOUD_PROJECT.
	ProjectID string `mapstructure:"project_id" default:""`
	// Topic receives the platform's webhook deliveries.
	Topic string `mapstructure:"topic" default:"inventory-webhooks"`
	// Subscription is the subscription the worker pulls from.
	Subscription string `mapstructure:"subscription" default:"inventory-ledger"`
	// CreateSubscription creates the topic and subscription when missing.
	CreateSubscription bool `mapstructure:"create_subscription" default:"false"`
	// CredentialsFile is a service account key. Empty uses Application Default Credentials.
	CredentialsFile string `mapstructure:"credentials_file" default:""`
	// MaxOutstanding caps messages handled concurrently.
	MaxOutstanding int `mapstructure:"max_outstanding" default:"10"`
	// AckDeadline is used when the subscription is created here.
	AckDeadline time.Duration `mapstructure:"ack_deadline" default:"30s"`
}
