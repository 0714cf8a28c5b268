package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"inventory-ledger/core/cache"
	"inventory-ledger/core/database"
	"inventory-ledger/core/ledger"
	"inventory-ledger/core/logger"
	"inventory-ledger/core/messaging"
	"inventory-ledger/core/platform"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/server"
	"inventory-ledger/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the ledger database.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the dead-letter object storage.
	Storage storage.Config `mapstructure:"storage"`
	// Redis holds configuration for the optional shared cache.
	Redis cache.Config `mapstructure:"redis"`
	// PubSub holds configuration for Pub/Sub webhook delivery.
	PubSub messaging.Config `mapstructure:"pubsub"`
	// Platform holds configuration for the platform Admin API.
	Platform platform.Config `mapstructure:"platform"`
	// Reconcile holds the matching windows and timeouts of the engine.
	Reconcile reconcile.Config `mapstructure:"reconcile"`
	// Ledger holds ledger read settings.
	Ledger ledger.Config `mapstructure:"ledger"`
}

// LoadConfig loads configuration from environment variables and the .env file in path.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. RECONCILE_UPGRADE_LOOKBACK -> reconcile.upgrade_lookback)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate rejects settings that would only fail later at runtime.
func (c *Config) validate() error {
	var errs []error

	switch c.Database.Driver {
	case "", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	r := c.Reconcile
	if r.UpgradeLookback < 0 || r.UpgradeLookahead < 0 || r.DuplicateWindow < 0 {
		errs = append(errs, errors.New("reconcile windows must not be negative"))
	}

	if c.PubSub.Enabled && c.PubSub.Subscription == "" {
		errs = append(errs, errors.New("pubsub.subscription is required when pubsub is enabled"))
	}

	if c.Ledger.PageSize < 0 {
		errs = append(errs, errors.New("ledger.page_size must not be negative"))
	}

	return errors.Join(errs...)
}

var durationType = reflect.TypeOf(time.Duration(0))

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// time.Duration is an int64, not a nested section
		if field.Type.Kind() == reflect.Struct && field.Type != durationType {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
