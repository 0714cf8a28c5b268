// Package config loads the service configuration.
//
// Values come from environment variables, optionally seeded from a .env file, with
// defaults taken from the `default` struct tags of each section. Nested keys map to
// upper-case variables with underscores: reconcile.upgrade_lookback is read from
// RECONCILE_UPGRADE_LOOKBACK. Durations accept Go syntax ("30m", "5s").
//
// Sections: server, log, database, storage, redis, pubsub, platform, reconcile, ledger.
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Reconcile.UpgradeLookback)
package config
