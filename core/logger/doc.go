// Package logger provides structured logging based on Zap.
//
// Every line carries service="inventory-ledger". A debug level selects Zap's
// development configuration (caller info, stack traces on warn); anything else selects
// the production configuration with sampling disabled. The encoding is json unless
// Format is "console".
//
// # Request correlation
//
// WithRayID copies the ray id set by the rayid middleware onto a logger so every
// line written while handling a webhook or action batch can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	l := logger.WithRayID(log, c)
//	l.Error("Webhook ingestion failed", zap.Error(err))
package logger
