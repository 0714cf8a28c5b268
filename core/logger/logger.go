package logger

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is attached to every line as the "service" field.
const Service = "inventory-ledger"

// New creates a zap logger from the configuration. Unknown levels fall back to info.
func New(cfg *Config, opts ...zap.Option) (*zap.Logger, error) {
	zcfg := baseConfig(cfg.Level)

	switch cfg.Format {
	case "console":
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.DisableStacktrace = true
	default:
		zcfg.Encoding = "json"
	}

	enc := &zcfg.EncoderConfig
	enc.TimeKey, enc.LevelKey, enc.MessageKey = "time", "level", "message"

	l, err := zcfg.Build(opts...)
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("service", Service)), nil
}

// baseConfig picks the development preset for debug and the production preset,
// sampling disabled, for everything else. Ledger decisions must never be sampled away.
func baseConfig(level string) zap.Config {
	if level == "debug" {
		return zap.NewDevelopmentConfig()
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Sampling = nil
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = lvl
	}
	return zcfg
}

// WithRayID returns a logger with the ray_id field set from the Fiber context.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	rid, _ := c.Locals("ray_id").(string)
	if rid == "" {
		return l
	}
	return l.With(zap.String("ray_id", rid))
}
