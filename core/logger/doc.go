// Package logger provides structured logging built on zap.
//
// # Configuration
//
// The logger is configured through logger.Config: Level selects between
// zap's development (debug) and production presets, Format selects console
// or JSON encoding. CLI commands default to console output.
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("catalog opened", zap.Int("records", store.Count()))
package logger
