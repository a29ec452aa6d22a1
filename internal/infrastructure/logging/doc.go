// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *zap.Logger and derive their own with Named, so log
// lines carry the component ("http", "session", "sandbox", "data").
//
// Example Usage:
//
//	logger := logging.FromSettings("info", false)
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Named("sandbox").Warn("script failed", zap.Error(err))
package logging
