// Package config provides 12-factor configuration management for the
// portfolio backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, CORS origins)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Data: Dataset directory and hot reload
//   - Sandbox: Script window frame rate, tick budget and runtime pool
//   - Session: Live session limit
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - DATA_DIR, DATA_WATCH
//   - SANDBOX_FPS, SANDBOX_TICK_TIMEOUT, SANDBOX_POOL_SIZE
//   - SESSION_MAX
package config
