// Package main is the entry point for the portfolio backend server.
//
// The server hosts portfolio sessions. A visitor lands on the portfolio,
// the page "crashes" once the language chart scrolls into view, and
// continuing opens a code editor over a virtual file tree of projects with
// a draggable canvas window that runs the visitor's own script.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server --port 8000
//
//	# Development mode (colored logs, debug level) with a live dataset
//	./server --dev --data-dir ./data --watch
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
