// Package main is the entry point for the network session server.
//
// The server keeps one workspace of networks, views, tables and styles in
// memory and persists it as session archives on request.
//
// The server provides:
//   - REST API to save, open and inspect sessions
//   - WebSocket stream of session lifecycle events
//   - Prometheus metrics
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	SESSION_DIR=/var/lib/sessions ./server -port 8000
//
//	# Development mode (console logs, debug level)
//	./server -dev -seed ./seeds
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
