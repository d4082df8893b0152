// Package middleware provides gin middleware for the session API.
//
// CORS follows the configured origin allow list. RequestID stamps each
// request with a req_ prefixed ULID. RateLimit and GlobalRateLimit throttle
// per client IP or across all clients with golang.org/x/time/rate.
package middleware
