// Package config provides 12-factor configuration management for the
// session service.
//
// Configuration is loaded from environment variables with defaults and
// validated with struct tags. CLI flags may override individual values.
//
// Configuration Sections:
//   - Server: HTTP listen address and CORS origins
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting
//   - Session: archive directory, seed directory, compression, digest
//   - Fetch: remote archive downloads (timeout, retries, circuit breaker)
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Addr())
package config
