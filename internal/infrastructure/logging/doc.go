// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Components receive a named *zap.Logger from Component and never build
// their own; a nil logger passed to a component means zap.NewNop().
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	defer logger.Close()
//	svc := session.NewService(mgr, session.WithServiceLogger(logger.Component("session")))
package logging
