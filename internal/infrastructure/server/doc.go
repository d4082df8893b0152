// Package server assembles the session server: registries, session
// manager and service, seeding, middleware, REST handlers and the event
// stream, all configured from config.Config.
package server
