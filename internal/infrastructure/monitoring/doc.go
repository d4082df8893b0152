/*
Package monitoring provides Prometheus metrics for the session service.

# Overview

Collectors are registered on a private registry owned by Metrics, which
tracks HTTP requests, session saves and restores, archive sizes, items
skipped while writing, live workspace sizes and event stream traffic.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer()
	// ... save ...
	metrics.RecordSave(timer.Elapsed(), report.Bytes, skipped)
*/
package monitoring
