/*
Package monitoring provides Prometheus metrics for the portfolio backend.

# Overview

Metrics are registered on a caller-supplied registry so tests and the
server each own theirs. Metrics also satisfies session.Observer, which
is how sessions, tabs, crashes and script windows are counted.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	manager := session.NewManager(catalog, max, session.WithObserver(metrics))
*/
package monitoring
