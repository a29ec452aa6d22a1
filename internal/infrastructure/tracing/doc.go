/*
Package tracing gives every HTTP request a trace and logs it as a span.

# Overview

A request carries its trace ID in X-Request-ID. Incoming IDs are kept when
they look sane, otherwise a UUID is generated. The span is logged with zap
on a background collector so request handling never waits on logging.

# Usage

	tracer := tracing.New("portfolio", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Inside handlers
	traceID := tracing.GetTraceID(c.Request.Context())
*/
package tracing
