package tracing

import (
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderRequestID carries the trace ID in requests and responses
const HeaderRequestID = "X-Request-ID"

var validRequestID = regexp.MustCompile(`^[a-zA-Z0-9_-]{8,64}$`)

// HTTPMiddleware traces each request and echoes its ID in the response
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if incoming := c.GetHeader(HeaderRequestID); validRequestID.MatchString(incoming) {
			ctx = WithTraceID(ctx, TraceID(incoming))
		}

		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+c.FullPath())
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)
		if sid := c.Param("id"); sid != "" {
			span.SetTag("session_id", sid)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, string(span.TraceID))

		c.Next()

		span.Finish()
		span.SetStatus(c.Writer.Status())
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		tracer.Submit(span)
	}
}
