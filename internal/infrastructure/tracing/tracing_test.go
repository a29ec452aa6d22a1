package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartSpanReusesTraceID(t *testing.T) {
	tracer := New("test", nil)
	defer tracer.Close()

	first, ctx := tracer.StartSpan(context.Background(), "outer")
	second, _ := tracer.StartSpan(ctx, "inner")

	assert.Equal(t, first.TraceID, second.TraceID)
	assert.NotEqual(t, first.SpanID, second.SpanID)
	_, err := uuid.Parse(string(first.TraceID))
	assert.NoError(t, err)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("test", zap.New(core))

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/sessions/:id", func(c *gin.Context) {
		c.String(http.StatusOK, string(GetTraceID(c.Request.Context())))
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/sess_1", nil)
	req.Header.Set(HeaderRequestID, "client-request-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "client-request-42", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "client-request-42", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/sessions/sess_2", nil)
	req.Header.Set(HeaderRequestID, "bad id!")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	generated := w.Header().Get(HeaderRequestID)
	assert.NotEqual(t, "bad id!", generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	tracer.Close()
	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "sess_1", entries[0].ContextMap()["session_id"])
	assert.Equal(t, "GET /sessions/:id", entries[0].ContextMap()["operation"])
}
