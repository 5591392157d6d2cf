package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/duynhne/advocate-service/config"
)

func TestLoggingMiddleware_TraceIDPropagation(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(LoggingMiddleware(zap.New(core)))
	r.GET("/api/v1/advocates", func(c *gin.Context) {
		GetLoggerFromGinContext(c).Info("handler")
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		value  string
		want   string
	}{
		{
			name:   "traceparent",
			header: TraceParentHeader,
			value:  "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:   "4bf92f3577b34da6a3ce929d0e0e4736",
		},
		{name: "x-trace-id", header: TraceIDHeader, value: "abc123", want: "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/advocates", nil)
			req.Header.Set(tt.header, tt.value)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Header().Get(TraceIDHeader))
		})
	}

	handlerLogs := logs.FilterMessage("handler").All()
	require.Len(t, handlerLogs, 2)
	assert.Equal(t, "abc123", handlerLogs[1].ContextMap()["trace_id"])

	requestLogs := logs.FilterMessage("HTTP request").All()
	require.Len(t, requestLogs, 2)
	assert.Equal(t, "/api/v1/advocates", requestLogs[0].ContextMap()["route"])
}

func TestGetTraceID_Generated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set(TraceParentHeader, "garbage")

	id := GetTraceID(c)
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, GetTraceID(c))
}

func TestGetLoggerFromGinContext_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetLoggerFromGinContext(c))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger(config.LoggingConfig{Level: "WARN", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger(config.LoggingConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
}
