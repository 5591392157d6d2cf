package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/advocate-service/config"
)

func TestShouldTrace(t *testing.T) {
	assert.False(t, shouldTrace("/health"))
	assert.False(t, shouldTrace("/metrics"))
	assert.True(t, shouldTrace("/api/v1/advocates"))
	assert.True(t, shouldTrace("/admin"))
}

func TestInitTracing_Disabled(t *testing.T) {
	_, err := InitTracing(&config.Config{Tracing: config.TracingConfig{Enabled: false}})
	require.Error(t, err)

	_, err = InitTracing(&config.Config{Tracing: config.TracingConfig{Enabled: true, Endpoint: "collector:4318", SampleRate: 2}})
	require.Error(t, err)
}

func TestStartSpan_WithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "advocate.test")
	defer span.End()
	assert.NotNil(t, ctx)
	require.NoError(t, ShutdownTracing(context.Background()))
}

func TestTracingMiddleware_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(TracingMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/advocates", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/api/v1/advocates"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
