package v1

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/advocate-service/internal/core/domain"
	logicv1 "github.com/duynhne/advocate-service/internal/logic/v1"
	"github.com/duynhne/advocate-service/middleware"
)

// Client-facing error messages
const (
	msgMissingFields     = "All fields are required"
	msgInvalidPhone      = "Phone number must be a valid number"
	msgInvalidYears      = "Years of experience must be a positive integer"
	msgInvalidBody       = "Invalid request body"
	msgCreateFailed      = "Failed to create advocate"
	msgListFailed        = "Failed to fetch advocates"
	msgStoreNotReachable = "Record store not reachable"
)

// AdvocateHandler handles HTTP requests for advocate operations
type AdvocateHandler struct {
	service *logicv1.AdvocateService
}

// NewAdvocateHandler creates a new advocate handler
func NewAdvocateHandler(service *logicv1.AdvocateService) *AdvocateHandler {
	return &AdvocateHandler{service: service}
}

// RegisterRoutes mounts the versioned API and the legacy paths used by the
// original frontend. writeMiddleware guards only the create routes.
func RegisterRoutes(r gin.IRouter, h *AdvocateHandler, writeMiddleware ...gin.HandlerFunc) {
	create := append(append([]gin.HandlerFunc{}, writeMiddleware...), h.CreateAdvocate)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/advocates", h.ListAdvocates)
		apiV1.GET("/advocates/options", h.GetOptions)
		apiV1.POST("/advocates", create...)
	}

	legacy := r.Group("/api")
	{
		legacy.GET("/advocates", h.ListAdvocates)
		legacy.POST("/advocates/create", create...)
	}
}

// ListAdvocates handles GET /api/v1/advocates?search=&page=&limit=
func (h *AdvocateHandler) ListAdvocates(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	zapLogger := middleware.GetLoggerFromGinContext(c)

	q := domain.ParseSearchQuery(c.Query("search"), c.Query("page"), c.Query("limit"))

	page, err := h.service.ListAdvocates(ctx, q)
	if err != nil {
		span.RecordError(err)
		zapLogger.Error("Failed to list advocates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgListFailed})
		return
	}

	zapLogger.Debug("Advocates listed",
		zap.Int("page", q.Page),
		zap.Int("limit", q.Limit),
		zap.Int("total", page.Pagination.Total),
	)
	c.JSON(http.StatusOK, page)
}

// CreateAdvocate handles POST /api/v1/advocates
func (h *AdvocateHandler) CreateAdvocate(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	zapLogger := middleware.GetLoggerFromGinContext(c)

	var req domain.CreateAdvocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		zapLogger.Warn("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	advocate, err := h.service.CreateAdvocate(ctx, req)
	if err != nil {
		if msg, ok := ValidationMessage(err); ok {
			span.SetAttributes(attribute.Bool("request.valid", false))
			zapLogger.Info("Advocate rejected", zap.String("reason", msg))
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		span.RecordError(err)
		zapLogger.Error("Failed to create advocate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgCreateFailed})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))
	zapLogger.Info("Advocate created", zap.Int64("advocate_id", advocate.ID))
	c.JSON(http.StatusCreated, gin.H{"data": advocate})
}

// GetOptions handles GET /api/v1/advocates/options
func (h *AdvocateHandler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.service.Options()})
}

// ReadyHandler returns 503 once shutdown has started or when the record store
// cannot be reached, so that traffic drains before the HTTP server stops.
func (h *AdvocateHandler) ReadyHandler(isShuttingDown *atomic.Bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		if err := h.service.Ready(c.Request.Context()); err != nil {
			middleware.GetLoggerFromGinContext(c).Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": msgStoreNotReachable})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ValidationMessage maps create validation errors to client messages
func ValidationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return msgMissingFields, true
	case errors.Is(err, domain.ErrInvalidPhoneNumber):
		return msgInvalidPhone, true
	case errors.Is(err, domain.ErrInvalidYearsOfExperience):
		return msgInvalidYears, true
	default:
		return "", false
	}
}
