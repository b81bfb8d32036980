package handlers

import (
	"net/http"
	"strconv"

	"farebox/internal/metrics"
	"farebox/internal/services"

	"farebox/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

var collector *metrics.Collector

// SetMetrics shares the engine's collector with every handler-built service.
func SetMetrics(c *metrics.Collector) {
	collector = c
}

// ticketService assembles a per-request service value. Repositories fall
// back to the shared DB handle themselves.
func ticketService(c *gin.Context) services.TicketService {
	return services.TicketService{
		Metrics:   collector,
		RequestID: middleware.GetRequestID(c),
	}
}

func tripService(c *gin.Context) services.TripService {
	return services.TripService{
		Metrics:   collector,
		RequestID: middleware.GetRequestID(c),
	}
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload", err.Error())
		return false
	}
	return true
}

// pathID parses a numeric :id-style path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid "+name, nil)
		return 0, false
	}
	return id, true
}
