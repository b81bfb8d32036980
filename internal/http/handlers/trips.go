package handlers

import (
	"net/http"

	"farebox/internal/domain/models"
	"farebox/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type startTripRequest struct {
	BusID     int64  `json:"bus_id"`
	Direction string `json:"direction"`
}

// POST /api/trips/start
func StartTrip(c *gin.Context) {
	var req startTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	direction, err := models.ParseDirection(req.Direction)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	trip, err := tripService(c).Start(middleware.SubjectID(c), req.BusID, direction)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}

type endTripRequest struct {
	BusID int64 `json:"bus_id"`
}

// POST /api/trips/end
func EndTrip(c *gin.Context) {
	var req endTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	trip, err := tripService(c).End(middleware.SubjectID(c), req.BusID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// GET /api/trips/active/:busCode
func GetActiveTripByBusCode(c *gin.Context) {
	trip, err := tripService(c).ActiveByBusCode(c.Param("busCode"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}
