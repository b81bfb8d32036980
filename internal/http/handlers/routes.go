package handlers

import (
	"net/http"

	"farebox/internal/domain/models"
	"farebox/internal/repositories"

	"github.com/gin-gonic/gin"
)

// Fleet-management surface. The ticketing core treats routes and buses as
// read-only once a trip exists; edits create new versions.

// GET /api/routes?status=ACTIVE
func GetRoutes(c *gin.Context) {
	status := models.RouteStatus(c.Query("status"))
	routes, err := (repositories.RouteRepository{}).List(status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// GET /api/routes/:id
func GetRouteByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	route, err := (repositories.RouteRepository{}).GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

type createRouteRequest struct {
	RouteNumber string        `json:"route_number"`
	Name        string        `json:"name"`
	BusType     string        `json:"bus_type"`
	HaltsA      []models.Halt `json:"halts_a"`
	HaltsB      []models.Halt `json:"halts_b"`
}

// POST /api/routes
func CreateRoute(c *gin.Context) {
	var req createRouteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.RouteNumber == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "route_number is required", nil)
		return
	}

	route, err := (repositories.RouteRepository{}).Create(models.Route{
		RouteNumber: req.RouteNumber,
		Name:        req.Name,
		BusType:     req.BusType,
		Halts: map[models.Direction]models.HaltSequence{
			models.DirectionA: req.HaltsA,
			models.DirectionB: req.HaltsB,
		},
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

type routeStatusRequest struct {
	Status string `json:"status"`
}

// PUT /api/routes/:id/status
func UpdateRouteStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req routeStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	route, err := (repositories.RouteRepository{}).UpdateStatus(id, models.RouteStatus(req.Status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// GET /api/buses
func GetBuses(c *gin.Context) {
	buses, err := (repositories.BusRepository{}).List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buses": buses})
}

type createBusRequest struct {
	Code         string `json:"code"`
	Registration string `json:"registration"`
	RouteID      int64  `json:"route_id"`
}

// POST /api/buses
func CreateBus(c *gin.Context) {
	var req createBusRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	bus, err := (repositories.BusRepository{}).Create(models.Bus{
		Code:         req.Code,
		Registration: req.Registration,
		RouteID:      req.RouteID,
		Status:       "IN_SERVICE",
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bus": bus})
}
