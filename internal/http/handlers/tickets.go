package handlers

import (
	"net/http"
	"strconv"

	"farebox/internal/geo"
	"farebox/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type scanRequest struct {
	BusCode   string  `json:"bus_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// POST /api/tickets/scan
func ScanTicket(c *gin.Context) {
	var req scanRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := ticketService(c)
	ticket, err := svc.Scan(middleware.SubjectID(c), req.BusCode, geo.Position{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticket": ticket, "view": buildTicketView(ticket)})
}

// GET /api/tickets/active
func GetActiveTicket(c *gin.Context) {
	ticket, err := ticketService(c).Active(middleware.SubjectID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket, "view": buildTicketView(ticket)})
}

// GET /api/tickets/history?before=<id>&limit=<n>
func GetTicketHistory(c *gin.Context) {
	before, _ := strconv.ParseInt(c.Query("before"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	tickets, err := ticketService(c).History(middleware.SubjectID(c), before, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	var nextBefore int64
	if len(tickets) > 0 {
		nextBefore = tickets[len(tickets)-1].ID
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "next_before": nextBefore})
}

// GET /api/tickets/:id
func GetTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := ticketService(c).Get(middleware.SubjectID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket, "view": buildTicketView(ticket)})
}

// GET /api/tickets/:id/halts
func GetRemainingHalts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	halts, err := ticketService(c).RemainingHalts(middleware.SubjectID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"halts": halts})
}

type destinationRequest struct {
	HaltIndex *int `json:"halt_index"`
}

// PUT /api/tickets/:id/destination
func SelectDestination(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req destinationRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.HaltIndex == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "halt_index is required", nil)
		return
	}

	ticket, err := ticketService(c).SelectDestination(middleware.SubjectID(c), id, *req.HaltIndex)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

type passengersRequest struct {
	AdultCount *int `json:"adult_count"`
	ChildCount *int `json:"child_count"`
}

// PUT /api/tickets/:id/passengers
func SetPassengers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req passengersRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.AdultCount == nil || req.ChildCount == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "adult_count and child_count are required", nil)
		return
	}

	ticket, err := ticketService(c).SetPassengers(middleware.SubjectID(c), id, *req.AdultCount, *req.ChildCount)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// POST /api/tickets/:id/fare
func ComputeFare(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := ticketService(c).ComputeFare(middleware.SubjectID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ticket":     ticket,
		"base_fare":  ticket.BaseFare,
		"total_fare": ticket.TotalFare,
	})
}

// POST /api/tickets/:id/confirm
func ConfirmTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := ticketService(c).Confirm(middleware.SubjectID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket, "view": buildTicketView(ticket)})
}

// POST /api/tickets/:id/cancel
func CancelTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := ticketService(c).Cancel(middleware.SubjectID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}
