package handlers

import (
	"time"

	"farebox/internal/domain/models"
	"farebox/internal/repositories"
)

// TicketView is the commuter- and operator-facing projection of a ticket,
// with route and bus context resolved. Fares stay in minor units.
type TicketView struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`

	RouteNumber string `json:"route_number"`
	RouteName   string `json:"route_name"`
	BusCode     string `json:"bus_code"`
	BusRegistration string `json:"bus_registration"`
	Direction   string `json:"direction"`

	BoardingHalt    string  `json:"boarding_halt"`
	DestinationHalt *string `json:"destination_halt,omitempty"`

	AdultCount int `json:"adult_count"`
	ChildCount int `json:"child_count"`

	BaseFare  int64 `json:"base_fare"`
	TotalFare int64 `json:"total_fare"`

	ScanCode  string     `json:"scan_code"`
	ExpiresAt time.Time  `json:"expires_at"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
}

// buildTicketView resolves trip, route and bus context for a ticket. Lookup
// failures degrade to an unadorned view rather than failing the read.
func buildTicketView(t models.Ticket) TicketView {
	v := TicketView{
		ID:         t.ID,
		Status:     string(t.Status),
		BoardingHalt: t.Boarding.Name,
		AdultCount: t.AdultCount,
		ChildCount: t.ChildCount,
		BaseFare:   t.BaseFare,
		TotalFare:  t.TotalFare,
		ScanCode:   t.ScanCode,
		ExpiresAt:  t.ExpiresAt,
		IssuedAt:   t.IssuedAt,
	}
	if t.Destination != nil {
		name := t.Destination.Name
		v.DestinationHalt = &name
	}

	trip, err := (repositories.TripRepository{}).GetByID(t.TripID)
	if err != nil {
		return v
	}
	v.Direction = string(trip.Direction)

	if route, err := (repositories.RouteRepository{}).GetByID(trip.RouteID); err == nil {
		v.RouteNumber = route.RouteNumber
		v.RouteName = route.Name
	}
	if bus, err := (repositories.BusRepository{}).GetByID(trip.BusID); err == nil {
		v.BusCode = bus.Code
		v.BusRegistration = bus.Registration
	}
	return v
}
