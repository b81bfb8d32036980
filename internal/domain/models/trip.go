package models

import "time"

// Trip is one run of a bus along a route in one direction. Trips are never
// deleted, only deactivated; they anchor historical tickets.
type Trip struct {
	ID        int64      `json:"id"`
	BusID     int64      `json:"bus_id"`
	RouteID   int64      `json:"route_id"`
	Direction Direction  `json:"direction"`
	IsActive  bool       `json:"is_active"`
	StartedBy int64      `json:"started_by"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
