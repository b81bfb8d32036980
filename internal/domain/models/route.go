package models

import (
	"fmt"
	"strings"
	"time"

	"farebox/internal/domain"
)

// Direction is one of the two fixed traversal orders of a route's halts.
type Direction string

const (
	DirectionA Direction = "A"
	DirectionB Direction = "B"
)

// ParseDirection accepts "A"/"B" (case-insensitive) from request payloads.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return DirectionA, nil
	case "B":
		return DirectionB, nil
	default:
		return "", domain.ValidationError{Field: "direction", Msg: fmt.Sprintf("unknown direction %q", s)}
	}
}

type RouteStatus string

const (
	RouteDraft    RouteStatus = "DRAFT"
	RouteActive   RouteStatus = "ACTIVE"
	RouteInactive RouteStatus = "INACTIVE"
	RouteDeleted  RouteStatus = "DELETED"
)

// ValidStatusChange encodes the route lifecycle: DRAFT activates once,
// ACTIVE and INACTIVE flip freely, INACTIVE routes can be deleted.
func ValidStatusChange(from, to RouteStatus) bool {
	switch from {
	case RouteDraft:
		return to == RouteActive
	case RouteActive:
		return to == RouteInactive
	case RouteInactive:
		return to == RouteActive || to == RouteDeleted
	default:
		return false
	}
}

// Halt is a fixed stop along a route-direction. Fare is the cumulative fare
// in minor units to reach this halt from the sequence origin.
type Halt struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Fare      int64   `json:"fare"`
}

// HaltSequence is the immutable ordered halt list for one route-direction.
// It is validated once at load; code downstream may index it freely.
type HaltSequence []Halt

// Validate enforces the halt-sequence invariants: at least two halts,
// contiguous indexes from 0, and non-decreasing cumulative fares.
func (hs HaltSequence) Validate() error {
	if len(hs) < 2 {
		return domain.ValidationError{Field: "halts", Msg: "a direction needs at least two halts"}
	}
	for i, h := range hs {
		if h.Index != i {
			return domain.ValidationError{Field: "halts", Msg: fmt.Sprintf("halt %q has index %d, expected %d", h.Name, h.Index, i)}
		}
		if strings.TrimSpace(h.Name) == "" {
			return domain.ValidationError{Field: "halts", Msg: fmt.Sprintf("halt %d has no name", i)}
		}
		if h.Fare < 0 {
			return domain.ValidationError{Field: "halts", Msg: fmt.Sprintf("halt %q has negative fare", h.Name)}
		}
		if i > 0 && h.Fare < hs[i-1].Fare {
			return domain.ValidationError{Field: "halts", Msg: fmt.Sprintf("fare decreases at halt %q", h.Name)}
		}
	}
	return nil
}

// After returns the halts strictly after the given boarding index, i.e. the
// valid destination choices for a commuter boarding there.
func (hs HaltSequence) After(boardingIndex int) HaltSequence {
	if boardingIndex < 0 || boardingIndex >= len(hs)-1 {
		return HaltSequence{}
	}
	out := make(HaltSequence, len(hs)-boardingIndex-1)
	copy(out, hs[boardingIndex+1:])
	return out
}

// Route identifies a fixed service by route number and bus type. It owns one
// halt sequence per direction.
type Route struct {
	ID          int64       `json:"id"`
	RouteNumber string      `json:"route_number"`
	Name        string      `json:"name"`
	BusType     string      `json:"bus_type"`
	Status      RouteStatus `json:"status"`
	Halts       map[Direction]HaltSequence `json:"halts,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// HaltsForDirection resolves the halt table for one direction. A missing
// sequence for a known direction is a data-integrity fault, not user error.
func (r Route) HaltsForDirection(d Direction) (HaltSequence, error) {
	if d != DirectionA && d != DirectionB {
		return nil, domain.InternalError{Msg: fmt.Sprintf("route %s: unknown direction %q", r.RouteNumber, d)}
	}
	hs, ok := r.Halts[d]
	if !ok || len(hs) == 0 {
		return nil, domain.InternalError{Msg: fmt.Sprintf("route %s: no halts configured for direction %s", r.RouteNumber, d)}
	}
	return hs, nil
}
