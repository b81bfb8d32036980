package services

import (
	"strconv"

	"farebox/internal/domain"
	"farebox/internal/domain/models"
	"farebox/internal/metrics"
	"farebox/internal/repositories"
	"farebox/internal/utils"
)

// TripService starts and ends bus trips. A trip is the prerequisite for any
// ticket; one active trip per bus at a time.
type TripService struct {
	Buses  repositories.BusRepository
	Routes repositories.RouteRepository
	Trips  repositories.TripRepository

	Metrics   *metrics.Collector
	RequestID string
}

// Start activates a trip for the bus in the given direction. The bus's
// route must be ACTIVE and carry halts for that direction.
func (s TripService) Start(operatorID, busID int64, direction models.Direction) (models.Trip, error) {
	if operatorID <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "operator_id", Msg: "operator is required"}
	}

	bus, err := s.Buses.GetByID(busID)
	if err != nil {
		return models.Trip{}, err
	}

	route, err := s.Routes.GetByID(bus.RouteID)
	if err != nil {
		return models.Trip{}, err
	}
	if route.Status != models.RouteActive {
		return models.Trip{}, domain.ConflictError{Resource: "route", Msg: "route is not active"}
	}
	// Fail fast on misconfigured halt data before any ticket can reach it.
	if _, err := route.HaltsForDirection(direction); err != nil {
		return models.Trip{}, err
	}

	trip, err := s.Trips.StartGuarded(models.Trip{
		BusID:     bus.ID,
		RouteID:   route.ID,
		Direction: direction,
		StartedBy: operatorID,
	})
	if err != nil {
		return models.Trip{}, err
	}

	if s.Metrics != nil {
		s.Metrics.TripsStarted.Inc()
	}
	utils.LogEvent(s.RequestID, "trip", "start",
		"trip_id="+strconv.FormatInt(trip.ID, 10)+" bus="+bus.Code+" direction="+string(direction))
	return trip, nil
}

// End deactivates the bus's running trip and stamps the end time.
func (s TripService) End(operatorID, busID int64) (models.Trip, error) {
	if operatorID <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "operator_id", Msg: "operator is required"}
	}

	trip, err := s.Trips.End(busID)
	if err != nil {
		return models.Trip{}, err
	}

	if s.Metrics != nil {
		s.Metrics.TripsEnded.Inc()
	}
	utils.LogEvent(s.RequestID, "trip", "end", "trip_id="+strconv.FormatInt(trip.ID, 10))
	return trip, nil
}

// ActiveByBusCode resolves a bus QR code to its running trip.
func (s TripService) ActiveByBusCode(code string) (models.Trip, error) {
	return s.Trips.GetActiveByBusCode(code)
}
