package services

import (
	"strconv"
	"strings"
	"time"

	"farebox/internal/domain"
	"farebox/internal/domain/models"
	"farebox/internal/fare"
	"farebox/internal/geo"
	"farebox/internal/metrics"
	"farebox/internal/repositories"
	"farebox/internal/utils"

	"github.com/google/uuid"
)

// TicketService owns the ticket state machine: PENDING is the only mutable
// state; CONFIRMED, CANCELLED and EXPIRED are terminal. Every load path
// lazily expires stale PENDING tickets before acting, so there is no
// background sweeper.
type TicketService struct {
	Tickets repositories.TicketRepository
	Trips   repositories.TripRepository
	Routes  repositories.RouteRepository
	Wallets repositories.WalletRepository

	Metrics   *metrics.Collector
	RequestID string

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (s TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Scan opens a PENDING ticket for the commuter on the bus's active trip,
// resolving the boarding halt from the GPS fix. Rejects when an unexpired
// PENDING ticket already exists.
func (s TicketService) Scan(commuterID int64, busCode string, pos geo.Position) (models.Ticket, error) {
	if commuterID <= 0 {
		return models.Ticket{}, domain.ValidationError{Field: "commuter_id", Msg: "commuter is required"}
	}
	if !pos.Valid() {
		return models.Ticket{}, domain.ValidationError{Field: "position", Msg: "invalid coordinates"}
	}

	trip, err := s.Trips.GetActiveByBusCode(busCode)
	if err != nil {
		return models.Ticket{}, err
	}

	halts, err := s.haltsForTrip(trip)
	if err != nil {
		return models.Ticket{}, err
	}

	boarding, err := geo.ResolveBoardingHalt(halts, pos)
	if err != nil {
		return models.Ticket{}, err
	}

	now := s.now()
	ticket := models.Ticket{
		CommuterID: commuterID,
		TripID:     trip.ID,
		Boarding:   boarding,
		AdultCount: 1,
		ChildCount: 0,
		ScanCode:   uuid.NewString(),
		ExpiresAt:  now.Add(models.PendingTicketTTL),
	}

	created, expired, err := s.Tickets.CreateGuarded(ticket, now)
	if s.Metrics != nil && expired > 0 {
		s.Metrics.TicketsExpired.Add(float64(expired))
	}
	if err != nil {
		return models.Ticket{}, err
	}
	if s.Metrics != nil {
		s.Metrics.TicketsCreated.Inc()
	}

	utils.LogEvent(s.RequestID, "ticket", "scan",
		"commuter_id="+strconv.FormatInt(commuterID, 10)+" trip_id="+strconv.FormatInt(trip.ID, 10)+" boarding="+boarding.Name)
	return created, nil
}

// Get returns the commuter's ticket, lazily expiring it first.
func (s TicketService) Get(commuterID, ticketID int64) (models.Ticket, error) {
	return s.loadOwned(commuterID, ticketID)
}

// Active returns the commuter's current PENDING-and-unexpired ticket.
func (s TicketService) Active(commuterID int64) (models.Ticket, error) {
	return s.Tickets.FindActiveForCommuter(commuterID, s.now())
}

// History lists the commuter's settled tickets, cursor-paginated newest
// first.
func (s TicketService) History(commuterID, beforeID int64, limit int) ([]models.Ticket, error) {
	return s.Tickets.ListPast(commuterID, beforeID, limit)
}

// RemainingHalts lists the valid destination choices: every halt strictly
// after the boarding halt in the trip's direction.
func (s TicketService) RemainingHalts(commuterID, ticketID int64) (models.HaltSequence, error) {
	t, err := s.loadOwned(commuterID, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requirePending(t); err != nil {
		return nil, err
	}

	halts, err := s.haltsForTicket(t)
	if err != nil {
		return nil, err
	}
	return halts.After(t.Boarding.Index), nil
}

// SelectDestination stores the chosen halt. The halt must be a member of
// the sequence strictly after the boarding halt.
func (s TicketService) SelectDestination(commuterID, ticketID int64, haltIndex int) (models.Ticket, error) {
	t, err := s.loadOwned(commuterID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := requirePending(t); err != nil {
		return models.Ticket{}, err
	}

	halts, err := s.haltsForTicket(t)
	if err != nil {
		return models.Ticket{}, err
	}
	if haltIndex < 0 || haltIndex >= len(halts) {
		return models.Ticket{}, domain.ValidationError{Field: "halt_index", Msg: "unknown halt"}
	}
	if haltIndex <= t.Boarding.Index {
		return models.Ticket{}, domain.ConflictError{Resource: "destination", Msg: "destination must be after the boarding halt"}
	}

	dest := halts[haltIndex]
	now := s.now()
	if err := s.Tickets.UpdateDestination(t.ID, dest, now); err != nil {
		return models.Ticket{}, err
	}

	t.Destination = &dest
	t.BaseFare = 0
	t.TotalFare = 0
	t.UpdatedAt = now
	utils.LogEvent(s.RequestID, "ticket", "destination",
		"ticket_id="+strconv.FormatInt(t.ID, 10)+" halt="+dest.Name)
	return t, nil
}

// SetPassengers updates the party size. At least one passenger must ride.
func (s TicketService) SetPassengers(commuterID, ticketID int64, adults, children int) (models.Ticket, error) {
	if adults < 0 || children < 0 {
		return models.Ticket{}, domain.ValidationError{Field: "passengers", Msg: "counts cannot be negative"}
	}
	if adults+children < 1 {
		return models.Ticket{}, domain.ValidationError{Field: "passengers", Msg: "at least one passenger required"}
	}
	// Sanity cap; bus capacity is not modeled.
	if adults+children > 100 {
		return models.Ticket{}, domain.ValidationError{Field: "passengers", Msg: "party too large"}
	}

	t, err := s.loadOwned(commuterID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := requirePending(t); err != nil {
		return models.Ticket{}, err
	}

	now := s.now()
	if err := s.Tickets.UpdateCounts(t.ID, adults, children, now); err != nil {
		return models.Ticket{}, err
	}
	t.AdultCount = adults
	t.ChildCount = children
	t.BaseFare = 0
	t.TotalFare = 0
	t.UpdatedAt = now
	return t, nil
}

// ComputeFare prices the ticket and persists the amounts for display
// consistency. Idempotent; callable any time after the destination is set.
func (s TicketService) ComputeFare(commuterID, ticketID int64) (models.Ticket, error) {
	t, err := s.loadOwned(commuterID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := requirePending(t); err != nil {
		return models.Ticket{}, err
	}

	quote, err := s.quote(t)
	if err != nil {
		return models.Ticket{}, err
	}

	now := s.now()
	if err := s.Tickets.UpdateFare(t.ID, quote.BaseFare, quote.TotalFare, now); err != nil {
		return models.Ticket{}, err
	}
	t.BaseFare = quote.BaseFare
	t.TotalFare = quote.TotalFare
	t.UpdatedAt = now
	return t, nil
}

// Confirm debits the wallet and settles the ticket. On insufficient balance
// the ticket stays PENDING untouched so the commuter can top up and retry.
func (s TicketService) Confirm(commuterID, ticketID int64) (models.Ticket, error) {
	t, err := s.loadOwned(commuterID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := requirePending(t); err != nil {
		return models.Ticket{}, err
	}

	quote, err := s.quote(t)
	if err != nil {
		return models.Ticket{}, err
	}

	now := s.now()
	if err := s.Tickets.UpdateFare(t.ID, quote.BaseFare, quote.TotalFare, now); err != nil {
		return models.Ticket{}, err
	}

	if err := s.Wallets.Debit(commuterID, quote.TotalFare); err != nil {
		if s.Metrics != nil && domain.IsPayment(err) {
			s.Metrics.WalletRejections.Inc()
		}
		return models.Ticket{}, err
	}

	if err := s.Tickets.MarkConfirmed(t.ID, now); err != nil {
		// The debit went through but the ticket did not settle; surface the
		// error for client retry rather than reversing money here.
		return models.Ticket{}, err
	}

	if s.Metrics != nil {
		s.Metrics.WalletDebits.Inc()
		s.Metrics.TicketsConfirmed.Inc()
		s.Metrics.FareCharged.Observe(float64(quote.TotalFare))
	}

	t.BaseFare = quote.BaseFare
	t.TotalFare = quote.TotalFare
	t.Status = models.TicketConfirmed
	t.IssuedAt = &now
	t.UpdatedAt = now
	utils.LogEvent(s.RequestID, "ticket", "confirm",
		"ticket_id="+strconv.FormatInt(t.ID, 10)+" total_fare="+strconv.FormatInt(quote.TotalFare, 10))
	return t, nil
}

// Cancel abandons a PENDING ticket. Irreversible.
func (s TicketService) Cancel(commuterID, ticketID int64) (models.Ticket, error) {
	t, err := s.loadOwned(commuterID, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := requirePending(t); err != nil {
		return models.Ticket{}, err
	}

	now := s.now()
	if err := s.Tickets.MarkCancelled(t.ID, now); err != nil {
		return models.Ticket{}, err
	}
	if s.Metrics != nil {
		s.Metrics.TicketsCancelled.Inc()
	}

	t.Status = models.TicketCancelled
	t.CancelledAt = &now
	t.UpdatedAt = now
	return t, nil
}

// Verify is the operator-side lookup by scan code. Read-only apart from
// lazy expiry.
func (s TicketService) Verify(scanCode string) (models.Ticket, error) {
	t, err := s.Tickets.GetByScanCode(scanCode)
	if err != nil {
		return models.Ticket{}, err
	}
	return s.expireIfStale(t)
}

// loadOwned fetches the ticket, enforces ownership and applies lazy expiry.
// A ticket belonging to someone else reads as not found; operators verify
// through the scan-code path instead.
func (s TicketService) loadOwned(commuterID, ticketID int64) (models.Ticket, error) {
	t, err := s.Tickets.GetByID(ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if t.CommuterID != commuterID {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
	}
	return s.expireIfStale(t)
}

func (s TicketService) expireIfStale(t models.Ticket) (models.Ticket, error) {
	now := s.now()
	if !t.ExpiredBy(now) {
		return t, nil
	}
	if err := s.Tickets.MarkExpired(t.ID, now); err != nil {
		return models.Ticket{}, err
	}
	if s.Metrics != nil {
		s.Metrics.TicketsExpired.Inc()
	}
	t.Status = models.TicketExpired
	t.UpdatedAt = now
	return t, nil
}

func (s TicketService) quote(t models.Ticket) (fare.Quote, error) {
	if t.Destination == nil {
		return fare.Quote{}, domain.ValidationError{Field: "destination", Msg: "select a destination first"}
	}
	if t.AdultCount+t.ChildCount < 1 {
		return fare.Quote{}, domain.ValidationError{Field: "passengers", Msg: "set passenger counts first"}
	}

	halts, err := s.haltsForTicket(t)
	if err != nil {
		return fare.Quote{}, err
	}
	return fare.Calculate(halts, t.Boarding, *t.Destination, t.AdultCount, t.ChildCount)
}

func (s TicketService) haltsForTicket(t models.Ticket) (models.HaltSequence, error) {
	trip, err := s.Trips.GetByID(t.TripID)
	if err != nil {
		return nil, err
	}
	return s.haltsForTrip(trip)
}

func (s TicketService) haltsForTrip(trip models.Trip) (models.HaltSequence, error) {
	route, err := s.Routes.GetByID(trip.RouteID)
	if err != nil {
		return nil, err
	}
	return route.HaltsForDirection(trip.Direction)
}

func requirePending(t models.Ticket) error {
	if t.Status == models.TicketPending {
		return nil
	}
	return domain.ConflictError{Resource: "ticket", Msg: "ticket is " + strings.ToLower(string(t.Status))}
}
