package models

import "time"

type TicketStatus string

const (
	TicketPending   TicketStatus = "PENDING"
	TicketConfirmed TicketStatus = "CONFIRMED"
	TicketCancelled TicketStatus = "CANCELLED"
	TicketExpired   TicketStatus = "EXPIRED"
)

// PendingTicketTTL is how long a commuter has to complete a scanned ticket.
const PendingTicketTTL = 15 * time.Minute

// Ticket is the core mutable entity. Halt fields are snapshots taken at
// selection time so a later route edit cannot change an issued ticket.
type Ticket struct {
	ID         int64        `json:"id"`
	CommuterID int64        `json:"commuter_id"`
	TripID     int64        `json:"trip_id"`

	Boarding    Halt  `json:"boarding"`
	Destination *Halt `json:"destination,omitempty"`

	AdultCount int `json:"adult_count"`
	ChildCount int `json:"child_count"`

	BaseFare  int64 `json:"base_fare"`
	TotalFare int64 `json:"total_fare"`

	Status   TicketStatus `json:"status"`
	ScanCode string       `json:"scan_code"`

	ExpiresAt   time.Time  `json:"expires_at"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ExpiredBy reports whether a still-PENDING ticket has outlived its window.
// Terminal tickets never expire retroactively.
func (t Ticket) ExpiredBy(now time.Time) bool {
	return t.Status == TicketPending && now.After(t.ExpiresAt)
}
