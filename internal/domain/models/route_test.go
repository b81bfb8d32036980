package models

import (
	"testing"
	"time"

	"farebox/internal/domain"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", s, err)
	}
	return ts
}

func validSequence() HaltSequence {
	return HaltSequence{
		{Index: 0, Name: "A", Latitude: 6.90, Longitude: 79.86, Fare: 0},
		{Index: 1, Name: "B", Latitude: 6.91, Longitude: 79.86, Fare: 50},
		{Index: 2, Name: "C", Latitude: 6.92, Longitude: 79.86, Fare: 120},
	}
}

func TestHaltSequenceValidate(t *testing.T) {
	if err := validSequence().Validate(); err != nil {
		t.Fatalf("valid sequence rejected: %v", err)
	}

	tests := []struct {
		name string
		hs   HaltSequence
	}{
		{"too short", HaltSequence{{Index: 0, Name: "A"}}},
		{"gap in indexes", HaltSequence{
			{Index: 0, Name: "A"}, {Index: 2, Name: "B", Fare: 10},
		}},
		{"decreasing fare", HaltSequence{
			{Index: 0, Name: "A", Fare: 100}, {Index: 1, Name: "B", Fare: 50},
		}},
		{"negative fare", HaltSequence{
			{Index: 0, Name: "A", Fare: -10}, {Index: 1, Name: "B", Fare: 0},
		}},
		{"unnamed halt", HaltSequence{
			{Index: 0, Name: "A"}, {Index: 1, Name: "  ", Fare: 10},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.hs.Validate(); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestHaltSequenceAfter(t *testing.T) {
	hs := validSequence()

	after := hs.After(0)
	if len(after) != 2 || after[0].Index != 1 {
		t.Fatalf("After(0) = %+v, want halts 1..2", after)
	}
	if got := hs.After(1); len(got) != 1 || got[0].Index != 2 {
		t.Fatalf("After(1) = %+v, want halt 2 only", got)
	}
	if got := hs.After(2); len(got) != 0 {
		t.Fatalf("After(last) should be empty, got %+v", got)
	}
	if got := hs.After(-1); len(got) != 0 {
		t.Fatalf("After(-1) should be empty, got %+v", got)
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"A": DirectionA, "a": DirectionA, " b ": DirectionB} {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Fatalf("ParseDirection(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"", "C", "AB", "up"} {
		if _, err := ParseDirection(in); !domain.IsValidation(err) {
			t.Fatalf("ParseDirection(%q): expected validation error, got %v", in, err)
		}
	}
}

func TestHaltsForDirectionFailsFast(t *testing.T) {
	r := Route{RouteNumber: "138", Halts: map[Direction]HaltSequence{DirectionA: validSequence()}}

	if _, err := r.HaltsForDirection(DirectionA); err != nil {
		t.Fatalf("configured direction rejected: %v", err)
	}
	// A known direction with no halts is a data-integrity fault.
	if _, err := r.HaltsForDirection(DirectionB); !domain.IsInternal(err) {
		t.Fatalf("expected internal error for unconfigured direction, got %v", err)
	}
	if _, err := r.HaltsForDirection(Direction("Z")); !domain.IsInternal(err) {
		t.Fatalf("expected internal error for bogus direction, got %v", err)
	}
}

func TestValidStatusChange(t *testing.T) {
	allowed := []struct{ from, to RouteStatus }{
		{RouteDraft, RouteActive},
		{RouteActive, RouteInactive},
		{RouteInactive, RouteActive},
		{RouteInactive, RouteDeleted},
	}
	for _, tt := range allowed {
		if !ValidStatusChange(tt.from, tt.to) {
			t.Fatalf("%s -> %s should be allowed", tt.from, tt.to)
		}
	}
	denied := []struct{ from, to RouteStatus }{
		{RouteDraft, RouteInactive},
		{RouteDraft, RouteDeleted},
		{RouteActive, RouteDeleted},
		{RouteActive, RouteDraft},
		{RouteDeleted, RouteActive},
	}
	for _, tt := range denied {
		if ValidStatusChange(tt.from, tt.to) {
			t.Fatalf("%s -> %s should be rejected", tt.from, tt.to)
		}
	}
}

func TestTicketExpiredBy(t *testing.T) {
	now := mustTime(t, "2026-01-10T12:00:00Z")
	pending := Ticket{Status: TicketPending, ExpiresAt: now.Add(-1)}
	if !pending.ExpiredBy(now) {
		t.Fatal("stale pending ticket should report expired")
	}
	fresh := Ticket{Status: TicketPending, ExpiresAt: now.Add(1)}
	if fresh.ExpiredBy(now) {
		t.Fatal("unexpired pending ticket should not report expired")
	}
	confirmed := Ticket{Status: TicketConfirmed, ExpiresAt: now.Add(-1)}
	if confirmed.ExpiredBy(now) {
		t.Fatal("terminal ticket must never expire retroactively")
	}
}
