package fare

import (
	"testing"

	"farebox/internal/domain"
	"farebox/internal/domain/models"
)

func tariff() models.HaltSequence {
	return models.HaltSequence{
		{Index: 0, Name: "A", Fare: 0},
		{Index: 1, Name: "B", Fare: 50},
		{Index: 2, Name: "C", Fare: 120},
		{Index: 3, Name: "D", Fare: 120},
		{Index: 4, Name: "E", Fare: 200},
	}
}

func TestCalculateRoute138Scenario(t *testing.T) {
	halts := tariff()[:3]
	q, err := Calculate(halts, halts[0], halts[2], 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.BaseFare != 120 {
		t.Fatalf("base fare = %d, want 120", q.BaseFare)
	}
	if q.TotalFare != 300 {
		t.Fatalf("total fare = %d, want 300 (120*2 + 60*1)", q.TotalFare)
	}
}

func TestCalculateUsesDistanceTraveledNotDestinationFare(t *testing.T) {
	halts := tariff()
	// Boarding at C(2), riding to E(4): two halts traveled, so the fare is
	// halts[2].Fare, not E's cumulative 200.
	q, err := Calculate(halts, halts[2], halts[4], 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.BaseFare != 120 {
		t.Fatalf("base fare = %d, want tariff-by-distance 120", q.BaseFare)
	}
}

func TestCalculateMonotonicInDistance(t *testing.T) {
	halts := tariff()
	prev := int64(-1)
	for d := 1; d < len(halts); d++ {
		q, err := Calculate(halts, halts[0], halts[d], 1, 0)
		if err != nil {
			t.Fatalf("distance %d: %v", d, err)
		}
		if q.TotalFare < prev {
			t.Fatalf("fare decreased at distance %d: %d < %d", d, q.TotalFare, prev)
		}
		prev = q.TotalFare
	}
}

func TestCalculateChildHalfFareTruncates(t *testing.T) {
	halts := models.HaltSequence{
		{Index: 0, Name: "A", Fare: 0},
		{Index: 1, Name: "B", Fare: 55},
	}
	q, err := Calculate(halts, halts[0], halts[1], 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TotalFare != 27 {
		t.Fatalf("child fare = %d, want 27 (55/2 truncated)", q.TotalFare)
	}
}

func TestCalculateRejectsDestinationAtOrBeforeBoarding(t *testing.T) {
	halts := tariff()
	for _, dest := range []models.Halt{halts[0], halts[1], halts[2]} {
		_, err := Calculate(halts, halts[2], dest, 1, 0)
		if !domain.IsConflict(err) {
			t.Fatalf("destination %q: expected conflict, got %v", dest.Name, err)
		}
	}
}

func TestCalculateRejectsEmptyParty(t *testing.T) {
	halts := tariff()
	if _, err := Calculate(halts, halts[0], halts[1], 0, 0); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := Calculate(halts, halts[0], halts[1], -1, 2); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for negative count, got %v", err)
	}
}
