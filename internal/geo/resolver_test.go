package geo

import (
	"math"
	"testing"

	"farebox/internal/domain"
	"farebox/internal/domain/models"
)

// Halts roughly 1.1 km apart on a north-south line.
func lineHalts() models.HaltSequence {
	return models.HaltSequence{
		{Index: 0, Name: "Origin", Latitude: 6.9000, Longitude: 79.8600, Fare: 0},
		{Index: 1, Name: "Middle", Latitude: 6.9100, Longitude: 79.8600, Fare: 50},
		{Index: 2, Name: "End", Latitude: 6.9200, Longitude: 79.8600, Fare: 120},
	}
}

func TestResolveAtOriginExactly(t *testing.T) {
	halts := lineHalts()
	h, err := ResolveBoardingHalt(halts, Position{Latitude: 6.9000, Longitude: 79.8600})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Index != 0 {
		t.Fatalf("expected origin halt, got %q (index %d)", h.Name, h.Index)
	}
}

func TestResolveNearOrigin(t *testing.T) {
	// ~40 m north of the origin, inside the 50 m radius.
	halts := lineHalts()
	h, err := ResolveBoardingHalt(halts, Position{Latitude: 6.90036, Longitude: 79.8600})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Index != 0 {
		t.Fatalf("expected origin halt, got %q (index %d)", h.Name, h.Index)
	}
}

func TestResolveOnSegmentReturnsPreviousHalt(t *testing.T) {
	halts := lineHalts()
	tests := []struct {
		name string
		pos  Position
		want int
	}{
		{"between origin and middle", Position{Latitude: 6.9050, Longitude: 79.8600}, 0},
		{"between middle and end", Position{Latitude: 6.9150, Longitude: 79.8600}, 1},
		{"just past middle", Position{Latitude: 6.9105, Longitude: 79.8600}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ResolveBoardingHalt(halts, tt.pos)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Index != tt.want {
				t.Fatalf("expected halt %d, got %d", tt.want, h.Index)
			}
		})
	}
}

func TestResolveOffRouteFallsBackToNearest(t *testing.T) {
	halts := lineHalts()
	// ~4 km east of the middle halt: detour distance is way over the
	// segment slack, so the nearest halt wins.
	h, err := ResolveBoardingHalt(halts, Position{Latitude: 6.9100, Longitude: 79.8960})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Index != 1 {
		t.Fatalf("expected nearest halt 1, got %d", h.Index)
	}
}

func TestResolveNearestTieKeepsLowestIndex(t *testing.T) {
	// Degenerate data with two halts at the same point: strict < keeps the
	// first one found.
	halts := models.HaltSequence{
		{Index: 0, Name: "Twin A", Latitude: 6.9000, Longitude: 79.8600},
		{Index: 1, Name: "Twin B", Latitude: 6.9000, Longitude: 79.8600},
		{Index: 2, Name: "Far", Latitude: 6.9500, Longitude: 79.8600},
	}
	h, err := ResolveBoardingHalt(halts, Position{Latitude: 6.9040, Longitude: 79.8800})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Index != 0 {
		t.Fatalf("expected tie to keep halt 0, got %d", h.Index)
	}
}

func TestResolveRejectsInvalidCoordinates(t *testing.T) {
	halts := lineHalts()
	bad := []Position{
		{Latitude: math.NaN(), Longitude: 79.86},
		{Latitude: 6.9, Longitude: math.Inf(1)},
		{Latitude: 91, Longitude: 0},
		{Latitude: 0, Longitude: -181},
	}
	for _, pos := range bad {
		if _, err := ResolveBoardingHalt(halts, pos); !domain.IsValidation(err) {
			t.Fatalf("expected validation error for %+v, got %v", pos, err)
		}
	}
}

func TestResolveEmptySequenceIsInternalError(t *testing.T) {
	if _, err := ResolveBoardingHalt(nil, Position{Latitude: 6.9, Longitude: 79.86}); !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestDistanceSanity(t *testing.T) {
	// One degree of latitude is ~111.2 km.
	d := Distance(6.0, 79.86, 7.0, 79.86)
	if d < 110_000 || d > 112_500 {
		t.Fatalf("unexpected distance for 1 degree latitude: %.0f m", d)
	}
	if Distance(6.9, 79.86, 6.9, 79.86) != 0 {
		t.Fatal("distance to self should be zero")
	}
}
