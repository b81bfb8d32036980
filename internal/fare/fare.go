// Package fare computes ticket amounts. All money is int64 in the currency's
// minor unit; nothing here touches floating point.
package fare

import (
	"fmt"

	"farebox/internal/domain"
	"farebox/internal/domain/models"
)

// Quote is the priced result for one ticket.
type Quote struct {
	BaseFare  int64 `json:"base_fare"`
	TotalFare int64 `json:"total_fare"`
}

// Calculate prices a trip from boarding to destination for the given party.
//
// The tariff is keyed by distance traveled: advancing k halts from any
// boarding point costs halts[k].Fare, not the destination's absolute
// cumulative fare. Children ride at half the base fare, truncated to the
// minor unit.
func Calculate(halts models.HaltSequence, boarding, destination models.Halt, adults, children int) (Quote, error) {
	if adults < 0 || children < 0 {
		return Quote{}, domain.ValidationError{Field: "passengers", Msg: "counts cannot be negative"}
	}
	if adults+children < 1 {
		return Quote{}, domain.ValidationError{Field: "passengers", Msg: "at least one passenger required"}
	}

	traveled := destination.Index - boarding.Index
	if traveled <= 0 {
		return Quote{}, domain.ConflictError{Resource: "destination", Msg: "destination must be after the boarding halt"}
	}
	if traveled >= len(halts) {
		return Quote{}, domain.InternalError{Msg: fmt.Sprintf("halts traveled %d outside tariff table of %d halts", traveled, len(halts))}
	}

	base := halts[traveled].Fare
	total := base*int64(adults) + (base/2)*int64(children)
	return Quote{BaseFare: base, TotalFare: total}, nil
}
