package geo

import (
	"farebox/internal/domain"
	"farebox/internal/domain/models"
)

const (
	// Within this distance of the first halt the commuter is still at the
	// origin of the sequence.
	originRadiusMeters = 50.0

	// Detour slack under which a position counts as lying on a segment
	// between two consecutive halts.
	segmentSlackMeters = 100.0
)

// ResolveBoardingHalt infers where the commuter boarded from a GPS fix.
//
// Halts are physically ordered along the route, so the detour distance
// d(prev,pos)+d(pos,curr)-d(prev,curr) is a cheap proxy for "riding on this
// segment" without map-matching against road geometry. When the fix lies on
// a segment the more recently passed halt is the boarding halt. If no
// segment matches (GPS noise, off-route fix) the nearest halt wins, ties
// going to the lowest index.
func ResolveBoardingHalt(halts models.HaltSequence, pos Position) (models.Halt, error) {
	if len(halts) == 0 {
		return models.Halt{}, domain.InternalError{Msg: "empty halt sequence"}
	}
	if !pos.Valid() {
		return models.Halt{}, domain.ValidationError{Field: "position", Msg: "invalid coordinates"}
	}

	origin := halts[0]
	if Distance(pos.Latitude, pos.Longitude, origin.Latitude, origin.Longitude) < originRadiusMeters {
		return origin, nil
	}

	for i := 1; i < len(halts); i++ {
		prev, curr := halts[i-1], halts[i]
		detour := Distance(prev.Latitude, prev.Longitude, pos.Latitude, pos.Longitude) +
			Distance(pos.Latitude, pos.Longitude, curr.Latitude, curr.Longitude) -
			Distance(prev.Latitude, prev.Longitude, curr.Latitude, curr.Longitude)
		if detour < segmentSlackMeters {
			return prev, nil
		}
	}

	nearest := halts[0]
	best := Distance(pos.Latitude, pos.Longitude, nearest.Latitude, nearest.Longitude)
	for _, h := range halts[1:] {
		if d := Distance(pos.Latitude, pos.Longitude, h.Latitude, h.Longitude); d < best {
			best = d
			nearest = h
		}
	}
	return nearest, nil
}
