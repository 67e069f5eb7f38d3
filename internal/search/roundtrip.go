package search

import "github.com/cx-tal-miterani/flight-search/internal/models"

// RoundTrip pairs an outbound itinerary with a return itinerary. Legs is
// the combined chain, outbound legs first, built from fresh copies; the
// two directions stay individually addressable.
type RoundTrip struct {
	Outbound Itinerary          `json:"outbound"`
	Return   Itinerary          `json:"return"`
	Legs     []models.FlightLeg `json:"legs"`
}

// ComposeRoundTrips pairs the i-th outbound itinerary with the i-th
// return itinerary for i in [0, min(len(outbound), len(returns))). The
// pairing is strictly positional; no compatibility or cost matching is
// attempted, and the outbound-destination/return-origin relationship is
// whatever the two queries already guaranteed.
func ComposeRoundTrips(outbound, returns []Itinerary) []RoundTrip {
	n := len(outbound)
	if len(returns) < n {
		n = len(returns)
	}

	trips := make([]RoundTrip, 0, n)
	for i := 0; i < n; i++ {
		out, ret := outbound[i], returns[i]
		legs := make([]models.FlightLeg, 0, len(out.Legs)+len(ret.Legs))
		legs = append(legs, out.Legs...)
		legs = append(legs, ret.Legs...)
		trips = append(trips, RoundTrip{Outbound: out, Return: ret, Legs: legs})
	}
	return trips
}
