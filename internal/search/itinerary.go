package search

import (
	"time"

	"github.com/cx-tal-miterani/flight-search/internal/models"
)

// Itinerary is an ordered, layover-legal sequence of legs forming one trip
// direction, with aggregates precomputed at build time. It owns its leg
// slice; the same underlying leg record may appear in any number of
// itineraries without aliasing.
type Itinerary struct {
	Legs          []models.FlightLeg `json:"legs"`
	Origin        string             `json:"origin"`
	Destination   string             `json:"destination"`
	DepartureTime time.Time          `json:"departureTime"`
	ArrivalTime   time.Time          `json:"arrivalTime"`
	TravelMinutes int                `json:"travelMinutes"`
	SeatsFree     int                `json:"seatsFree"`
	Airlines      []models.Airline   `json:"airlines"`
}

// Stops is the number of intermediate stops (legs - 1).
func (it Itinerary) Stops() int {
	return len(it.Legs) - 1
}

// BuildItinerary assembles a non-empty leg sequence into an Itinerary.
// The caller guarantees the chain invariants (airport continuity, layover
// window, acyclicity, length bound); no validation happens here. Leg order
// is preserved exactly.
func BuildItinerary(legs []models.FlightLeg) Itinerary {
	owned := make([]models.FlightLeg, len(legs))
	copy(owned, legs)

	first, last := owned[0], owned[len(owned)-1]
	it := Itinerary{
		Legs:          owned,
		Origin:        first.DepartureAirport,
		Destination:   last.ArrivalAirport,
		DepartureTime: first.DepartureTime,
		ArrivalTime:   last.ArrivalTime,
		TravelMinutes: int(last.ArrivalTime.Sub(first.DepartureTime) / time.Minute),
		SeatsFree:     first.SeatsAvailable,
	}
	for _, leg := range owned {
		if leg.SeatsAvailable < it.SeatsFree {
			it.SeatsFree = leg.SeatsAvailable
		}
		if !containsAirline(it.Airlines, leg.Airline) {
			it.Airlines = append(it.Airlines, leg.Airline)
		}
	}
	return it
}

func containsAirline(airlines []models.Airline, a models.Airline) bool {
	for _, have := range airlines {
		if have == a {
			return true
		}
	}
	return false
}
