package models

import "time"

// Airline identifies a flight data source. Each airline has its own table
// in the catalog store.
type Airline string

const (
	AirlineDelta     Airline = "delta"
	AirlineSouthwest Airline = "southwest"
)

// AllAirlines lists every configured source, in stable order.
var AllAirlines = []Airline{AirlineDelta, AirlineSouthwest}

// Table returns the catalog table holding this airline's legs.
func (a Airline) Table() string {
	return string(a) + "_flights"
}

// SortKey selects the ordering applied to a search result list.
type SortKey string

const (
	SortByDepartureTime SortKey = "departure-time"
	SortByArrivalTime   SortKey = "arrival-time"
	SortByTravelTime    SortKey = "travel-time"
)

// DefaultSeatCapacity bounds seats_available at leg creation.
const DefaultSeatCapacity = 100

// FlightLeg is a single scheduled flight segment between two airports.
// Airport fields hold the stored text, which may be a bare code ("JFK")
// or free text with the code in parentheses ("New York (JFK)").
type FlightLeg struct {
	ID               int64     `json:"id"`
	FlightNumber     string    `json:"flightNumber"`
	DepartureAirport string    `json:"departureAirport"`
	ArrivalAirport   string    `json:"arrivalAirport"`
	DepartureTime    time.Time `json:"departureTime"`
	ArrivalTime      time.Time `json:"arrivalTime"`
	Airline          Airline   `json:"airline"`
	SeatsAvailable   int       `json:"seatsAvailable"`
}

// TravelTime is the leg's block time.
func (l FlightLeg) TravelTime() time.Duration {
	return l.ArrivalTime.Sub(l.DepartureTime)
}

// SameLeg reports whether two legs refer to the same stored record.
// Ids are drawn from one sequence shared by all source tables; the
// airline is compared as well since it names the owning table.
func (l FlightLeg) SameLeg(other FlightLeg) bool {
	return l.ID == other.ID && l.Airline == other.Airline
}
