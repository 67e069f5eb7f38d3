package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cx-tal-miterani/flight-search/internal/models"
)

// Layover legality window between consecutive legs, inclusive on both ends.
const (
	MinLayover = 30 * time.Minute
	MaxLayover = 359 * time.Minute
)

// maxConnectionPaths bounds the number of complete connecting paths
// recorded per request. The DFS is otherwise unbounded on dense schedules
// with a full-catalog window.
const maxConnectionPaths = 1000

// Catalog is the read-only flight store contract the engine consumes.
type Catalog interface {
	// LegsInWindow returns all legs across the given sources whose
	// departure falls in [start, end] and whose arrival is strictly
	// after departure.
	LegsInWindow(ctx context.Context, sources []models.Airline, start, end time.Time) ([]models.FlightLeg, error)
	// DirectLegs returns legs matching the origin/destination substring
	// filters within the window, ordered per the sort key. Empty filters
	// match anything.
	DirectLegs(ctx context.Context, sources []models.Airline, origin, dest string, start, end time.Time, key models.SortKey) ([]models.FlightLeg, error)
}

// Engine escalates from direct flights to multi-leg connections. It is
// stateless; any number of searches may run concurrently.
type Engine struct {
	catalog Catalog
	sources []models.Airline
}

// NewEngine creates an Engine over the given catalog and configured sources.
func NewEngine(catalog Catalog, sources []models.Airline) *Engine {
	return &Engine{catalog: catalog, sources: sources}
}

// Search runs one direction of an itinerary search. Direct flights take
// precedence: if any direct leg matches, the result is exactly the direct
// set and the connection search never runs, regardless of MaxStops.
// An empty result is a normal outcome, not an error.
func (e *Engine) Search(ctx context.Context, q Query) ([]Itinerary, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	sources := e.sources
	if q.Airline != "" {
		sources = []models.Airline{q.Airline}
	}

	direct, err := e.catalog.DirectLegs(ctx, sources, q.Origin, q.Dest, q.WindowStart, q.WindowEnd, q.Sort)
	if err != nil {
		return nil, fmt.Errorf("direct flight search: %w", err)
	}
	if len(direct) > 0 {
		itineraries := make([]Itinerary, 0, len(direct))
		for _, leg := range direct {
			itineraries = append(itineraries, BuildItinerary([]models.FlightLeg{leg}))
		}
		return itineraries, nil
	}

	if q.MaxStops < 1 {
		return nil, nil
	}

	// Connection search always spans all configured sources, not just the
	// preferred one.
	all, err := e.catalog.LegsInWindow(ctx, e.sources, q.WindowStart, q.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("connection search: %w", err)
	}

	idx := buildIndexes(all)
	originCode := AirportCode(q.Origin)
	destCode := AirportCode(q.Dest)

	var paths [][]models.FlightLeg
	for _, first := range idx.legsFrom[originCode] {
		if len(paths) >= maxConnectionPaths {
			break
		}
		path := []models.FlightLeg{first}
		paths = e.dfs(destCode, path, paths, idx, q.MaxStops)
	}

	itineraries := make([]Itinerary, 0, len(paths))
	for _, legs := range paths {
		itineraries = append(itineraries, BuildItinerary(legs))
	}
	sortItineraries(itineraries, q.Sort)
	return itineraries, nil
}

// dfs extends path until it reaches destCode, exceeds the stop bound, or
// runs out of layover-legal candidates. Complete paths are appended to
// results, which is returned (the backing array is shared across the
// recursion; paths themselves are copied when recorded).
func (e *Engine) dfs(destCode string, path []models.FlightLeg, results [][]models.FlightLeg, idx indexes, maxStops int) [][]models.FlightLeg {
	last := path[len(path)-1]

	if AirportCode(last.ArrivalAirport) == destCode {
		recorded := make([]models.FlightLeg, len(path))
		copy(recorded, path)
		return append(results, recorded)
	}
	// A path already holding maxStops+1 legs may not extend: any longer
	// path would exceed the leg bound even if it reaches the destination.
	if len(path) >= maxStops+1 {
		return results
	}

	windowStart := last.ArrivalTime.Add(MinLayover)
	windowEnd := last.ArrivalTime.Add(MaxLayover)

	for _, next := range idx.departuresBetween(AirportCode(last.ArrivalAirport), windowStart, windowEnd) {
		if len(results) >= maxConnectionPaths {
			return results
		}
		if onPath(path, next) {
			continue
		}
		results = e.dfs(destCode, append(path, next), results, idx, maxStops)
	}
	return results
}

func onPath(path []models.FlightLeg, leg models.FlightLeg) bool {
	for _, p := range path {
		if p.SameLeg(leg) {
			return true
		}
	}
	return false
}

// indexes are the two per-airport views the connection search walks:
// departure-time-ordered legs for range lookups, and the plain list for
// origin fan-out.
type indexes struct {
	byDeparture map[string][]models.FlightLeg // sorted by DepartureTime
	legsFrom    map[string][]models.FlightLeg
}

func buildIndexes(legs []models.FlightLeg) indexes {
	idx := indexes{
		byDeparture: make(map[string][]models.FlightLeg),
		legsFrom:    make(map[string][]models.FlightLeg),
	}
	for _, leg := range legs {
		code := AirportCode(leg.DepartureAirport)
		idx.byDeparture[code] = append(idx.byDeparture[code], leg)
		idx.legsFrom[code] = append(idx.legsFrom[code], leg)
	}
	for _, legs := range idx.byDeparture {
		sort.SliceStable(legs, func(i, j int) bool {
			return legs[i].DepartureTime.Before(legs[j].DepartureTime)
		})
	}
	return idx
}

// departuresBetween returns the legs out of airport code departing within
// [start, end], inclusive on both ends.
func (idx indexes) departuresBetween(code string, start, end time.Time) []models.FlightLeg {
	legs := idx.byDeparture[code]
	lo := sort.Search(len(legs), func(i int) bool {
		return !legs[i].DepartureTime.Before(start)
	})
	hi := sort.Search(len(legs), func(i int) bool {
		return legs[i].DepartureTime.After(end)
	})
	return legs[lo:hi]
}

func sortItineraries(itineraries []Itinerary, key models.SortKey) {
	switch key {
	case models.SortByArrivalTime:
		sort.SliceStable(itineraries, func(i, j int) bool {
			return itineraries[i].ArrivalTime.Before(itineraries[j].ArrivalTime)
		})
	case models.SortByTravelTime:
		sort.SliceStable(itineraries, func(i, j int) bool {
			return itineraries[i].TravelMinutes < itineraries[j].TravelMinutes
		})
	default:
		sort.SliceStable(itineraries, func(i, j int) bool {
			return itineraries[i].DepartureTime.Before(itineraries[j].DepartureTime)
		})
	}
}
