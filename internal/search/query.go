package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/cx-tal-miterani/flight-search/internal/models"
)

// InvalidQueryError reports a malformed search request, rejected before
// any catalog access.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return "invalid query: " + e.Reason
}

// Query describes one direction of an itinerary search. Origin and Dest
// may be bare codes, free text containing a code, or empty (unrestricted).
type Query struct {
	Origin      string
	Dest        string
	WindowStart time.Time
	WindowEnd   time.Time
	MaxStops    int
	Airline     models.Airline // empty means all configured sources
	Sort        models.SortKey
}

// Validate checks the window and enum fields and clamps a negative
// MaxStops to 0.
func (q *Query) Validate() error {
	if q.WindowEnd.Before(q.WindowStart) {
		return &InvalidQueryError{Reason: fmt.Sprintf(
			"window end %s before start %s",
			q.WindowEnd.Format(time.RFC3339), q.WindowStart.Format(time.RFC3339))}
	}
	if q.Sort == "" {
		q.Sort = models.SortByDepartureTime
	}
	switch q.Sort {
	case models.SortByDepartureTime, models.SortByArrivalTime, models.SortByTravelTime:
	default:
		return &InvalidQueryError{Reason: fmt.Sprintf("unknown sort key %q", q.Sort)}
	}
	if q.Airline != "" {
		if _, err := ParseAirline(string(q.Airline)); err != nil {
			return err
		}
	}
	if q.MaxStops < 0 {
		q.MaxStops = 0
	}
	return nil
}

// ParseSortKey maps a request value onto the closed SortKey enumeration.
// An empty value defaults to departure-time ascending.
func ParseSortKey(s string) (models.SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(models.SortByDepartureTime):
		return models.SortByDepartureTime, nil
	case string(models.SortByArrivalTime):
		return models.SortByArrivalTime, nil
	case string(models.SortByTravelTime):
		return models.SortByTravelTime, nil
	default:
		return "", &InvalidQueryError{Reason: fmt.Sprintf("unknown sort key %q", s)}
	}
}

// ParseAirline maps a request value onto a configured source. Empty and
// "any" mean no preference and return the empty Airline.
func ParseAirline(s string) (models.Airline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return "", nil
	case string(models.AirlineDelta):
		return models.AirlineDelta, nil
	case string(models.AirlineSouthwest):
		return models.AirlineSouthwest, nil
	default:
		return "", &InvalidQueryError{Reason: fmt.Sprintf("unknown airline %q", s)}
	}
}

// AirportCode extracts the canonical 3-letter code from stored airport
// text or query input: the parenthesized substring if present, otherwise
// the trailing 3 characters, otherwise the text unchanged. The result is
// uppercased so map keys compare consistently.
func AirportCode(s string) string {
	if open := strings.IndexByte(s, '('); open >= 0 {
		if n := strings.IndexByte(s[open:], ')'); n > 0 {
			return strings.ToUpper(s[open+1 : open+n])
		}
	}
	if len(s) >= 3 {
		return strings.ToUpper(s[len(s)-3:])
	}
	return strings.ToUpper(s)
}
