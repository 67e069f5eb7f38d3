package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cx-tal-miterani/flight-search/internal/models"
)

func TestAirportCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"JFK", "JFK"},
		{"jfk", "JFK"},
		{"New York (JFK)", "JFK"},
		{"Chicago O'Hare (ORD)", "ORD"},
		{"(LAX)", "LAX"},
		{"Boston Logan BOS", "BOS"},
		{"LA", "LA"},
		{"", ""},
		{"Denver (DEN) Intl", "DEN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AirportCode(tt.in), "AirportCode(%q)", tt.in)
	}
}

func TestParseSortKey(t *testing.T) {
	for raw, want := range map[string]models.SortKey{
		"":               models.SortByDepartureTime,
		"departure-time": models.SortByDepartureTime,
		"arrival-time":   models.SortByArrivalTime,
		"travel-time":    models.SortByTravelTime,
		"Travel-Time":    models.SortByTravelTime,
	} {
		got, err := ParseSortKey(raw)
		require.NoError(t, err, "ParseSortKey(%q)", raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseSortKey("price")
	var invalid *InvalidQueryError
	require.ErrorAs(t, err, &invalid)
}

func TestParseAirline(t *testing.T) {
	for raw, want := range map[string]models.Airline{
		"":          "",
		"any":       "",
		"delta":     models.AirlineDelta,
		"Southwest": models.AirlineSouthwest,
	} {
		got, err := ParseAirline(raw)
		require.NoError(t, err, "ParseAirline(%q)", raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseAirline("united")
	var invalid *InvalidQueryError
	require.ErrorAs(t, err, &invalid)
}

func TestQueryValidate_ClampsNegativeMaxStops(t *testing.T) {
	q := dayQuery("JFK", "LAX", -7)
	require.NoError(t, q.Validate())
	assert.Zero(t, q.MaxStops)
}

func TestQueryValidate_DefaultsSortKey(t *testing.T) {
	q := dayQuery("JFK", "LAX", 0)
	require.NoError(t, q.Validate())
	assert.Equal(t, models.SortByDepartureTime, q.Sort)
}
