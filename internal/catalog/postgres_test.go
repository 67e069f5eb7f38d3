package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cx-tal-miterani/flight-search/internal/models"
)

func TestLegSelect(t *testing.T) {
	sql := legSelect(models.AirlineDelta, "WHERE id = $1")
	assert.Equal(t,
		"SELECT id, flight_number, depart_airport, arrive_airport, depart_time, arrive_time, seats_available, 'delta' AS airline FROM delta_flights WHERE id = $1",
		sql)
}

func TestUnionSelect(t *testing.T) {
	sql := unionSelect(models.AllAirlines, "WHERE id = $1")
	assert.Contains(t, sql, "FROM delta_flights")
	assert.Contains(t, sql, "FROM southwest_flights")
	assert.Contains(t, sql, " UNION ALL ")
	assert.Contains(t, sql, "'southwest' AS airline")

	single := unionSelect([]models.Airline{models.AirlineSouthwest}, "")
	assert.NotContains(t, single, "UNION")
}

func TestOrderByClause(t *testing.T) {
	assert.Equal(t, "ORDER BY depart_time ASC", orderByClause(models.SortByDepartureTime))
	assert.Equal(t, "ORDER BY arrive_time ASC", orderByClause(models.SortByArrivalTime))
	assert.Equal(t, "ORDER BY (arrive_time - depart_time) ASC", orderByClause(models.SortByTravelTime))
	assert.Equal(t, "ORDER BY depart_time ASC", orderByClause(""))
}

func TestMutationSQLTargetsOwningTableOnly(t *testing.T) {
	update := updateLegSQL(models.AirlineDelta)
	assert.Contains(t, update, "UPDATE delta_flights")
	assert.NotContains(t, update, "southwest_flights")

	del := deleteLegSQL(models.AirlineSouthwest)
	assert.Equal(t, "DELETE FROM southwest_flights WHERE id = $1", del)
	assert.NotContains(t, del, "delta_flights")
}

func TestNoSeatsAvailableError(t *testing.T) {
	err := &NoSeatsAvailableError{LegID: 17}
	assert.Equal(t, "no seats available on flight 17", err.Error())
}
