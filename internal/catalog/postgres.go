package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cx-tal-miterani/flight-search/internal/models"
)

const legColumns = "id, flight_number, depart_airport, arrive_airport, depart_time, arrive_time, seats_available"

// Repository handles all catalog store operations. One table per airline
// source; cross-source reads are UNION queries tagging each row with its
// source.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// legSelect builds one UNION branch for a source table. The airline tag is
// a literal; table names come from the closed Airline enum, never from
// request input.
func legSelect(a models.Airline, where string) string {
	return fmt.Sprintf("SELECT %s, '%s' AS airline FROM %s %s", legColumns, a, a.Table(), where)
}

func unionSelect(sources []models.Airline, where string) string {
	branches := make([]string, len(sources))
	for i, a := range sources {
		branches[i] = legSelect(a, where)
	}
	return strings.Join(branches, " UNION ALL ")
}

func orderByClause(key models.SortKey) string {
	switch key {
	case models.SortByArrivalTime:
		return "ORDER BY arrive_time ASC"
	case models.SortByTravelTime:
		return "ORDER BY (arrive_time - depart_time) ASC"
	default:
		return "ORDER BY depart_time ASC"
	}
}

func (r *Repository) queryLegs(ctx context.Context, sql string, args ...any) ([]models.FlightLeg, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query legs: %w", err)
	}
	defer rows.Close()

	var legs []models.FlightLeg
	for rows.Next() {
		var l models.FlightLeg
		err := rows.Scan(
			&l.ID, &l.FlightNumber, &l.DepartureAirport, &l.ArrivalAirport,
			&l.DepartureTime, &l.ArrivalTime, &l.SeatsAvailable, &l.Airline,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leg: %w", err)
		}
		legs = append(legs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read legs: %w", err)
	}
	return legs, nil
}

// LegsInWindow returns all legs across the given sources departing in
// [start, end] whose arrival is strictly after departure.
func (r *Repository) LegsInWindow(ctx context.Context, sources []models.Airline, start, end time.Time) ([]models.FlightLeg, error) {
	sql := unionSelect(sources, "WHERE depart_time BETWEEN $1 AND $2 AND depart_time < arrive_time")
	return r.queryLegs(ctx, sql, start, end)
}

// DirectLegs returns legs matching the airport substring filters within
// the window, ordered per the sort key. Empty origin or dest matches
// anything.
func (r *Repository) DirectLegs(ctx context.Context, sources []models.Airline, origin, dest string, start, end time.Time, key models.SortKey) ([]models.FlightLeg, error) {
	where := "WHERE depart_airport ILIKE $1 AND arrive_airport ILIKE $2 " +
		"AND depart_time BETWEEN $3 AND $4 AND depart_time < arrive_time"
	sql := unionSelect(sources, where) + " " + orderByClause(key)
	return r.queryLegs(ctx, sql, "%"+origin+"%", "%"+dest+"%", start, end)
}

// LegByID returns a leg by id, searching every source table. Ids come
// from one shared sequence, so at most one table holds a match.
func (r *Repository) LegByID(ctx context.Context, id int64) (*models.FlightLeg, error) {
	sql := unionSelect(models.AllAirlines, "WHERE id = $1") + " LIMIT 1"
	legs, err := r.queryLegs(ctx, sql, id)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, ErrNotFound
	}
	return &legs[0], nil
}

// EarliestDeparture returns the leg with the earliest departure across the
// given sources.
func (r *Repository) EarliestDeparture(ctx context.Context, sources []models.Airline) (*models.FlightLeg, error) {
	return r.edgeDeparture(ctx, sources, "ASC")
}

// LatestDeparture returns the leg with the latest departure across the
// given sources.
func (r *Repository) LatestDeparture(ctx context.Context, sources []models.Airline) (*models.FlightLeg, error) {
	return r.edgeDeparture(ctx, sources, "DESC")
}

func (r *Repository) edgeDeparture(ctx context.Context, sources []models.Airline, direction string) (*models.FlightLeg, error) {
	sql := fmt.Sprintf("%s ORDER BY depart_time %s LIMIT 1", unionSelect(sources, ""), direction)
	legs, err := r.queryLegs(ctx, sql)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, ErrNotFound
	}
	return &legs[0], nil
}

// InsertLeg adds a leg to the given source table and returns its id. The
// seat counter starts at the fixed capacity unless a smaller positive
// value is supplied.
func (r *Repository) InsertLeg(ctx context.Context, airline models.Airline, leg models.FlightLeg) (int64, error) {
	seats := leg.SeatsAvailable
	if seats <= 0 || seats > models.DefaultSeatCapacity {
		seats = models.DefaultSeatCapacity
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (flight_number, depart_airport, arrive_airport, depart_time, arrive_time, seats_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, airline.Table())

	var id int64
	err := r.pool.QueryRow(ctx, sql,
		leg.FlightNumber, leg.DepartureAirport, leg.ArrivalAirport,
		leg.DepartureTime, leg.ArrivalTime, seats,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert leg: %w", err)
	}
	return id, nil
}

func updateLegSQL(a models.Airline) string {
	return fmt.Sprintf(
		"UPDATE %s SET flight_number = $1, depart_airport = $2, arrive_airport = $3, depart_time = $4, arrive_time = $5 WHERE id = $6",
		a.Table(),
	)
}

func deleteLegSQL(a models.Airline) string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = $1", a.Table())
}

// UpdateLeg updates the schedule fields of a leg. The owning table is
// resolved first; the mutation touches that table only.
func (r *Repository) UpdateLeg(ctx context.Context, id int64, leg models.FlightLeg) error {
	current, err := r.LegByID(ctx, id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, updateLegSQL(current.Airline),
		leg.FlightNumber, leg.DepartureAirport, leg.ArrivalAirport,
		leg.DepartureTime, leg.ArrivalTime, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update leg: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLeg removes a leg from its owning table.
func (r *Repository) DeleteLeg(ctx context.Context, id int64) error {
	current, err := r.LegByID(ctx, id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, deleteLegSQL(current.Airline), id)
	if err != nil {
		return fmt.Errorf("failed to delete leg: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReserveSeat atomically decrements a leg's seat counter by one, only if
// it is strictly positive. The decrement is a single conditional UPDATE at
// the store, so concurrent reservations (including from other processes)
// can never drive the counter negative. On success the post-decrement leg
// state is re-read and returned.
func (r *Repository) ReserveSeat(ctx context.Context, id int64) (*models.FlightLeg, error) {
	leg, err := r.LegByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(
		"UPDATE %s SET seats_available = seats_available - 1 WHERE id = $1 AND seats_available > 0",
		leg.Airline.Table(),
	)
	tag, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &NoSeatsAvailableError{LegID: id}
	}

	return r.LegByID(ctx, id)
}
