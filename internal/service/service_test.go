package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cx-tal-miterani/flight-search/internal/catalog"
	"github.com/cx-tal-miterani/flight-search/internal/models"
	"github.com/cx-tal-miterani/flight-search/internal/search"
)

// fakeStore is an in-memory Store. Reservation decrements are performed
// under the mutex as one conditional step, mirroring the store-level
// guarantee of the real repository.
type fakeStore struct {
	mu        sync.Mutex
	legs      map[int64]models.FlightLeg
	nextID    int64
	readCalls int
}

func newFakeStore(legs ...models.FlightLeg) *fakeStore {
	s := &fakeStore{legs: make(map[int64]models.FlightLeg), nextID: 1000}
	for _, l := range legs {
		s.legs[l.ID] = l
	}
	return s
}

func (s *fakeStore) snapshot(sources []models.Airline) []models.FlightLeg {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readCalls++
	var out []models.FlightLeg
	for _, l := range s.legs {
		for _, src := range sources {
			if l.Airline == src {
				out = append(out, l)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeStore) LegsInWindow(_ context.Context, sources []models.Airline, start, end time.Time) ([]models.FlightLeg, error) {
	var out []models.FlightLeg
	for _, l := range s.snapshot(sources) {
		if l.DepartureTime.Before(start) || l.DepartureTime.After(end) || !l.ArrivalTime.After(l.DepartureTime) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *fakeStore) DirectLegs(ctx context.Context, sources []models.Airline, origin, dest string, start, end time.Time, key models.SortKey) ([]models.FlightLeg, error) {
	window, err := s.LegsInWindow(ctx, sources, start, end)
	if err != nil {
		return nil, err
	}
	var out []models.FlightLeg
	for _, l := range window {
		if strings.Contains(strings.ToLower(l.DepartureAirport), strings.ToLower(origin)) &&
			strings.Contains(strings.ToLower(l.ArrivalAirport), strings.ToLower(dest)) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	return out, nil
}

func (s *fakeStore) LegByID(_ context.Context, id int64) (*models.FlightLeg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.legs[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &l, nil
}

func (s *fakeStore) EarliestDeparture(_ context.Context, sources []models.Airline) (*models.FlightLeg, error) {
	legs := s.snapshot(sources)
	if len(legs) == 0 {
		return nil, catalog.ErrNotFound
	}
	earliest := legs[0]
	for _, l := range legs[1:] {
		if l.DepartureTime.Before(earliest.DepartureTime) {
			earliest = l
		}
	}
	return &earliest, nil
}

func (s *fakeStore) LatestDeparture(_ context.Context, sources []models.Airline) (*models.FlightLeg, error) {
	legs := s.snapshot(sources)
	if len(legs) == 0 {
		return nil, catalog.ErrNotFound
	}
	latest := legs[0]
	for _, l := range legs[1:] {
		if l.DepartureTime.After(latest.DepartureTime) {
			latest = l
		}
	}
	return &latest, nil
}

func (s *fakeStore) InsertLeg(_ context.Context, airline models.Airline, leg models.FlightLeg) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	leg.ID = s.nextID
	leg.Airline = airline
	if leg.SeatsAvailable <= 0 || leg.SeatsAvailable > models.DefaultSeatCapacity {
		leg.SeatsAvailable = models.DefaultSeatCapacity
	}
	s.legs[leg.ID] = leg
	return leg.ID, nil
}

func (s *fakeStore) UpdateLeg(_ context.Context, id int64, leg models.FlightLeg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	have, ok := s.legs[id]
	if !ok {
		return catalog.ErrNotFound
	}
	have.FlightNumber = leg.FlightNumber
	have.DepartureAirport = leg.DepartureAirport
	have.ArrivalAirport = leg.ArrivalAirport
	have.DepartureTime = leg.DepartureTime
	have.ArrivalTime = leg.ArrivalTime
	s.legs[id] = have
	return nil
}

func (s *fakeStore) DeleteLeg(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.legs[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.legs, id)
	return nil
}

func (s *fakeStore) ReserveSeat(_ context.Context, id int64) (*models.FlightLeg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.legs[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	if l.SeatsAvailable <= 0 {
		return nil, &catalog.NoSeatsAvailableError{LegID: id}
	}
	l.SeatsAvailable--
	s.legs[id] = l
	return &l, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []int64
}

func (n *fakeNotifier) BroadcastSeatsAvailable(legID int64, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, legID)
}

func tm(day, hour, min int) time.Time {
	return time.Date(2025, 4, day, hour, min, 0, 0, time.UTC)
}

func mkLeg(id int64, airline models.Airline, from, to string, dep, arr time.Time, seats int) models.FlightLeg {
	return models.FlightLeg{
		ID:               id,
		FlightNumber:     "FL100",
		DepartureAirport: from,
		ArrivalAirport:   to,
		DepartureTime:    dep,
		ArrivalTime:      arr,
		Airline:          airline,
		SeatsAvailable:   seats,
	}
}

func window(start, end time.Time) (*time.Time, *time.Time) {
	return &start, &end
}

func TestSearchFlights_Direct(t *testing.T) {
	store := newFakeStore(
		mkLeg(1, models.AirlineDelta, "JFK", "LAX", tm(1, 9, 0), tm(1, 15, 0), 50),
	)
	svc := NewFlightService(store, nil, 0)

	start, end := window(tm(1, 0, 0), tm(1, 23, 59))
	resp, err := svc.SearchFlights(context.Background(), SearchRequest{
		OriginAirport: "JFK",
		DestAirport:   "LAX",
		WindowStart:   start,
		WindowEnd:     end,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Total)
	assert.False(t, resp.HasMore)
}

func TestSearchFlights_WindowDefaultsFromCatalog(t *testing.T) {
	store := newFakeStore(
		mkLeg(1, models.AirlineDelta, "JFK", "LAX", tm(1, 9, 0), tm(1, 15, 0), 50),
		mkLeg(2, models.AirlineSouthwest, "JFK", "LAX", tm(3, 9, 0), tm(3, 15, 0), 50),
	)
	svc := NewFlightService(store, nil, 0)

	resp, err := svc.SearchFlights(context.Background(), SearchRequest{
		OriginAirport: "JFK",
		DestAirport:   "LAX",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total, "defaulted window spans earliest through latest departure")
}

func TestSearchFlights_EmptyCatalog(t *testing.T) {
	svc := NewFlightService(newFakeStore(), nil, 0)

	resp, err := svc.SearchFlights(context.Background(), SearchRequest{OriginAirport: "JFK", DestAirport: "LAX"})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.Total)
}

func TestSearchFlights_ValidationBeforeCatalogAccess(t *testing.T) {
	tests := []struct {
		name string
		req  SearchRequest
	}{
		{"unknown sort key", SearchRequest{SortBy: "price"}},
		{"unknown airline", SearchRequest{Airline: "united"}},
		{"negative page", SearchRequest{Page: -1}},
		{"negative page size", SearchRequest{PageSize: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(
				mkLeg(1, models.AirlineDelta, "JFK", "LAX", tm(1, 9, 0), tm(1, 15, 0), 50),
			)
			svc := NewFlightService(store, nil, 0)

			_, err := svc.SearchFlights(context.Background(), tt.req)
			var invalid *search.InvalidQueryError
			require.ErrorAs(t, err, &invalid)
			assert.Zero(t, store.readCalls, "invalid requests must be rejected before any catalog read")
		})
	}
}

func TestSearchFlights_WindowEndBeforeStart(t *testing.T) {
	store := newFakeStore()
	svc := NewFlightService(store, nil, 0)

	start, end := window(tm(2, 0, 0), tm(1, 0, 0))
	_, err := svc.SearchFlights(context.Background(), SearchRequest{WindowStart: start, WindowEnd: end})
	var invalid *search.InvalidQueryError
	require.ErrorAs(t, err, &invalid)
	assert.Zero(t, store.readCalls)
}

func TestSearchFlights_DefaultPageSize(t *testing.T) {
	legs := make([]models.FlightLeg, 0, 7)
	for i := int64(1); i <= 7; i++ {
		legs = append(legs, mkLeg(i, models.AirlineDelta, "JFK", "LAX", tm(1, 6+int(i), 0), tm(1, 12+int(i), 0), 50))
	}
	svc := NewFlightService(newFakeStore(legs...), nil, 0)

	start, end := window(tm(1, 0, 0), tm(1, 23, 59))
	resp, err := svc.SearchFlights(context.Background(), SearchRequest{
		OriginAirport: "JFK", DestAirport: "LAX", WindowStart: start, WindowEnd: end,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Items, DefaultPageSize)
	assert.True(t, resp.HasMore)
	assert.Equal(t, 7, resp.Total)
}

func TestSearchRoundTrip_PairsAndTotals(t *testing.T) {
	store := newFakeStore(
		mkLeg(1, models.AirlineDelta, "JFK", "LAX", tm(1, 8, 0), tm(1, 14, 0), 50),
		mkLeg(2, models.AirlineDelta, "JFK", "LAX", tm(1, 10, 0), tm(1, 16, 0), 50),
		mkLeg(3, models.AirlineDelta, "LAX", "JFK", tm(8, 9, 0), tm(8, 15, 0), 50),
	)
	svc := NewFlightService(store, nil, 0)

	outStart, outEnd := window(tm(1, 0, 0), tm(1, 23, 59))
	retStart, retEnd := window(tm(8, 0, 0), tm(8, 23, 59))
	resp, err := svc.SearchRoundTrip(context.Background(), RoundTripRequest{
		SearchRequest: SearchRequest{
			OriginAirport: "JFK",
			DestAirport:   "LAX",
			WindowStart:   outStart,
			WindowEnd:     outEnd,
		},
		ReturnWindowStart: retStart,
		ReturnWindowEnd:   retEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.OutboundTotal)
	assert.Equal(t, 1, resp.ReturnTotal)
	require.Equal(t, 1, resp.Total, "round trip count is min(outbound, return)")
	assert.Equal(t, "JFK", resp.Items[0].Outbound.Origin)
	assert.Equal(t, "LAX", resp.Items[0].Return.Origin)
}

func TestSearchRoundTrip_NoReturnFoundIsAttributable(t *testing.T) {
	store := newFakeStore(
		mkLeg(1, models.AirlineDelta, "JFK", "LAX", tm(1, 8, 0), tm(1, 14, 0), 50),
	)
	svc := NewFlightService(store, nil, 0)

	outStart, outEnd := window(tm(1, 0, 0), tm(1, 23, 59))
	retStart, retEnd := window(tm(8, 0, 0), tm(8, 23, 59))
	resp, err := svc.SearchRoundTrip(context.Background(), RoundTripRequest{
		SearchRequest: SearchRequest{
			OriginAirport: "JFK", DestAirport: "LAX",
			WindowStart: outStart, WindowEnd: outEnd,
		},
		ReturnWindowStart: retStart,
		ReturnWindowEnd:   retEnd,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 1, resp.OutboundTotal)
	assert.Zero(t, resp.ReturnTotal)
}

func TestReserveSeat_Success(t *testing.T) {
	store := newFakeStore(
		mkLeg(1, models.AirlineDelta, "JFK", "LAX", tm(1, 9, 0), tm(1, 15, 0), 2),
	)
	notifier := &fakeNotifier{}
	svc := NewFlightService(store, notifier, 0)

	res, err := svc.ReserveSeat(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ConfirmationID)
	assert.Equal(t, 1, res.Leg.SeatsAvailable)
	assert.Equal(t, []int64{1}, notifier.calls)
}

func TestReserveSeat_NoSeatsAvailable(t *testing.T) {
	store := newFakeStore(
		mkLeg(1, models.AirlineDelta, "JFK", "LAX", tm(1, 9, 0), tm(1, 15, 0), 0),
	)
	svc := NewFlightService(store, nil, 0)

	_, err := svc.ReserveSeat(context.Background(), 1)
	var noSeats *catalog.NoSeatsAvailableError
	require.ErrorAs(t, err, &noSeats)
	assert.Equal(t, int64(1), noSeats.LegID)

	leg, err := store.LegByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, leg.SeatsAvailable, "counter never goes negative")
}

func TestReserveSeat_NotFound(t *testing.T) {
	svc := NewFlightService(newFakeStore(), nil, 0)

	_, err := svc.ReserveSeat(context.Background(), 42)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestReserveSeat_ConcurrentLastSeat(t *testing.T) {
	store := newFakeStore(
		mkLeg(1, models.AirlineDelta, "JFK", "LAX", tm(1, 9, 0), tm(1, 15, 0), 1),
	)
	svc := NewFlightService(store, nil, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ReserveSeat(context.Background(), 1)
		}(i)
	}
	wg.Wait()

	var successes, noSeats int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var e *catalog.NoSeatsAvailableError
		require.ErrorAs(t, err, &e)
		noSeats++
	}
	assert.Equal(t, 1, successes, "exactly one reservation wins the last seat")
	assert.Equal(t, 1, noSeats)

	leg, err := store.LegByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, leg.SeatsAvailable)
}

func TestAddLeg_Validation(t *testing.T) {
	svc := NewFlightService(newFakeStore(), nil, 0)

	valid := mkLeg(0, "", "JFK", "LAX", tm(1, 9, 0), tm(1, 15, 0), 0)

	var invalid *search.InvalidQueryError

	_, err := svc.AddLeg(context.Background(), "", valid)
	require.ErrorAs(t, err, &invalid, "airline is required")

	_, err = svc.AddLeg(context.Background(), "united", valid)
	require.ErrorAs(t, err, &invalid)

	backwards := valid
	backwards.DepartureTime, backwards.ArrivalTime = backwards.ArrivalTime, backwards.DepartureTime
	_, err = svc.AddLeg(context.Background(), "delta", backwards)
	require.ErrorAs(t, err, &invalid, "arrival must be after departure")

	id, err := svc.AddLeg(context.Background(), "delta", valid)
	require.NoError(t, err)
	leg, err := svc.GetLeg(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.AirlineDelta, leg.Airline)
	assert.Equal(t, models.DefaultSeatCapacity, leg.SeatsAvailable)
}
