package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cx-tal-miterani/flight-search/internal/catalog"
	"github.com/cx-tal-miterani/flight-search/internal/models"
	"github.com/cx-tal-miterani/flight-search/internal/search"
)

// DefaultPageSize is used when a request leaves pageSize unset.
const DefaultPageSize = 5

// Store is the catalog collaborator contract: the read side consumed by
// the search engine plus lookup, CRUD, and the atomic seat reservation.
type Store interface {
	search.Catalog
	LegByID(ctx context.Context, id int64) (*models.FlightLeg, error)
	EarliestDeparture(ctx context.Context, sources []models.Airline) (*models.FlightLeg, error)
	LatestDeparture(ctx context.Context, sources []models.Airline) (*models.FlightLeg, error)
	InsertLeg(ctx context.Context, airline models.Airline, leg models.FlightLeg) (int64, error)
	UpdateLeg(ctx context.Context, id int64, leg models.FlightLeg) error
	DeleteLeg(ctx context.Context, id int64) error
	ReserveSeat(ctx context.Context, id int64) (*models.FlightLeg, error)
}

// Notifier receives seat-availability changes for broadcast. May be nil.
type Notifier interface {
	BroadcastSeatsAvailable(legID int64, seatsAvailable int)
}

// SearchRequest is the transport-agnostic shape of a one-way search.
// Nil window bounds default to the earliest/latest known departure across
// all sources.
type SearchRequest struct {
	OriginAirport string
	DestAirport   string
	WindowStart   *time.Time
	WindowEnd     *time.Time
	MaxStops      int
	Airline       string
	SortBy        string
	Page          int
	PageSize      int
}

// RoundTripRequest additionally carries the return window; the return
// search runs with origin and destination swapped.
type RoundTripRequest struct {
	SearchRequest
	ReturnWindowStart *time.Time
	ReturnWindowEnd   *time.Time
}

// SearchResponse is one page of itineraries.
type SearchResponse struct {
	Items   []search.Itinerary `json:"items"`
	HasMore bool               `json:"hasMore"`
	Total   int                `json:"total"`
}

// RoundTripResponse is one page of round trips. OutboundTotal and
// ReturnTotal report each direction's full result size so an empty
// pairing is attributable to the side that found nothing.
type RoundTripResponse struct {
	Items         []search.RoundTrip `json:"items"`
	HasMore       bool               `json:"hasMore"`
	Total         int                `json:"total"`
	OutboundTotal int                `json:"outboundTotal"`
	ReturnTotal   int                `json:"returnTotal"`
}

// Reservation is the outcome of a successful seat reservation.
type Reservation struct {
	ConfirmationID string           `json:"confirmationId"`
	Leg            models.FlightLeg `json:"leg"`
}

// FlightService defines the flight search and reservation service.
type FlightService interface {
	SearchFlights(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	SearchRoundTrip(ctx context.Context, req RoundTripRequest) (*RoundTripResponse, error)
	GetLeg(ctx context.Context, id int64) (*models.FlightLeg, error)
	AddLeg(ctx context.Context, airline string, leg models.FlightLeg) (int64, error)
	UpdateLeg(ctx context.Context, id int64, leg models.FlightLeg) error
	DeleteLeg(ctx context.Context, id int64) error
	ReserveSeat(ctx context.Context, id int64) (*Reservation, error)
}

// flightServiceImpl implements FlightService.
type flightServiceImpl struct {
	store           Store
	engine          *search.Engine
	notifier        Notifier
	defaultPageSize int
}

// NewFlightService creates a FlightService over the given store. notifier
// may be nil when no broadcast channel is wired (CLI, tests).
func NewFlightService(store Store, notifier Notifier, defaultPageSize int) FlightService {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	return &flightServiceImpl{
		store:           store,
		engine:          search.NewEngine(store, models.AllAirlines),
		notifier:        notifier,
		defaultPageSize: defaultPageSize,
	}
}

// pageParams validates page/pageSize, applying defaults for unset values.
func (s *flightServiceImpl) pageParams(req SearchRequest) (page, pageSize int, err error) {
	page, pageSize = req.Page, req.PageSize
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = s.defaultPageSize
	}
	if page < 1 {
		return 0, 0, &search.InvalidQueryError{Reason: fmt.Sprintf("page must be >= 1, got %d", req.Page)}
	}
	if pageSize < 1 {
		return 0, 0, &search.InvalidQueryError{Reason: fmt.Sprintf("pageSize must be > 0, got %d", req.PageSize)}
	}
	return page, pageSize, nil
}

// buildQuery resolves enums and the departure window. Enum and window
// validation happens before any catalog access; the catalog is only
// consulted to default absent window bounds.
func (s *flightServiceImpl) buildQuery(ctx context.Context, req SearchRequest, windowStart, windowEnd *time.Time) (search.Query, error) {
	sortKey, err := search.ParseSortKey(req.SortBy)
	if err != nil {
		return search.Query{}, err
	}
	airline, err := search.ParseAirline(req.Airline)
	if err != nil {
		return search.Query{}, err
	}
	if windowStart != nil && windowEnd != nil && windowEnd.Before(*windowStart) {
		return search.Query{}, &search.InvalidQueryError{Reason: fmt.Sprintf(
			"window end %s before start %s",
			windowEnd.Format(time.RFC3339), windowStart.Format(time.RFC3339))}
	}

	q := search.Query{
		Origin:   req.OriginAirport,
		Dest:     req.DestAirport,
		MaxStops: req.MaxStops,
		Airline:  airline,
		Sort:     sortKey,
	}

	if windowStart != nil {
		q.WindowStart = *windowStart
	} else {
		earliest, err := s.store.EarliestDeparture(ctx, models.AllAirlines)
		if err != nil {
			return search.Query{}, err
		}
		q.WindowStart = earliest.DepartureTime
	}
	if windowEnd != nil {
		q.WindowEnd = *windowEnd
	} else {
		latest, err := s.store.LatestDeparture(ctx, models.AllAirlines)
		if err != nil {
			return search.Query{}, err
		}
		q.WindowEnd = latest.DepartureTime
	}
	return q, nil
}

func (s *flightServiceImpl) SearchFlights(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	page, pageSize, err := s.pageParams(req)
	if err != nil {
		return nil, err
	}

	q, err := s.buildQuery(ctx, req, req.WindowStart, req.WindowEnd)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			// Empty catalog: nothing to default the window from, and
			// nothing to find.
			return &SearchResponse{Items: []search.Itinerary{}}, nil
		}
		return nil, err
	}

	itineraries, err := s.engine.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	items, hasMore, total := search.Page(itineraries, page, pageSize)
	if items == nil {
		items = []search.Itinerary{}
	}
	return &SearchResponse{Items: items, HasMore: hasMore, Total: total}, nil
}

func (s *flightServiceImpl) SearchRoundTrip(ctx context.Context, req RoundTripRequest) (*RoundTripResponse, error) {
	page, pageSize, err := s.pageParams(req.SearchRequest)
	if err != nil {
		return nil, err
	}

	outQuery, err := s.buildQuery(ctx, req.SearchRequest, req.WindowStart, req.WindowEnd)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return &RoundTripResponse{Items: []search.RoundTrip{}}, nil
		}
		return nil, err
	}

	returnReq := req.SearchRequest
	returnReq.OriginAirport, returnReq.DestAirport = req.DestAirport, req.OriginAirport
	retQuery, err := s.buildQuery(ctx, returnReq, req.ReturnWindowStart, req.ReturnWindowEnd)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return &RoundTripResponse{Items: []search.RoundTrip{}}, nil
		}
		return nil, err
	}

	outbound, err := s.engine.Search(ctx, outQuery)
	if err != nil {
		return nil, err
	}
	returns, err := s.engine.Search(ctx, retQuery)
	if err != nil {
		return nil, err
	}

	trips := search.ComposeRoundTrips(outbound, returns)
	items, hasMore, total := search.Page(trips, page, pageSize)
	if items == nil {
		items = []search.RoundTrip{}
	}
	return &RoundTripResponse{
		Items:         items,
		HasMore:       hasMore,
		Total:         total,
		OutboundTotal: len(outbound),
		ReturnTotal:   len(returns),
	}, nil
}

func (s *flightServiceImpl) GetLeg(ctx context.Context, id int64) (*models.FlightLeg, error) {
	return s.store.LegByID(ctx, id)
}

func (s *flightServiceImpl) AddLeg(ctx context.Context, airline string, leg models.FlightLeg) (int64, error) {
	a, err := search.ParseAirline(airline)
	if err != nil {
		return 0, err
	}
	if a == "" {
		return 0, &search.InvalidQueryError{Reason: "airline is required when adding a leg"}
	}
	if !leg.ArrivalTime.After(leg.DepartureTime) {
		return 0, &search.InvalidQueryError{Reason: "arrival time must be after departure time"}
	}
	return s.store.InsertLeg(ctx, a, leg)
}

func (s *flightServiceImpl) UpdateLeg(ctx context.Context, id int64, leg models.FlightLeg) error {
	if !leg.ArrivalTime.After(leg.DepartureTime) {
		return &search.InvalidQueryError{Reason: "arrival time must be after departure time"}
	}
	return s.store.UpdateLeg(ctx, id, leg)
}

func (s *flightServiceImpl) DeleteLeg(ctx context.Context, id int64) error {
	return s.store.DeleteLeg(ctx, id)
}

func (s *flightServiceImpl) ReserveSeat(ctx context.Context, id int64) (*Reservation, error) {
	leg, err := s.store.ReserveSeat(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.BroadcastSeatsAvailable(leg.ID, leg.SeatsAvailable)
	}
	return &Reservation{ConfirmationID: uuid.New().String(), Leg: *leg}, nil
}
