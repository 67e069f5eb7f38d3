package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/cx-tal-miterani/flight-search/internal/catalog"
	"github.com/cx-tal-miterani/flight-search/internal/models"
	"github.com/cx-tal-miterani/flight-search/internal/search"
	"github.com/cx-tal-miterani/flight-search/internal/service"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	flightService service.FlightService
}

// NewHandler creates a new Handler instance
func NewHandler(flightService service.FlightService) *Handler {
	return &Handler{
		flightService: flightService,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the error taxonomy onto status codes:
// invalid query 400, not found 404, no seats 409, store failure 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var invalid *search.InvalidQueryError
	var noSeats *catalog.NoSeatsAvailableError
	switch {
	case errors.As(err, &invalid):
		respondError(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, "Flight not found")
	case errors.As(err, &noSeats):
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error": noSeats.Error(),
			"legId": noSeats.LegID,
		})
	default:
		respondError(w, http.StatusInternalServerError, "Database error: "+err.Error())
	}
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, &search.InvalidQueryError{Reason: name + " must be RFC 3339, got " + strconv.Quote(raw)}
	}
	return &t, nil
}

func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &search.InvalidQueryError{Reason: name + " must be an integer, got " + strconv.Quote(raw)}
	}
	return n, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &search.InvalidQueryError{Reason: "flight id must be an integer, got " + strconv.Quote(raw)}
	}
	return id, nil
}

// SearchFlights handles GET /api/flights. oneWay defaults to true; a
// round-trip request (?oneWay=false) additionally reads the return window.
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := service.SearchRequest{
		OriginAirport: query.Get("departureAirport"),
		DestAirport:   query.Get("arriveAirport"),
		Airline:       query.Get("airline"),
		SortBy:        query.Get("sortBy"),
	}

	var err error
	if req.WindowStart, err = parseTimeParam(r, "startTime"); err != nil {
		respondServiceError(w, err)
		return
	}
	if req.WindowEnd, err = parseTimeParam(r, "endTime"); err != nil {
		respondServiceError(w, err)
		return
	}
	if req.MaxStops, err = parseIntParam(r, "maxStops", 0); err != nil {
		respondServiceError(w, err)
		return
	}
	if req.Page, err = parseIntParam(r, "page", 0); err != nil {
		respondServiceError(w, err)
		return
	}
	if req.PageSize, err = parseIntParam(r, "pageSize", 0); err != nil {
		respondServiceError(w, err)
		return
	}

	if query.Get("oneWay") == "false" {
		rtReq := service.RoundTripRequest{SearchRequest: req}
		if rtReq.ReturnWindowStart, err = parseTimeParam(r, "returnDateStart"); err != nil {
			respondServiceError(w, err)
			return
		}
		if rtReq.ReturnWindowEnd, err = parseTimeParam(r, "returnDateEnd"); err != nil {
			respondServiceError(w, err)
			return
		}
		resp, err := h.flightService.SearchRoundTrip(r.Context(), rtReq)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, resp)
		return
	}

	resp, err := h.flightService.SearchFlights(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	leg, err := h.flightService.GetLeg(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, leg)
}

// LegRequest is the add/update request body.
type LegRequest struct {
	Airline          string    `json:"airline,omitempty"`
	FlightNumber     string    `json:"flightNumber"`
	DepartureAirport string    `json:"departureAirport"`
	ArrivalAirport   string    `json:"arrivalAirport"`
	DepartureTime    time.Time `json:"departureTime"`
	ArrivalTime      time.Time `json:"arrivalTime"`
	SeatsAvailable   int       `json:"seatsAvailable,omitempty"`
}

func (req LegRequest) leg() models.FlightLeg {
	return models.FlightLeg{
		FlightNumber:     req.FlightNumber,
		DepartureAirport: req.DepartureAirport,
		ArrivalAirport:   req.ArrivalAirport,
		DepartureTime:    req.DepartureTime,
		ArrivalTime:      req.ArrivalTime,
		SeatsAvailable:   req.SeatsAvailable,
	}
}

// AddFlight handles POST /api/flights
func (h *Handler) AddFlight(w http.ResponseWriter, r *http.Request) {
	var req LegRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.flightService.AddLeg(r.Context(), req.Airline, req.leg())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// UpdateFlight handles PUT /api/flights/{id}
func (h *Handler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req LegRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.flightService.UpdateLeg(r.Context(), id, req.leg()); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Flight updated"})
}

// DeleteFlight handles DELETE /api/flights/{id}
func (h *Handler) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.flightService.DeleteLeg(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Flight deleted"})
}

// ReserveSeat handles POST /api/flights/{id}/reserve
func (h *Handler) ReserveSeat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	reservation, err := h.flightService.ReserveSeat(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reservation)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
