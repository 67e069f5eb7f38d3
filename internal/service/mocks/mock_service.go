package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cx-tal-miterani/flight-search/internal/models"
	"github.com/cx-tal-miterani/flight-search/internal/service"
)

// MockFlightService is a mock implementation of service.FlightService.
type MockFlightService struct {
	mock.Mock
}

func (m *MockFlightService) SearchFlights(ctx context.Context, req service.SearchRequest) (*service.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchResponse), args.Error(1)
}

func (m *MockFlightService) SearchRoundTrip(ctx context.Context, req service.RoundTripRequest) (*service.RoundTripResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RoundTripResponse), args.Error(1)
}

func (m *MockFlightService) GetLeg(ctx context.Context, id int64) (*models.FlightLeg, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlightLeg), args.Error(1)
}

func (m *MockFlightService) AddLeg(ctx context.Context, airline string, leg models.FlightLeg) (int64, error) {
	args := m.Called(ctx, airline, leg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightService) UpdateLeg(ctx context.Context, id int64, leg models.FlightLeg) error {
	args := m.Called(ctx, id, leg)
	return args.Error(0)
}

func (m *MockFlightService) DeleteLeg(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightService) ReserveSeat(ctx context.Context, id int64) (*service.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Reservation), args.Error(1)
}
