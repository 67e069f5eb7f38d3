package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no leg with the requested id exists in any
// source table.
var ErrNotFound = errors.New("not found")

// NoSeatsAvailableError is returned when a reservation's conditional
// decrement matched no rows: the leg exists but its counter is 0.
type NoSeatsAvailableError struct {
	LegID int64
}

func (e *NoSeatsAvailableError) Error() string {
	return fmt.Sprintf("no seats available on flight %d", e.LegID)
}
