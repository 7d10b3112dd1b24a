package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("workshop not found")

	ErrInvalidID = errors.New("invalid workshop ID format")

	ErrInsufficientCapacity = errors.New("not enough seats available")

	ErrNegativePlaces = errors.New("workshop places cannot go below zero")

	ErrCommentNotFound = errors.New("comment not found")
)

// CapacityError reports how many seats were left when a reservation failed.
type CapacityError struct {
	WorkshopID string
	Requested  int
	Available  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: workshop %s has %d, requested %d", ErrInsufficientCapacity, e.WorkshopID, e.Available, e.Requested)
}

func (e *CapacityError) Unwrap() error {
	return ErrInsufficientCapacity
}
