package domain

import "fmt"

// transitions is the single source of truth for the reservation state machine
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusInUse, StatusCancelled, StatusExpired},
	StatusConfirmed: {StatusInUse, StatusCancelled, StatusCompleted, StatusExpired},
	StatusInUse:     {StatusCompleted},
}

// CanTransition reports whether from -> to is allowed
func CanTransition(from, to ReservationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo moves the reservation to status to, or returns ErrInvalidTransition
func (r *Reservation) TransitionTo(to ReservationStatus) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}
	r.Status = to
	return nil
}
