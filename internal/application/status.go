package application

import (
	"fmt"
	"strings"
)

// BookingStatus is the closed set of lifecycle states a booking moves
// through. A booking starts pending; cancelled and completed are terminal.
type BookingStatus string

const (
	// StatusPending is the initial state of every booking.
	StatusPending BookingStatus = "pending"
	// StatusConfirmed marks a booking accepted by the room's side.
	StatusConfirmed BookingStatus = "confirmed"
	// StatusCancelled is terminal; the booking no longer blocks the room.
	StatusCancelled BookingStatus = "cancelled"
	// StatusCompleted is terminal; the meeting took place.
	StatusCompleted BookingStatus = "completed"
)

// ParseBookingStatus maps a raw string onto the closed status set.
func ParseBookingStatus(value string) (BookingStatus, bool) {
	switch BookingStatus(strings.ToLower(strings.TrimSpace(value))) {
	case StatusPending:
		return StatusPending, true
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusCancelled:
		return StatusCancelled, true
	case StatusCompleted:
		return StatusCompleted, true
	}
	return "", false
}

// Terminal reports whether no transition is defined out of the status.
func (s BookingStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Blocking reports whether a booking in this status still blocks its
// interval against new reservations.
func (s BookingStatus) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// lifecycle edges. The machine only validates that an edge exists; who may
// drive it is decided by the calling service.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Transition returns the target status when the edge from s is defined and
// ErrInvalidTransition otherwise.
func (s BookingStatus) Transition(to BookingStatus) (BookingStatus, error) {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
}
