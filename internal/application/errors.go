package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission
	// for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the referenced booking or room does not
	// exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidTimeRange is returned when a proposed interval does not
	// satisfy start < end.
	ErrInvalidTimeRange = errors.New("application: invalid time range")
	// ErrTimeConflict is returned when a proposed interval overlaps an
	// existing non-terminal booking in the same room and day.
	ErrTimeConflict = errors.New("application: time conflict")
	// ErrBookingTerminal is returned when a mutation targets a cancelled or
	// completed booking.
	ErrBookingTerminal = errors.New("application: booking is terminal")
	// ErrInvalidTransition is returned when a lifecycle edge is not defined.
	ErrInvalidTransition = errors.New("application: invalid status transition")
	// ErrDuplicateMember is returned when a member email is already present
	// on the room.
	ErrDuplicateMember = errors.New("application: member already exists")
	// ErrMemberNotFound is returned when a member removal targets an absent
	// email.
	ErrMemberNotFound = errors.New("application: member not found")
	// ErrAlreadyAttendee is returned when a join targets an existing
	// attendee.
	ErrAlreadyAttendee = errors.New("application: already an attendee")
	// ErrAlreadyExists is returned when a record collides with an existing
	// unique value.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned on authentication failure.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token is past its TTL.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
