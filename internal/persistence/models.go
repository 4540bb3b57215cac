package persistence

import "time"

// User represents an account record stored for the booking application.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoomMember is one role-tagged membership row attached to a room.
type RoomMember struct {
	Email   string
	Role    string
	AddedAt time.Time
}

// Room represents a bookable meeting room and its member list. The room
// creator is never stored as a member row; owner authority is implicit.
type Room struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	Members     []RoomMember
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Booking represents a reservation of a room for a time window on one
// calendar day. StartTime and EndTime are zero-padded "HH:MM" strings
// describing the half-open interval [StartTime, EndTime).
type Booking struct {
	ID          string
	RoomID      string
	UserID      string
	Title       string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
	Status      string
	Attendees   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingFilter narrows booking list queries. Zero values match everything.
type BookingFilter struct {
	RoomID string
	UserID string
	Status string
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
