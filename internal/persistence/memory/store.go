// Package memory provides a map-backed implementation of the persistence
// repositories. It backs tests and fixtures where a database is unwanted.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/roombooking/internal/persistence"
)

// Store holds all records in process memory guarded by a single lock.
type Store struct {
	mu       sync.RWMutex
	users    map[string]persistence.User
	rooms    map[string]persistence.Room
	bookings map[string]persistence.Booking
	sessions map[string]persistence.Session
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]persistence.User),
		rooms:    make(map[string]persistence.Room),
		bookings: make(map[string]persistence.Booking),
		sessions: make(map[string]persistence.Session),
	}
}

// --- UserRepository implementation ---

// CreateUser stores a new user, enforcing email uniqueness.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.User{}, persistence.ErrDuplicate
	}
	lower := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == lower {
			return persistence.User{}, persistence.ErrDuplicate
		}
	}

	s.users[user.ID] = user
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, user := range s.users {
		if strings.ToLower(user.Email) == lower {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// --- RoomRepository implementation ---

// SaveRoom inserts or replaces a room record.
func (s *Store) SaveRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(room.Members))
	for _, member := range room.Members {
		key := strings.ToLower(member.Email)
		if _, ok := seen[key]; ok {
			return persistence.Room{}, persistence.ErrDuplicate
		}
		seen[key] = struct{}{}
	}

	s.rooms[room.ID] = cloneRoom(room)
	return cloneRoom(room), nil
}

// GetRoom retrieves a room by ID.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return cloneRoom(room), nil
}

// ListRooms returns all rooms ordered by name.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, cloneRoom(room))
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// DeleteRoom removes a room by ID.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

// --- BookingRepository implementation ---

// SaveBooking inserts or replaces a booking record.
func (s *Store) SaveBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.StartTime >= booking.EndTime {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}

	s.bookings[booking.ID] = cloneBooking(booking)
	return cloneBooking(booking), nil
}

// GetBooking retrieves a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return cloneBooking(booking), nil
}

// GetBookingsForRoomOnDay returns bookings for the room on the given calendar
// day, any status, ordered by start time.
func (s *Store) GetBookingsForRoomOnDay(ctx context.Context, roomID string, date time.Time) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]persistence.Booking, 0)
	for _, booking := range s.bookings {
		if booking.RoomID != roomID {
			continue
		}
		if !sameDay(booking.Date, date) {
			continue
		}
		bookings = append(bookings, cloneBooking(booking))
	}
	sortBookingsByStart(bookings)
	return bookings, nil
}

// ListBookings returns bookings matching the filter ordered by date
// descending, matching the listing order of the booking UI.
func (s *Store) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]persistence.Booking, 0)
	for _, booking := range s.bookings {
		if filter.RoomID != "" && booking.RoomID != filter.RoomID {
			continue
		}
		if filter.UserID != "" && booking.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && booking.Status != filter.Status {
			continue
		}
		bookings = append(bookings, cloneBooking(booking))
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Date.Equal(bookings[j].Date) {
			if bookings[i].StartTime == bookings[j].StartTime {
				return bookings[i].ID < bookings[j].ID
			}
			return bookings[i].StartTime < bookings[j].StartTime
		}
		return bookings[i].Date.After(bookings[j].Date)
	})
	return bookings, nil
}

// DeleteBooking removes a booking by ID.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

// --- SessionRepository implementation ---

// CreateSession stores a new session, enforcing token uniqueness.
func (s *Store) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	s.sessions[session.Token] = session
	return session, nil
}

// GetSession retrieves a session by token.
func (s *Store) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

// RevokeSession marks a session revoked at the given instant.
func (s *Store) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.ErrNotFound
	}
	at := revokedAt
	session.RevokedAt = &at
	s.sessions[token] = session
	return nil
}

// DeleteExpiredSessions drops sessions whose expiry precedes the reference.
func (s *Store) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// --- Helpers ---

func cloneRoom(room persistence.Room) persistence.Room {
	members := make([]persistence.RoomMember, len(room.Members))
	copy(members, room.Members)
	room.Members = members
	return room
}

func cloneBooking(booking persistence.Booking) persistence.Booking {
	attendees := make([]string, len(booking.Attendees))
	copy(attendees, booking.Attendees)
	booking.Attendees = attendees
	return booking
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func sortBookingsByStart(bookings []persistence.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].StartTime == bookings[j].StartTime {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].StartTime < bookings[j].StartTime
	})
}
