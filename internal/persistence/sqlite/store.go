package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/roombooking/internal/persistence"
)

const (
	timestampLayout = time.RFC3339
	dateLayout      = "2006-01-02"
)

// --- UserRepository implementation ---

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email. The column collates NOCASE so
// lookups are case-insensitive.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at, updated_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at, updated_at
		 FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	users := make([]persistence.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &createdAt, &updatedAt); err != nil {
		return persistence.User{}, mapError(err)
	}
	var err error
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

// --- RoomRepository implementation ---

// SaveRoom upserts a room together with its member rows.
func (s *Store) SaveRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (id, name, description, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				updated_at = excluded.updated_at`,
			room.ID, room.Name, room.Description, room.CreatedBy,
			formatTime(room.CreatedAt), formatTime(room.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM room_members WHERE room_id = ?`, room.ID); err != nil {
			return mapError(err)
		}
		for _, member := range room.Members {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO room_members (room_id, email, role, added_at) VALUES (?, ?, ?, ?)`,
				room.ID, member.Email, member.Role, formatTime(member.AddedAt),
			)
			if err != nil {
				return mapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return persistence.Room{}, err
	}
	return s.GetRoom(ctx, room.ID)
}

// GetRoom retrieves a room with its members.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_by, created_at, updated_at
		 FROM rooms WHERE id = ?`, id)

	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, err
	}

	room.Members, err = s.roomMembers(ctx, id)
	if err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

// ListRooms returns all rooms with members, ordered by name.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_by, created_at, updated_at
		 FROM rooms ORDER BY name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range rooms {
		rooms[i].Members, err = s.roomMembers(ctx, rooms[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// DeleteRoom removes a room; member rows cascade.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (s *Store) roomMembers(ctx context.Context, roomID string) ([]persistence.RoomMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, role, added_at FROM room_members WHERE room_id = ? ORDER BY added_at, email`, roomID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	members := make([]persistence.RoomMember, 0)
	for rows.Next() {
		var member persistence.RoomMember
		var addedAt string
		if err := rows.Scan(&member.Email, &member.Role, &addedAt); err != nil {
			return nil, mapError(err)
		}
		if member.AddedAt, err = parseTime(addedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var createdAt, updatedAt string
	if err := row.Scan(&room.ID, &room.Name, &room.Description, &room.CreatedBy, &createdAt, &updatedAt); err != nil {
		return persistence.Room{}, mapError(err)
	}
	var err error
	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

// --- BookingRepository implementation ---

// SaveBooking upserts a booking together with its attendee rows.
func (s *Store) SaveBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (id, room_id, user_id, title, description, date, start_time, end_time, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				date = excluded.date,
				start_time = excluded.start_time,
				end_time = excluded.end_time,
				status = excluded.status,
				updated_at = excluded.updated_at`,
			booking.ID, booking.RoomID, booking.UserID, booking.Title, booking.Description,
			booking.Date.UTC().Format(dateLayout), booking.StartTime, booking.EndTime,
			booking.Status, formatTime(booking.CreatedAt), formatTime(booking.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM booking_attendees WHERE booking_id = ?`, booking.ID); err != nil {
			return mapError(err)
		}
		for _, email := range booking.Attendees {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO booking_attendees (booking_id, email) VALUES (?, ?)`,
				booking.ID, email,
			)
			if err != nil {
				return mapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return s.GetBooking(ctx, booking.ID)
}

// GetBooking retrieves a booking with its attendees.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, room_id, user_id, title, description, date, start_time, end_time, status, created_at, updated_at
		 FROM bookings WHERE id = ?`, id)

	booking, err := scanBooking(row)
	if err != nil {
		return persistence.Booking{}, err
	}

	booking.Attendees, err = s.bookingAttendees(ctx, id)
	if err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}

// GetBookingsForRoomOnDay returns bookings for the room on the exact
// calendar day, any status, ordered by start time.
func (s *Store) GetBookingsForRoomOnDay(ctx context.Context, roomID string, date time.Time) ([]persistence.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, user_id, title, description, date, start_time, end_time, status, created_at, updated_at
		 FROM bookings WHERE room_id = ? AND date = ? ORDER BY start_time, id`,
		roomID, date.UTC().Format(dateLayout))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return s.collectBookings(ctx, rows)
}

// ListBookings returns bookings matching the filter ordered by date descending.
func (s *Store) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `SELECT id, room_id, user_id, title, description, date, start_time, end_time, status, created_at, updated_at
		 FROM bookings WHERE 1 = 1`
	args := make([]any, 0, 3)
	if filter.RoomID != "" {
		query += ` AND room_id = ?`
		args = append(args, filter.RoomID)
	}
	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY date DESC, start_time, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	return s.collectBookings(ctx, rows)
}

// DeleteBooking removes a booking; attendee rows cascade.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (s *Store) collectBookings(ctx context.Context, rows *sql.Rows) ([]persistence.Booking, error) {
	bookings := make([]persistence.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	var err error
	for i := range bookings {
		bookings[i].Attendees, err = s.bookingAttendees(ctx, bookings[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

func (s *Store) bookingAttendees(ctx context.Context, bookingID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email FROM booking_attendees WHERE booking_id = ? ORDER BY email`, bookingID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	attendees := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, mapError(err)
		}
		attendees = append(attendees, email)
	}
	return attendees, rows.Err()
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var date, createdAt, updatedAt string
	err := row.Scan(
		&booking.ID, &booking.RoomID, &booking.UserID, &booking.Title, &booking.Description,
		&date, &booking.StartTime, &booking.EndTime, &booking.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}

	if booking.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
		return persistence.Booking{}, fmt.Errorf("sqlite: parse booking date %q: %w", date, err)
	}
	if booking.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if booking.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}

// --- SessionRepository implementation ---

// CreateSession inserts a new session row.
func (s *Store) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at, revoked_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		session.ID, session.UserID, session.Token,
		formatTime(session.ExpiresAt), formatTime(session.CreatedAt),
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	return session, nil
}

// GetSession retrieves a session by token.
func (s *Store) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, token, expires_at, created_at, revoked_at
		 FROM sessions WHERE token = ?`, token)

	var session persistence.Session
	var expiresAt, createdAt string
	var revokedAt sql.NullString
	if err := row.Scan(&session.ID, &session.UserID, &session.Token, &expiresAt, &createdAt, &revokedAt); err != nil {
		return persistence.Session{}, mapError(err)
	}

	var err error
	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if revokedAt.Valid {
		at, err := parseTime(revokedAt.String)
		if err != nil {
			return persistence.Session{}, err
		}
		session.RevokedAt = &at
	}
	return session, nil
}

// RevokeSession stamps a session revoked.
func (s *Store) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE token = ?`,
		formatTime(revokedAt), token)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// DeleteExpiredSessions drops sessions whose expiry precedes the reference.
func (s *Store) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, formatTime(reference))
	return mapError(err)
}

// --- Helpers ---

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(value string) (time.Time, error) {
	parsed, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
