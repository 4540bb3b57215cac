package application

import (
	"sort"
	"strings"
	"time"

	"github.com/example/roombooking/internal/interval"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Email  string
}

// MemberRole is the closed set of roles a room member can hold.
type MemberRole string

const (
	// RoleAdmin grants management authority over a room short of deletion.
	RoleAdmin MemberRole = "admin"
	// RoleUser grants plain membership with no management authority.
	RoleUser MemberRole = "user"
)

// ParseMemberRole maps a raw string onto the closed role set.
func ParseMemberRole(value string) (MemberRole, bool) {
	switch MemberRole(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	}
	return "", false
}

// RoomMember is one role-tagged membership entry.
type RoomMember struct {
	Email   string
	Role    MemberRole
	AddedAt time.Time
}

// Room represents a bookable meeting room. Members are keyed by lowercased
// email, which makes duplicate detection structural rather than a scan over
// rows. The creator never appears in Members; owner authority is implicit
// and cannot be revoked through member removal.
type Room struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	Members     map[string]RoomMember
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleOf returns the role held by the given email, if any.
func (r Room) RoleOf(email string) (MemberRole, bool) {
	member, ok := r.Members[memberKey(email)]
	if !ok {
		return "", false
	}
	return member.Role, true
}

// CanManage reports whether the actor may edit the room or its bookings:
// the owner always may, as may members holding the admin role.
func (r Room) CanManage(actorID, actorEmail string) bool {
	if actorID != "" && actorID == r.CreatedBy {
		return true
	}
	role, ok := r.RoleOf(actorEmail)
	return ok && role == RoleAdmin
}

// CanDelete reports whether the actor may destroy the room. Deletion is
// owner-only, stricter than management.
func (r Room) CanDelete(actorID string) bool {
	return actorID != "" && actorID == r.CreatedBy
}

// MemberList returns members ordered by the time they were added.
func (r Room) MemberList() []RoomMember {
	members := make([]RoomMember, 0, len(r.Members))
	for _, member := range r.Members {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].AddedAt.Equal(members[j].AddedAt) {
			return members[i].Email < members[j].Email
		}
		return members[i].AddedAt.Before(members[j].AddedAt)
	})
	return members
}

func memberKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Booking represents a reservation of one room for a half-open time window
// [StartTime, EndTime) on a single calendar day.
type Booking struct {
	ID          string
	RoomID      string
	UserID      string
	Title       string
	Description string
	Date        time.Time
	StartTime   interval.Clock
	EndTime     interval.Clock
	Status      BookingStatus
	Attendees   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Window returns the booking's time-of-day interval.
func (b Booking) Window() interval.Interval {
	return interval.Interval{Start: b.StartTime, End: b.EndTime}
}

// HasAttendee reports whether the email is already in the attendee set,
// ignoring case.
func (b Booking) HasAttendee(email string) bool {
	target := memberKey(email)
	for _, attendee := range b.Attendees {
		if memberKey(attendee) == target {
			return true
		}
	}
	return false
}

// TimeSlot is one cell of the fixed-granularity availability partition of a
// day. It is derived from bookings and never persisted.
type TimeSlot struct {
	StartTime   interval.Clock
	EndTime     interval.Clock
	IsAvailable bool
}

// User represents an account surfaced by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingDetails couples a booking with its room and creator for display.
type BookingDetails struct {
	Booking Booking
	Room    Room
	User    User
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name        string
	Description string
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// AddMemberParams wraps the data required to add a room member.
type AddMemberParams struct {
	Principal Principal
	RoomID    string
	Email     string
	Role      MemberRole
}

// RemoveMemberParams wraps the data required to remove a room member.
type RemoveMemberParams struct {
	Principal Principal
	RoomID    string
	Email     string
}

// CreateBookingInput captures caller provided booking fields.
type CreateBookingInput struct {
	RoomID      string
	Title       string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
	Attendees   []string
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     CreateBookingInput
}

// UpdateBookingInput captures the optional fields of a booking edit. Nil
// pointers leave the current value untouched.
type UpdateBookingInput struct {
	Title       *string
	Description *string
	Date        *time.Time
	StartTime   *string
	EndTime     *string
}

// UpdateBookingParams wraps the data required to edit a booking.
type UpdateBookingParams struct {
	Principal Principal
	BookingID string
	Input     UpdateBookingInput
}

// BookingFilter narrows booking listings. Zero values match everything.
type BookingFilter struct {
	RoomID string
	UserID string
	Status BookingStatus
}
