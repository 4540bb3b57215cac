package testfixtures

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/roombooking/internal/application"
	"github.com/example/roombooking/internal/interval"
	"github.com/example/roombooking/internal/persistence"
)

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the baseline booking day, pinned to midnight UTC.
func ReferenceDate() time.Time {
	return application.NormalizeDate(referenceTime)
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic account record usable in both
// application and persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) { f.Email = email }
}

// ToPersistence materialises the fixture as a storage model.
func (f UserFixture) ToPersistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ToApplication materialises the fixture as an application model.
func (f UserFixture) ToApplication() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ----------------------------- Room fixtures -----------------------------

// MemberFixture is one role-tagged membership entry on a room fixture.
type MemberFixture struct {
	Email   string
	Role    application.MemberRole
	AddedAt time.Time
}

// RoomFixture represents a deterministic room record with its member list.
type RoomFixture struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	Members     []MemberFixture
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Meeting Room %03d", idx),
		CreatedBy: fmt.Sprintf("user-%03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) { f.ID = id }
}

// WithRoomOwner overrides the creating user ID.
func WithRoomOwner(userID string) RoomOption {
	return func(f *RoomFixture) { f.CreatedBy = userID }
}

// WithRoomMember appends a member entry to the fixture.
func WithRoomMember(email string, role application.MemberRole) RoomOption {
	return func(f *RoomFixture) {
		f.Members = append(f.Members, MemberFixture{
			Email:   email,
			Role:    role,
			AddedAt: f.CreatedAt.Add(time.Duration(len(f.Members)) * time.Second),
		})
	}
}

// ToPersistence materialises the fixture as a storage model.
func (f RoomFixture) ToPersistence() persistence.Room {
	members := make([]persistence.RoomMember, 0, len(f.Members))
	for _, member := range f.Members {
		members = append(members, persistence.RoomMember{
			Email:   member.Email,
			Role:    string(member.Role),
			AddedAt: member.AddedAt,
		})
	}
	return persistence.Room{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedBy:   f.CreatedBy,
		Members:     members,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ToApplication materialises the fixture as an application model with its
// member map keyed by lowercased email.
func (f RoomFixture) ToApplication() application.Room {
	room := application.Room{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedBy:   f.CreatedBy,
		Members:     make(map[string]application.RoomMember, len(f.Members)),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	for _, member := range f.Members {
		room.Members[strings.ToLower(strings.TrimSpace(member.Email))] = application.RoomMember{
			Email:   member.Email,
			Role:    member.Role,
			AddedAt: member.AddedAt,
		}
	}
	return room
}

// ----------------------------- Booking fixtures -----------------------------

// BookingFixture represents a deterministic reservation record.
type BookingFixture struct {
	ID          string
	RoomID      string
	UserID      string
	Title       string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
	Status      application.BookingStatus
	Attendees   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic pending booking on the reference
// day. Consecutive fixtures occupy consecutive one-hour windows so they never
// conflict unless a test asks them to.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	startHour := 8 + int((idx-1)%10)
	fixture := BookingFixture{
		ID:        fmt.Sprintf("booking-%03d", idx),
		RoomID:    fmt.Sprintf("room-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Title:     fmt.Sprintf("Booking %03d", idx),
		Date:      ReferenceDate(),
		StartTime: fmt.Sprintf("%02d:00", startHour),
		EndTime:   fmt.Sprintf("%02d:00", startHour+1),
		Status:    application.StatusPending,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) { f.ID = id }
}

// WithBookingRoom pins the fixture to a room.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) { f.RoomID = roomID }
}

// WithBookingUser pins the fixture to a creating user.
func WithBookingUser(userID string) BookingOption {
	return func(f *BookingFixture) { f.UserID = userID }
}

// WithBookingWindow overrides the time window.
func WithBookingWindow(start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithBookingStatus overrides the lifecycle status.
func WithBookingStatus(status application.BookingStatus) BookingOption {
	return func(f *BookingFixture) { f.Status = status }
}

// WithBookingDate pins the fixture to a calendar day.
func WithBookingDate(date time.Time) BookingOption {
	return func(f *BookingFixture) { f.Date = application.NormalizeDate(date) }
}

// ToPersistence materialises the fixture as a storage model.
func (f BookingFixture) ToPersistence() persistence.Booking {
	return persistence.Booking{
		ID:          f.ID,
		RoomID:      f.RoomID,
		UserID:      f.UserID,
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		Status:      string(f.Status),
		Attendees:   append([]string(nil), f.Attendees...),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ToApplication materialises the fixture as an application model.
func (f BookingFixture) ToApplication() application.Booking {
	return application.Booking{
		ID:          f.ID,
		RoomID:      f.RoomID,
		UserID:      f.UserID,
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		StartTime:   interval.Clock(f.StartTime),
		EndTime:     interval.Clock(f.EndTime),
		Status:      f.Status,
		Attendees:   append([]string(nil), f.Attendees...),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}
