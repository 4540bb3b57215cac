package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/roombooking/internal/persistence"
)

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestStore_Rooms(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	t.Run("save and get round trip", func(t *testing.T) {
		room := persistence.Room{
			ID:        "room-1",
			Name:      "Boardroom",
			CreatedBy: "u1",
			Members: []persistence.RoomMember{
				{Email: "alice@example.com", Role: "admin", AddedAt: day("2024-06-01")},
			},
		}
		if _, err := store.SaveRoom(ctx, room); err != nil {
			t.Fatalf("SaveRoom returned %v", err)
		}

		got, err := store.GetRoom(ctx, "room-1")
		if err != nil {
			t.Fatalf("GetRoom returned %v", err)
		}
		if got.Name != "Boardroom" || len(got.Members) != 1 {
			t.Fatalf("unexpected room %+v", got)
		}
	})

	t.Run("rejects duplicate member emails", func(t *testing.T) {
		room := persistence.Room{
			ID: "room-2",
			Members: []persistence.RoomMember{
				{Email: "bob@example.com", Role: "user"},
				{Email: "BOB@example.com", Role: "admin"},
			},
		}
		if _, err := store.SaveRoom(ctx, room); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
		}
	})

	t.Run("get returns clones", func(t *testing.T) {
		got, err := store.GetRoom(ctx, "room-1")
		if err != nil {
			t.Fatalf("GetRoom returned %v", err)
		}
		got.Members[0].Email = "mutated@example.com"

		again, err := store.GetRoom(ctx, "room-1")
		if err != nil {
			t.Fatalf("GetRoom returned %v", err)
		}
		if again.Members[0].Email != "alice@example.com" {
			t.Fatalf("stored room mutated through returned copy")
		}
	})

	t.Run("delete unknown room", func(t *testing.T) {
		if err := store.DeleteRoom(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
	})

	t.Run("list ordered by name", func(t *testing.T) {
		if _, err := store.SaveRoom(ctx, persistence.Room{ID: "room-3", Name: "Annex"}); err != nil {
			t.Fatalf("SaveRoom returned %v", err)
		}
		rooms, err := store.ListRooms(ctx)
		if err != nil {
			t.Fatalf("ListRooms returned %v", err)
		}
		if len(rooms) != 2 || rooms[0].Name != "Annex" || rooms[1].Name != "Boardroom" {
			t.Fatalf("unexpected ordering %+v", rooms)
		}
	})
}

func TestStore_Bookings(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	base := persistence.Booking{
		RoomID:    "room-1",
		UserID:    "u1",
		Date:      day("2024-06-01"),
		Status:    "pending",
		Attendees: []string{"alice@example.com"},
	}

	first := base
	first.ID = "b1"
	first.StartTime, first.EndTime = "09:00", "10:00"
	second := base
	second.ID = "b2"
	second.StartTime, second.EndTime = "13:00", "14:00"
	otherDay := base
	otherDay.ID = "b3"
	otherDay.Date = day("2024-06-02")
	otherDay.StartTime, otherDay.EndTime = "09:00", "10:00"

	for _, booking := range []persistence.Booking{first, second, otherDay} {
		if _, err := store.SaveBooking(ctx, booking); err != nil {
			t.Fatalf("SaveBooking(%s) returned %v", booking.ID, err)
		}
	}

	t.Run("rejects inverted interval", func(t *testing.T) {
		bad := base
		bad.ID = "b4"
		bad.StartTime, bad.EndTime = "10:00", "09:00"
		if _, err := store.SaveBooking(ctx, bad); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected persistence.ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("day query pins to the calendar day", func(t *testing.T) {
		bookings, err := store.GetBookingsForRoomOnDay(ctx, "room-1", day("2024-06-01"))
		if err != nil {
			t.Fatalf("GetBookingsForRoomOnDay returned %v", err)
		}
		if len(bookings) != 2 {
			t.Fatalf("expected 2 bookings, got %d", len(bookings))
		}
		if bookings[0].ID != "b1" || bookings[1].ID != "b2" {
			t.Fatalf("unexpected ordering %+v", bookings)
		}
	})

	t.Run("list filters by user and status", func(t *testing.T) {
		bookings, err := store.ListBookings(ctx, persistence.BookingFilter{UserID: "u1", Status: "pending"})
		if err != nil {
			t.Fatalf("ListBookings returned %v", err)
		}
		if len(bookings) != 3 {
			t.Fatalf("expected 3 bookings, got %d", len(bookings))
		}
		// Date descending.
		if bookings[0].ID != "b3" {
			t.Fatalf("expected most recent day first, got %+v", bookings[0])
		}
	})

	t.Run("delete then get", func(t *testing.T) {
		if err := store.DeleteBooking(ctx, "b2"); err != nil {
			t.Fatalf("DeleteBooking returned %v", err)
		}
		if _, err := store.GetBooking(ctx, "b2"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected persistence.ErrNotFound, got %v", err)
		}
	})
}

func TestStore_Sessions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := day("2024-06-01")

	session := persistence.Session{ID: "s1", UserID: "u1", Token: "tok", ExpiresAt: now.Add(time.Hour)}
	if _, err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession returned %v", err)
	}
	if _, err := store.CreateSession(ctx, session); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
	}

	if err := store.RevokeSession(ctx, "tok", now); err != nil {
		t.Fatalf("RevokeSession returned %v", err)
	}
	got, err := store.GetSession(ctx, "tok")
	if err != nil {
		t.Fatalf("GetSession returned %v", err)
	}
	if got.RevokedAt == nil {
		t.Fatalf("expected revoked session")
	}

	if err := store.DeleteExpiredSessions(ctx, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("DeleteExpiredSessions returned %v", err)
	}
	if _, err := store.GetSession(ctx, "tok"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected persistence.ErrNotFound after cleanup, got %v", err)
	}
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	user := persistence.User{ID: "u1", Email: "alice@example.com", DisplayName: "Alice"}
	if _, err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser returned %v", err)
	}

	dup := persistence.User{ID: "u2", Email: "ALICE@example.com"}
	if _, err := store.CreateUser(ctx, dup); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "Alice@Example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail returned %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("unexpected user %+v", got)
	}
}
