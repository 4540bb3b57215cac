package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/roombooking/internal/application"
	"github.com/example/roombooking/internal/persistence"
	"github.com/example/roombooking/internal/testfixtures"
)

// repoSet bundles the four repository interfaces so the same contract
// assertions run against every store implementation.
type repoSet struct {
	users    persistence.UserRepository
	rooms    persistence.RoomRepository
	bookings persistence.BookingRepository
	sessions persistence.SessionRepository
}

func forEachStore(t *testing.T, fn func(t *testing.T, repos repoSet)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		harness := testfixtures.NewSQLiteHarness(t)
		fn(t, repoSet{harness.Users, harness.Rooms, harness.Bookings, harness.Sessions})
	})
	t.Run("memory", func(t *testing.T) {
		harness := testfixtures.NewMemoryHarness()
		fn(t, repoSet{harness.Users, harness.Rooms, harness.Bookings, harness.Sessions})
	})
}

func TestUserRepository(t *testing.T) {
	forEachStore(t, func(t *testing.T, repos repoSet) {
		ctx := context.Background()

		user := testfixtures.NewUserFixture(
			testfixtures.WithUserID("user-alice"),
			testfixtures.WithUserEmail("alice@example.com"),
		).ToPersistence()

		if _, err := repos.users.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser returned error: %v", err)
		}

		fetched, err := repos.users.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUser returned error: %v", err)
		}
		if fetched.Email != user.Email || fetched.DisplayName != user.DisplayName {
			t.Fatalf("unexpected user after round trip: %+v", fetched)
		}

		byEmail, err := repos.users.GetUserByEmail(ctx, user.Email)
		if err != nil {
			t.Fatalf("GetUserByEmail returned error: %v", err)
		}
		if byEmail.PasswordHash != user.PasswordHash {
			t.Fatalf("expected password hash to survive storage, got %q", byEmail.PasswordHash)
		}

		duplicate := testfixtures.NewUserFixture(
			testfixtures.WithUserEmail("alice@example.com"),
		).ToPersistence()
		if _, err := repos.users.CreateUser(ctx, duplicate); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate for reused email, got %v", err)
		}

		if _, err := repos.users.GetUser(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
		}

		listed, err := repos.users.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers returned error: %v", err)
		}
		if len(listed) != 1 {
			t.Fatalf("expected 1 stored user, got %d", len(listed))
		}
	})
}

func TestRoomRepository(t *testing.T) {
	forEachStore(t, func(t *testing.T, repos repoSet) {
		ctx := context.Background()

		room := testfixtures.NewRoomFixture(
			testfixtures.WithRoomID("room-main"),
			testfixtures.WithRoomOwner("user-owner"),
			testfixtures.WithRoomMember("admin@example.com", application.RoleAdmin),
		).ToPersistence()

		if _, err := repos.rooms.SaveRoom(ctx, room); err != nil {
			t.Fatalf("SaveRoom returned error: %v", err)
		}

		fetched, err := repos.rooms.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom returned error: %v", err)
		}
		if fetched.CreatedBy != "user-owner" {
			t.Fatalf("unexpected owner %q", fetched.CreatedBy)
		}
		if len(fetched.Members) != 1 || fetched.Members[0].Email != "admin@example.com" {
			t.Fatalf("unexpected members after round trip: %+v", fetched.Members)
		}

		fetched.Name = "Renamed"
		fetched.Members = append(fetched.Members, persistence.RoomMember{
			Email:   "plain@example.com",
			Role:    "user",
			AddedAt: testfixtures.ReferenceTime().Add(time.Hour),
		})
		if _, err := repos.rooms.SaveRoom(ctx, fetched); err != nil {
			t.Fatalf("SaveRoom upsert returned error: %v", err)
		}

		updated, err := repos.rooms.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom after upsert returned error: %v", err)
		}
		if updated.Name != "Renamed" || len(updated.Members) != 2 {
			t.Fatalf("upsert did not replace room state: %+v", updated)
		}

		listed, err := repos.rooms.ListRooms(ctx)
		if err != nil {
			t.Fatalf("ListRooms returned error: %v", err)
		}
		if len(listed) != 1 {
			t.Fatalf("expected 1 stored room, got %d", len(listed))
		}

		if err := repos.rooms.DeleteRoom(ctx, room.ID); err != nil {
			t.Fatalf("DeleteRoom returned error: %v", err)
		}
		if _, err := repos.rooms.GetRoom(ctx, room.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repos.rooms.DeleteRoom(ctx, room.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound deleting a missing room, got %v", err)
		}
	})
}

func TestBookingRepository(t *testing.T) {
	forEachStore(t, func(t *testing.T, repos repoSet) {
		ctx := context.Background()
		day := testfixtures.ReferenceDate()

		early := testfixtures.NewBookingFixture(
			testfixtures.WithBookingID("bkg-early"),
			testfixtures.WithBookingRoom("room-main"),
			testfixtures.WithBookingDate(day),
			testfixtures.WithBookingWindow("09:00", "10:00"),
		).ToPersistence()
		late := testfixtures.NewBookingFixture(
			testfixtures.WithBookingID("bkg-late"),
			testfixtures.WithBookingRoom("room-main"),
			testfixtures.WithBookingDate(day),
			testfixtures.WithBookingWindow("14:00", "15:00"),
			testfixtures.WithBookingStatus(application.StatusCancelled),
		).ToPersistence()
		otherDay := testfixtures.NewBookingFixture(
			testfixtures.WithBookingID("bkg-tomorrow"),
			testfixtures.WithBookingRoom("room-main"),
			testfixtures.WithBookingDate(day.AddDate(0, 0, 1)),
			testfixtures.WithBookingWindow("09:00", "10:00"),
		).ToPersistence()

		for _, booking := range []persistence.Booking{early, late, otherDay} {
			if _, err := repos.bookings.SaveBooking(ctx, booking); err != nil {
				t.Fatalf("SaveBooking(%s) returned error: %v", booking.ID, err)
			}
		}

		onDay, err := repos.bookings.GetBookingsForRoomOnDay(ctx, "room-main", day)
		if err != nil {
			t.Fatalf("GetBookingsForRoomOnDay returned error: %v", err)
		}
		if len(onDay) != 2 {
			t.Fatalf("expected 2 bookings on the day, got %d", len(onDay))
		}
		if onDay[0].ID != "bkg-early" || onDay[1].ID != "bkg-late" {
			t.Fatalf("expected start-time ordering, got %s then %s", onDay[0].ID, onDay[1].ID)
		}

		cancelled, err := repos.bookings.ListBookings(ctx, persistence.BookingFilter{Status: "cancelled"})
		if err != nil {
			t.Fatalf("ListBookings returned error: %v", err)
		}
		if len(cancelled) != 1 || cancelled[0].ID != "bkg-late" {
			t.Fatalf("unexpected status filter result: %+v", cancelled)
		}

		if err := repos.bookings.DeleteBooking(ctx, "bkg-early"); err != nil {
			t.Fatalf("DeleteBooking returned error: %v", err)
		}
		if _, err := repos.bookings.GetBooking(ctx, "bkg-early"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	forEachStore(t, func(t *testing.T, repos repoSet) {
		ctx := context.Background()
		clock := testfixtures.NewClock(time.Time{})
		ids := testfixtures.NewIDGenerator("ses")
		now := clock.Now()

		live := persistence.Session{
			ID:        ids.Next(),
			UserID:    "user-alice",
			Token:     "token-live",
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
		}
		stale := persistence.Session{
			ID:        ids.Next(),
			UserID:    "user-alice",
			Token:     "token-stale",
			ExpiresAt: now.Add(-time.Hour),
			CreatedAt: now.Add(-2 * time.Hour),
		}

		for _, session := range []persistence.Session{live, stale} {
			if _, err := repos.sessions.CreateSession(ctx, session); err != nil {
				t.Fatalf("CreateSession(%s) returned error: %v", session.ID, err)
			}
		}

		if _, err := repos.sessions.CreateSession(ctx, live); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate for reused token, got %v", err)
		}

		fetched, err := repos.sessions.GetSession(ctx, live.Token)
		if err != nil {
			t.Fatalf("GetSession returned error: %v", err)
		}
		if fetched.UserID != live.UserID || fetched.RevokedAt != nil {
			t.Fatalf("unexpected session after round trip: %+v", fetched)
		}

		if err := repos.sessions.RevokeSession(ctx, live.Token, now.Add(time.Minute)); err != nil {
			t.Fatalf("RevokeSession returned error: %v", err)
		}
		revoked, err := repos.sessions.GetSession(ctx, live.Token)
		if err != nil {
			t.Fatalf("GetSession after revoke returned error: %v", err)
		}
		if revoked.RevokedAt == nil {
			t.Fatal("expected RevokedAt to be set after revoke")
		}

		clock.Advance(30 * time.Minute)
		if err := repos.sessions.DeleteExpiredSessions(ctx, clock.Now()); err != nil {
			t.Fatalf("DeleteExpiredSessions returned error: %v", err)
		}
		if _, err := repos.sessions.GetSession(ctx, stale.Token); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected expired session to be gone, got %v", err)
		}
		if _, err := repos.sessions.GetSession(ctx, live.Token); err != nil {
			t.Fatalf("expected live session to survive pruning, got %v", err)
		}
	})
}
