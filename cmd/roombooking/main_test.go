package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/roombooking/internal/application"
	"github.com/example/roombooking/internal/interval"
	"github.com/example/roombooking/internal/persistence"
)

func TestIsPublicRoute(t *testing.T) {
	cases := []struct {
		method string
		path   string
		public bool
	}{
		{http.MethodPost, "/sessions", true},
		{http.MethodPost, "/users", true},
		{http.MethodGet, "/users", false},
		{http.MethodDelete, "/sessions/current", false},
		{http.MethodPost, "/rooms", false},
		{http.MethodGet, "/bookings", false},
	}

	for _, tc := range cases {
		r := httptest.NewRequest(tc.method, tc.path, nil)
		if got := isPublicRoute(r); got != tc.public {
			t.Errorf("isPublicRoute(%s %s) = %v, want %v", tc.method, tc.path, got, tc.public)
		}
	}
}

func TestRoomModelConversion(t *testing.T) {
	addedAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	stored := persistence.Room{
		ID:        "room-1",
		Name:      "Large Conference",
		CreatedBy: "user-1",
		Members: []persistence.RoomMember{
			{Email: "Admin@Example.com", Role: "admin", AddedAt: addedAt},
			{Email: "plain@example.com", Role: "user", AddedAt: addedAt},
			{Email: "odd@example.com", Role: "not-a-role", AddedAt: addedAt},
		},
	}

	room := toApplicationRoom(stored)
	if len(room.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(room.Members))
	}
	if role, ok := room.RoleOf("admin@example.com"); !ok || role != application.RoleAdmin {
		t.Errorf("expected admin role to survive conversion, got %q (ok=%v)", role, ok)
	}
	if role, ok := room.RoleOf("odd@example.com"); !ok || role != application.RoleUser {
		t.Errorf("expected unknown role to degrade to user, got %q (ok=%v)", role, ok)
	}

	back := toPersistenceRoom(room)
	if len(back.Members) != 3 {
		t.Fatalf("expected 3 members after round trip, got %d", len(back.Members))
	}
	for _, member := range back.Members {
		if member.Role != "admin" && member.Role != "user" {
			t.Errorf("unexpected role %q after round trip", member.Role)
		}
	}
}

func TestBookingModelConversion(t *testing.T) {
	stored := persistence.Booking{
		ID:        "booking-1",
		RoomID:    "room-1",
		UserID:    "user-1",
		Title:     "Sprint Planning",
		Date:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "10:00",
		Status:    "confirmed",
		Attendees: []string{"a@example.com"},
	}

	booking := toApplicationBooking(stored)
	if booking.Status != application.StatusConfirmed {
		t.Errorf("expected confirmed status, got %q", booking.Status)
	}
	if booking.StartTime != interval.Clock("09:00") || booking.EndTime != interval.Clock("10:00") {
		t.Errorf("unexpected window %s-%s", booking.StartTime, booking.EndTime)
	}

	booking.Attendees = append(booking.Attendees, "b@example.com")
	if len(stored.Attendees) != 1 {
		t.Error("mutating the converted booking leaked into the source attendee slice")
	}

	back := toPersistenceBooking(booking)
	if back.Status != "confirmed" {
		t.Errorf("expected status string %q, got %q", "confirmed", back.Status)
	}
	if len(back.Attendees) != 2 {
		t.Errorf("expected 2 attendees after round trip, got %d", len(back.Attendees))
	}

	unknown := toApplicationBooking(persistence.Booking{ID: "booking-2", Status: "archived"})
	if unknown.Status != application.StatusPending {
		t.Errorf("expected unknown status to degrade to pending, got %q", unknown.Status)
	}
}
