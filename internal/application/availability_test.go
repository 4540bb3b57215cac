package application

import (
	"context"
	"testing"
	"time"

	"github.com/example/roombooking/internal/interval"
)

type bookingSourceStub struct {
	bookings []Booking
	err      error
}

func (s *bookingSourceStub) GetBookingsForRoomOnDay(ctx context.Context, roomID string, date time.Time) ([]Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	matched := make([]Booking, 0, len(s.bookings))
	for _, booking := range s.bookings {
		if booking.RoomID == roomID && booking.Date.Equal(NormalizeDate(date)) {
			matched = append(matched, booking)
		}
	}
	return matched, nil
}

func mustDay(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return parsed
}

func stubBooking(id, roomID, day, start, end string, status BookingStatus) Booking {
	parsed, _ := time.ParseInLocation("2006-01-02", day, time.UTC)
	return Booking{
		ID:        id,
		RoomID:    roomID,
		Date:      parsed,
		StartTime: interval.Clock(start),
		EndTime:   interval.Clock(end),
		Status:    status,
	}
}

func TestAvailabilityEngine_IsAvailable(t *testing.T) {
	ctx := context.Background()
	day := mustDay(t, "2024-06-01")
	source := &bookingSourceStub{bookings: []Booking{
		stubBooking("b1", "R1", "2024-06-01", "09:00", "10:00", StatusConfirmed),
		stubBooking("b2", "R1", "2024-06-01", "14:00", "15:00", StatusCancelled),
	}}
	engine := NewAvailabilityEngine(source, DefaultOperatingWindow)

	check := func(start, end, exclude string) bool {
		t.Helper()
		window, err := interval.New(start, end)
		if err != nil {
			t.Fatalf("interval.New(%s, %s): %v", start, end, err)
		}
		available, err := engine.IsAvailable(ctx, "R1", day, window, exclude)
		if err != nil {
			t.Fatalf("IsAvailable returned %v", err)
		}
		return available
	}

	t.Run("overlap with confirmed booking conflicts", func(t *testing.T) {
		if check("09:30", "10:30", "") {
			t.Fatalf("expected 09:30-10:30 to conflict with 09:00-10:00")
		}
	})

	t.Run("boundary touch is available", func(t *testing.T) {
		if !check("10:00", "11:00", "") {
			t.Fatalf("expected back-to-back interval to be available")
		}
	})

	t.Run("cancelled bookings never block", func(t *testing.T) {
		if !check("14:00", "15:00", "") {
			t.Fatalf("expected interval over a cancelled booking to be available")
		}
	})

	t.Run("a booking never conflicts with itself", func(t *testing.T) {
		if !check("09:00", "10:00", "b1") {
			t.Fatalf("expected self-excluded re-check to be available")
		}
	})

	t.Run("other days do not interfere", func(t *testing.T) {
		window, _ := interval.New("09:00", "10:00")
		available, err := engine.IsAvailable(ctx, "R1", mustDay(t, "2024-06-02"), window, "")
		if err != nil {
			t.Fatalf("IsAvailable returned %v", err)
		}
		if !available {
			t.Fatalf("expected another day to be free")
		}
	})
}

func TestAvailabilityEngine_AvailableSlots(t *testing.T) {
	ctx := context.Background()
	day := mustDay(t, "2024-06-01")
	source := &bookingSourceStub{bookings: []Booking{
		stubBooking("b1", "R1", "2024-06-01", "09:00", "10:00", StatusConfirmed),
	}}
	engine := NewAvailabilityEngine(source, DefaultOperatingWindow)

	slots, err := engine.AvailableSlots(ctx, "R1", day)
	if err != nil {
		t.Fatalf("AvailableSlots returned %v", err)
	}

	if len(slots) != 10 {
		t.Fatalf("expected 10 one-hour slots over 08:00-18:00, got %d", len(slots))
	}
	if slots[0].StartTime != "08:00" || slots[len(slots)-1].EndTime != "18:00" {
		t.Fatalf("partition does not span the operating window: %+v", slots)
	}

	unavailable := 0
	for i, slot := range slots {
		if i > 0 && slots[i-1].EndTime != slot.StartTime {
			t.Fatalf("partition has a gap between %v and %v", slots[i-1], slot)
		}
		if slot.StartTime == "09:00" {
			if slot.IsAvailable {
				t.Fatalf("expected 09:00-10:00 slot to be unavailable")
			}
			unavailable++
			continue
		}
		if !slot.IsAvailable {
			t.Fatalf("expected slot %v to be available", slot)
		}
	}
	if unavailable != 1 {
		t.Fatalf("expected exactly one unavailable slot, got %d", unavailable)
	}
}

func TestAvailabilityEngine_WindowConfiguration(t *testing.T) {
	ctx := context.Background()
	source := &bookingSourceStub{}

	t.Run("custom window and granularity", func(t *testing.T) {
		engine := NewAvailabilityEngine(source, OperatingWindow{OpenHour: 9, CloseHour: 12, SlotMinutes: 30})
		slots, err := engine.AvailableSlots(ctx, "R1", mustDay(t, "2024-06-01"))
		if err != nil {
			t.Fatalf("AvailableSlots returned %v", err)
		}
		if len(slots) != 6 {
			t.Fatalf("expected 6 half-hour slots over 09:00-12:00, got %d", len(slots))
		}
		if slots[1].StartTime != "09:30" {
			t.Fatalf("unexpected second slot %+v", slots[1])
		}
	})

	t.Run("invalid window falls back to default", func(t *testing.T) {
		engine := NewAvailabilityEngine(source, OperatingWindow{OpenHour: 18, CloseHour: 8})
		slots, err := engine.AvailableSlots(ctx, "R1", mustDay(t, "2024-06-01"))
		if err != nil {
			t.Fatalf("AvailableSlots returned %v", err)
		}
		if len(slots) != 10 {
			t.Fatalf("expected default partition, got %d slots", len(slots))
		}
	})
}

func TestNormalizeDate(t *testing.T) {
	stamp := time.Date(2024, 6, 1, 17, 45, 30, 0, time.UTC)
	normalized := NormalizeDate(stamp)
	if !normalized.Equal(mustDay(t, "2024-06-01")) {
		t.Fatalf("NormalizeDate(%v) = %v", stamp, normalized)
	}
}
