package application

import (
	"context"
	"fmt"
	"time"

	"github.com/example/roombooking/internal/interval"
)

// BookingSource exposes the single read the availability engine needs.
type BookingSource interface {
	GetBookingsForRoomOnDay(ctx context.Context, roomID string, date time.Time) ([]Booking, error)
}

// OperatingWindow describes the bookable hours of a day and the granularity
// of the availability partition.
type OperatingWindow struct {
	OpenHour    int
	CloseHour   int
	SlotMinutes int
}

// DefaultOperatingWindow mirrors the booking form: 08:00 to 18:00 in
// one-hour slots.
var DefaultOperatingWindow = OperatingWindow{OpenHour: 8, CloseHour: 18, SlotMinutes: 60}

func (w OperatingWindow) normalized() OperatingWindow {
	if w.OpenHour < 0 || w.CloseHour <= w.OpenHour || w.CloseHour > 24 {
		w.OpenHour = DefaultOperatingWindow.OpenHour
		w.CloseHour = DefaultOperatingWindow.CloseHour
	}
	if w.SlotMinutes <= 0 {
		w.SlotMinutes = DefaultOperatingWindow.SlotMinutes
	}
	return w
}

// AvailabilityEngine answers conflict and free-slot questions for a room and
// day. It holds no cross-call state; every answer is computed from the
// bookings read through the source.
type AvailabilityEngine struct {
	bookings BookingSource
	window   OperatingWindow
}

// NewAvailabilityEngine wires the engine to its booking source.
func NewAvailabilityEngine(bookings BookingSource, window OperatingWindow) *AvailabilityEngine {
	return &AvailabilityEngine{bookings: bookings, window: window.normalized()}
}

// BookingsForRoomOnDay returns every booking for the room on the given
// calendar day regardless of status. Callers doing conflict checks must
// restrict to blocking statuses themselves.
func (e *AvailabilityEngine) BookingsForRoomOnDay(ctx context.Context, roomID string, date time.Time) ([]Booking, error) {
	if e == nil || e.bookings == nil {
		return nil, fmt.Errorf("availability engine not configured")
	}
	return e.bookings.GetBookingsForRoomOnDay(ctx, roomID, NormalizeDate(date))
}

// IsAvailable reports whether the candidate interval is free of overlap with
// any blocking booking in the room on that day. The booking identified by
// excludeBookingID is skipped so an edit never conflicts with itself. The
// candidate is assumed to be validated (start < end) upstream.
func (e *AvailabilityEngine) IsAvailable(ctx context.Context, roomID string, date time.Time, candidate interval.Interval, excludeBookingID string) (bool, error) {
	bookings, err := e.BookingsForRoomOnDay(ctx, roomID, date)
	if err != nil {
		return false, err
	}

	for _, booking := range bookings {
		if excludeBookingID != "" && booking.ID == excludeBookingID {
			continue
		}
		if !booking.Status.Blocking() {
			continue
		}
		if candidate.Overlaps(booking.Window()) {
			return false, nil
		}
	}
	return true, nil
}

// AvailableSlots partitions the operating window into consecutive slots and
// flags each one unavailable when it overlaps a blocking booking. The
// partition is exhaustive and non-overlapping by construction.
func (e *AvailabilityEngine) AvailableSlots(ctx context.Context, roomID string, date time.Time) ([]TimeSlot, error) {
	bookings, err := e.BookingsForRoomOnDay(ctx, roomID, date)
	if err != nil {
		return nil, err
	}

	blocking := make([]Booking, 0, len(bookings))
	for _, booking := range bookings {
		if booking.Status.Blocking() {
			blocking = append(blocking, booking)
		}
	}

	window := e.window
	slots := make([]TimeSlot, 0, (window.CloseHour-window.OpenHour)*60/window.SlotMinutes)
	for start := window.OpenHour * 60; start+window.SlotMinutes <= window.CloseHour*60; start += window.SlotMinutes {
		slot := interval.Interval{
			Start: interval.ClockFromMinutes(start),
			End:   interval.ClockFromMinutes(start + window.SlotMinutes),
		}

		available := true
		for _, booking := range blocking {
			if slot.Overlaps(booking.Window()) {
				available = false
				break
			}
		}

		slots = append(slots, TimeSlot{
			StartTime:   slot.Start,
			EndTime:     slot.End,
			IsAvailable: available,
		})
	}
	return slots, nil
}

// NormalizeDate truncates a timestamp to midnight of its UTC calendar day,
// pinning every booking to exactly one day.
func NormalizeDate(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
