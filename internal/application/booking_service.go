package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/roombooking/internal/interval"
	"github.com/example/roombooking/internal/persistence"
)

// BookingRepository captures the persistence interactions needed by the
// booking service. SaveBooking is an upsert returning the persisted form.
type BookingRepository interface {
	SaveBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	GetBookingsForRoomOnDay(ctx context.Context, roomID string, date time.Time) ([]Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// RoomLookup exposes the room read needed for authorization decisions.
type RoomLookup interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// UserDirectory exposes the user read needed to render booking details.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// BookingService orchestrates the reservation surface: create, update,
// join, lifecycle transitions, and deletion. Every operation is a single
// read-modify-write against the storage collaborator; the availability
// check and the subsequent write are deliberately not atomic (see the
// race test), so a caller losing that race simply re-fails with
// ErrTimeConflict on retry.
type BookingService struct {
	bookings     BookingRepository
	rooms        RoomLookup
	users        UserDirectory
	availability *AvailabilityEngine
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, rooms RoomLookup, users UserDirectory, availability *AvailabilityEngine, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, users, availability, idGenerator, now, nil)
}

// NewBookingServiceWithLogger wires dependencies with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomLookup, users UserDirectory, availability *AvailabilityEngine, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if availability == nil {
		availability = NewAvailabilityEngine(bookings, DefaultOperatingWindow)
	}
	return &BookingService{
		bookings:     bookings,
		rooms:        rooms,
		users:        users,
		availability: availability,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Availability exposes the engine backing this service for read-only
// projections such as free-slot listings.
func (s *BookingService) Availability() *AvailabilityEngine {
	if s == nil {
		return nil
	}
	return s.availability
}

// Create validates the request, checks the interval against existing
// blocking bookings, and persists a new pending booking.
func (s *BookingService) Create(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil || s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "Create",
		"principal_id", params.Principal.UserID,
		"room_id", input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	window, err := parseWindow(input.StartTime, input.EndTime)
	if err != nil {
		return
	}

	if s.rooms != nil {
		if _, err = s.rooms.GetRoom(ctx, input.RoomID); err != nil {
			err = mapBookingRepoError(err)
			return
		}
	}

	date := NormalizeDate(input.Date)
	available, err := s.availability.IsAvailable(ctx, input.RoomID, date, window, "")
	if err != nil {
		return
	}
	if !available {
		err = ErrTimeConflict
		return
	}

	createdAt := s.now()
	booking = Booking{
		ID:          s.idGenerator(),
		RoomID:      input.RoomID,
		UserID:      params.Principal.UserID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Date:        date,
		StartTime:   window.Start,
		EndTime:     window.End,
		Status:      StatusPending,
		Attendees:   uniqueEmails(input.Attendees),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	booking, err = s.bookings.SaveBooking(ctx, booking)
	if err != nil {
		err = mapBookingRepoError(err)
	}
	return
}

// Update edits a non-terminal booking. When any time-affecting field is
// supplied, the merged interval is re-checked for conflicts with the
// booking itself excluded. Edits require being the creator or holding
// management authority on the room.
func (s *BookingService) Update(ctx context.Context, params UpdateBookingParams) (booking Booking, err error) {
	if s == nil || s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking updated")
	}()

	existing, err := s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	if existing.Status.Terminal() {
		err = ErrBookingTerminal
		return
	}

	if err = s.authorizeEdit(ctx, params.Principal, existing); err != nil {
		return
	}

	input := params.Input
	updated := existing
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			vErr := &ValidationError{}
			vErr.add("title", "title is required")
			err = vErr
			return
		}
		updated.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}

	timeChanged := input.Date != nil || input.StartTime != nil || input.EndTime != nil
	if timeChanged {
		if input.Date != nil {
			updated.Date = NormalizeDate(*input.Date)
		}
		start := string(updated.StartTime)
		if input.StartTime != nil {
			start = *input.StartTime
		}
		end := string(updated.EndTime)
		if input.EndTime != nil {
			end = *input.EndTime
		}

		var window interval.Interval
		window, err = parseWindow(start, end)
		if err != nil {
			return
		}
		updated.StartTime = window.Start
		updated.EndTime = window.End

		var available bool
		available, err = s.availability.IsAvailable(ctx, updated.RoomID, updated.Date, window, existing.ID)
		if err != nil {
			return
		}
		if !available {
			err = ErrTimeConflict
			return
		}
	}

	updated.UpdatedAt = s.now()
	booking, err = s.bookings.SaveBooking(ctx, updated)
	if err != nil {
		err = mapBookingRepoError(err)
	}
	return
}

// Join appends an email to the attendee set of a non-terminal booking.
// Joining never moves the booking's interval, so no conflict check runs.
func (s *BookingService) Join(ctx context.Context, bookingID, email string) (booking Booking, err error) {
	if s == nil || s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Join",
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to join booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "attendee joined")
	}()

	if strings.TrimSpace(email) == "" {
		vErr := &ValidationError{}
		vErr.add("email", "email is required")
		err = vErr
		return
	}

	existing, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	if existing.HasAttendee(email) {
		err = ErrAlreadyAttendee
		return
	}
	if existing.Status.Terminal() {
		err = ErrBookingTerminal
		return
	}

	existing.Attendees = append(existing.Attendees, strings.TrimSpace(email))
	existing.UpdatedAt = s.now()

	booking, err = s.bookings.SaveBooking(ctx, existing)
	if err != nil {
		err = mapBookingRepoError(err)
	}
	return
}

// Cancel moves a booking to cancelled from any non-terminal state. A
// booking that is already cancelled is left untouched and reported as
// success; a completed booking cannot be cancelled. Cancellation only
// removes a blocking interval, so no availability re-check runs.
func (s *BookingService) Cancel(ctx context.Context, id string) (booking Booking, err error) {
	if s == nil || s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Cancel", "booking_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	existing, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	switch existing.Status {
	case StatusCancelled:
		// Re-cancelling is an idempotent no-op.
		booking = existing
		return
	case StatusCompleted:
		err = ErrBookingTerminal
		return
	}

	existing.Status, err = existing.Status.Transition(StatusCancelled)
	if err != nil {
		return
	}
	existing.UpdatedAt = s.now()

	booking, err = s.bookings.SaveBooking(ctx, existing)
	if err != nil {
		err = mapBookingRepoError(err)
	}
	return
}

// Confirm drives the pending -> confirmed lifecycle edge.
func (s *BookingService) Confirm(ctx context.Context, id string) (Booking, error) {
	return s.transition(ctx, "Confirm", id, StatusConfirmed)
}

// Complete drives the confirmed -> completed lifecycle edge.
func (s *BookingService) Complete(ctx context.Context, id string) (Booking, error) {
	return s.transition(ctx, "Complete", id, StatusCompleted)
}

func (s *BookingService) transition(ctx context.Context, operation, id string, to BookingStatus) (booking Booking, err error) {
	if s == nil || s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, operation, "booking_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to transition booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", string(to)).InfoContext(ctx, "booking transitioned")
	}()

	existing, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	existing.Status, err = existing.Status.Transition(to)
	if err != nil {
		return
	}
	existing.UpdatedAt = s.now()

	booking, err = s.bookings.SaveBooking(ctx, existing)
	if err != nil {
		err = mapBookingRepoError(err)
	}
	return
}

// Delete removes the booking record outright. Authorization is the
// caller's responsibility: gate on ownership or room management before
// invoking.
func (s *BookingService) Delete(ctx context.Context, id string) (err error) {
	if s == nil || s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "booking_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking deleted")
	}()

	if err = s.bookings.DeleteBooking(ctx, id); err != nil {
		err = mapBookingRepoError(err)
	}
	return
}

// Get fetches a booking together with its room and creator.
func (s *BookingService) Get(ctx context.Context, id string) (BookingDetails, error) {
	if s == nil || s.bookings == nil {
		return BookingDetails{}, fmt.Errorf("booking repository not configured")
	}

	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return BookingDetails{}, mapBookingRepoError(err)
	}

	details := BookingDetails{Booking: booking}
	if s.rooms != nil {
		if details.Room, err = s.rooms.GetRoom(ctx, booking.RoomID); err != nil {
			return BookingDetails{}, mapBookingRepoError(err)
		}
	}
	if s.users != nil {
		if details.User, err = s.users.GetUser(ctx, booking.UserID); err != nil {
			return BookingDetails{}, mapBookingRepoError(err)
		}
	}
	return details, nil
}

// List enumerates bookings matching the filter, most recent day first.
func (s *BookingService) List(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	if s == nil || s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}
	bookings, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	return bookings, nil
}

// UserBookings lists the bookings created by one user.
func (s *BookingService) UserBookings(ctx context.Context, userID string) ([]Booking, error) {
	return s.List(ctx, BookingFilter{UserID: userID})
}

// CanEdit reports whether the principal may edit the booking: its creator
// always may, as may anyone with management authority on the room.
func (s *BookingService) CanEdit(ctx context.Context, principal Principal, booking Booking) (bool, error) {
	err := s.authorizeEdit(ctx, principal, booking)
	if errors.Is(err, ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BookingService) authorizeEdit(ctx context.Context, principal Principal, booking Booking) error {
	if principal.UserID != "" && principal.UserID == booking.UserID {
		return nil
	}
	if s.rooms == nil {
		return ErrUnauthorized
	}
	room, err := s.rooms.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return mapBookingRepoError(err)
	}
	if room.CanManage(principal.UserID, principal.Email) {
		return nil
	}
	return ErrUnauthorized
}

// parseWindow validates a candidate [start, end) pair, folding both malformed
// clocks and inverted ranges into ErrInvalidTimeRange.
func parseWindow(start, end string) (interval.Interval, error) {
	window, err := interval.New(start, end)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	return window, nil
}

func uniqueEmails(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := memberKey(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		return ErrInvalidTimeRange
	}
	return err
}
