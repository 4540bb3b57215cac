package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/roombooking/internal/application"
)

type bookingService interface {
	Create(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	Update(ctx context.Context, params application.UpdateBookingParams) (application.Booking, error)
	Join(ctx context.Context, bookingID, email string) (application.Booking, error)
	Cancel(ctx context.Context, id string) (application.Booking, error)
	Confirm(ctx context.Context, id string) (application.Booking, error)
	Complete(ctx context.Context, id string) (application.Booking, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (application.BookingDetails, error)
	List(ctx context.Context, filter application.BookingFilter) ([]application.Booking, error)
	CanEdit(ctx context.Context, principal application.Principal, booking application.Booking) (bool, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", input.RoomID)

	booking, err := h.service.Create(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req updateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "booking_id", bookingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "booking_id", bookingID)

	booking, err := h.service.Update(r.Context(), application.UpdateBookingParams{
		Principal: principal,
		BookingID: bookingID,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	details, err := h.service.Get(r.Context(), bookingID)
	if err != nil {
		h.log(r.Context(), "Get", "booking_id", bookingID).ErrorContext(r.Context(), "booking fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingDetailsResponse{
		Booking: toBookingDTO(details.Booking),
		Room:    toRoomDTO(details.Room),
		User:    toUserDTO(details.User),
	})
}

// List enumerates bookings, narrowed by the room_id, user_id, status, and
// mine query parameters.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	filter := application.BookingFilter{
		RoomID: strings.TrimSpace(query.Get("room_id")),
		UserID: strings.TrimSpace(query.Get("user_id")),
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, ok := application.ParseBookingStatus(raw)
		if !ok {
			h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Message: "unknown booking status " + raw})
			return
		}
		filter.Status = status
	}
	if strings.EqualFold(query.Get("mine"), "true") {
		principal, _ := PrincipalFromContext(r.Context())
		filter.UserID = principal.UserID
	}

	bookings, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "booking listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		dtos = append(dtos, toBookingDTO(booking))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingListResponse{Bookings: dtos})
}

func (h *BookingHandler) Join(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Join", "principal_id", principal.UserID, "booking_id", bookingID)

	booking, err := h.service.Join(r.Context(), bookingID, principal.Email)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking join failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "attendee joined")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "Cancel", func(ctx context.Context, id string) (application.Booking, error) {
		return h.service.Cancel(ctx, id)
	})
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "Confirm", func(ctx context.Context, id string) (application.Booking, error) {
		return h.service.Confirm(ctx, id)
	})
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "Complete", func(ctx context.Context, id string) (application.Booking, error) {
		return h.service.Complete(ctx, id)
	})
}

// lifecycle gates a status transition on edit authority before applying it.
func (h *BookingHandler) lifecycle(w http.ResponseWriter, r *http.Request, operation string, apply func(context.Context, string) (application.Booking, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "booking_id", bookingID)

	if err := h.authorize(r.Context(), principal, bookingID); err != nil {
		logger.ErrorContext(r.Context(), "booking transition rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	booking, err := apply(r.Context(), bookingID)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(booking.Status)).InfoContext(r.Context(), "booking transitioned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "booking_id", bookingID)

	if err := h.authorize(r.Context(), principal, bookingID); err != nil {
		logger.ErrorContext(r.Context(), "booking deletion rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if err := h.service.Delete(r.Context(), bookingID); err != nil {
		logger.ErrorContext(r.Context(), "booking deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) authorize(ctx context.Context, principal application.Principal, bookingID string) error {
	details, err := h.service.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	allowed, err := h.service.CanEdit(ctx, principal, details.Booking)
	if err != nil {
		return err
	}
	if !allowed {
		return application.ErrUnauthorized
	}
	return nil
}

type createBookingRequest struct {
	RoomID      string   `json:"room_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Attendees   []string `json:"attendees"`
}

func (r createBookingRequest) toInput() (application.CreateBookingInput, error) {
	input := application.CreateBookingInput{
		RoomID:      r.RoomID,
		Title:       r.Title,
		Description: r.Description,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Attendees:   r.Attendees,
	}
	if strings.TrimSpace(r.Date) != "" {
		date, err := time.ParseInLocation("2006-01-02", r.Date, time.UTC)
		if err != nil {
			return application.CreateBookingInput{}, errInvalidDate
		}
		input.Date = date
	}
	return input, nil
}

type updateBookingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}

func (r updateBookingRequest) toInput() (application.UpdateBookingInput, error) {
	input := application.UpdateBookingInput{
		Title:       r.Title,
		Description: r.Description,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
	}
	if r.Date != nil {
		date, err := time.ParseInLocation("2006-01-02", *r.Date, time.UTC)
		if err != nil {
			return application.UpdateBookingInput{}, errInvalidDate
		}
		input.Date = &date
	}
	return input, nil
}

type bookingDTO struct {
	ID          string   `json:"id"`
	RoomID      string   `json:"room_id"`
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Status      string   `json:"status"`
	Attendees   []string `json:"attendees"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type bookingDetailsResponse struct {
	Booking bookingDTO `json:"booking"`
	Room    roomDTO    `json:"room"`
	User    userDTO    `json:"user"`
}

type bookingListResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	attendees := booking.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	dto := bookingDTO{
		ID:          booking.ID,
		RoomID:      booking.RoomID,
		UserID:      booking.UserID,
		Title:       booking.Title,
		Description: booking.Description,
		Date:        booking.Date.Format("2006-01-02"),
		StartTime:   string(booking.StartTime),
		EndTime:     string(booking.EndTime),
		Status:      string(booking.Status),
		Attendees:   attendees,
	}
	if !booking.CreatedAt.IsZero() {
		dto.CreatedAt = booking.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !booking.UpdatedAt.IsZero() {
		dto.UpdatedAt = booking.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
