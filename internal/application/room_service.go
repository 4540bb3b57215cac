package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/roombooking/internal/persistence"
)

// RoomRepository captures the persistence interactions needed by the room
// service. SaveRoom is an upsert returning the persisted form.
type RoomRepository interface {
	SaveRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// RoomService orchestrates validation, authorization, and persistence for
// rooms and their member lists.
type RoomService struct {
	rooms       RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom persists a new room owned by the acting principal.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil || s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	room = Room{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(params.Input.Name),
		Description: strings.TrimSpace(params.Input.Description),
		CreatedBy:   params.Principal.UserID,
		Members:     make(map[string]RoomMember),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	room, err = s.rooms.SaveRoom(ctx, room)
	if err != nil {
		err = mapRoomRepoError(err)
	}
	return
}

// UpdateRoom applies display-attribute edits for owners and admin members.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil || s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	existing, err := s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	if !existing.CanManage(params.Principal.UserID, params.Principal.Email) {
		err = ErrUnauthorized
		return
	}

	vErr := validateRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing.Name = strings.TrimSpace(params.Input.Name)
	existing.Description = strings.TrimSpace(params.Input.Description)
	existing.UpdatedAt = s.now()

	room, err = s.rooms.SaveRoom(ctx, existing)
	if err != nil {
		err = mapRoomRepoError(err)
	}
	return
}

// DeleteRoom destroys a room. Delete authority is owner-only.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID string) (err error) {
	if s == nil || s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"principal_id", principal.UserID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room deleted")
	}()

	existing, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return mapRoomRepoError(err)
	}

	if !existing.CanDelete(principal.UserID) {
		return ErrUnauthorized
	}

	if err = s.rooms.DeleteRoom(ctx, roomID); err != nil {
		return mapRoomRepoError(err)
	}
	return nil
}

// GetRoom fetches a single room.
func (s *RoomService) GetRoom(ctx context.Context, id string) (Room, error) {
	if s == nil || s.rooms == nil {
		return Room{}, fmt.Errorf("room repository not configured")
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return room, nil
}

// ListRooms enumerates all rooms ordered by name.
func (s *RoomService) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapRoomRepoError(err)
	}
	return rooms, nil
}

// AddMember appends a role-tagged member to a room. Duplicate emails are
// rejected, never merged.
func (s *RoomService) AddMember(ctx context.Context, params AddMemberParams) (room Room, err error) {
	if s == nil || s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "AddMember",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add member", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "member added")
	}()

	email := strings.TrimSpace(params.Email)
	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	}
	if _, ok := ParseMemberRole(string(params.Role)); !ok {
		vErr.add("role", "role must be admin or user")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing, err := s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	if !existing.CanManage(params.Principal.UserID, params.Principal.Email) {
		err = ErrUnauthorized
		return
	}

	key := memberKey(email)
	if _, ok := existing.Members[key]; ok {
		err = ErrDuplicateMember
		return
	}

	if existing.Members == nil {
		existing.Members = make(map[string]RoomMember)
	}
	existing.Members[key] = RoomMember{Email: email, Role: params.Role, AddedAt: s.now()}
	existing.UpdatedAt = s.now()

	room, err = s.rooms.SaveRoom(ctx, existing)
	if err != nil {
		err = mapRoomRepoError(err)
	}
	return
}

// RemoveMember removes the member entry matching the email.
func (s *RoomService) RemoveMember(ctx context.Context, params RemoveMemberParams) (room Room, err error) {
	if s == nil || s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "RemoveMember",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to remove member", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "member removed")
	}()

	existing, err := s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	if !existing.CanManage(params.Principal.UserID, params.Principal.Email) {
		err = ErrUnauthorized
		return
	}

	key := memberKey(params.Email)
	if _, ok := existing.Members[key]; !ok {
		err = ErrMemberNotFound
		return
	}

	delete(existing.Members, key)
	existing.UpdatedAt = s.now()

	room, err = s.rooms.SaveRoom(ctx, existing)
	if err != nil {
		err = mapRoomRepoError(err)
	}
	return
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	return vErr
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrDuplicateMember
	}
	return err
}
