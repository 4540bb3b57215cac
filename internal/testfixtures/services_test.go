package testfixtures

import (
	"context"
	"testing"

	"github.com/example/roombooking/internal/application"
)

type capturingRoomRepo struct {
	saved application.Room
}

func (c *capturingRoomRepo) SaveRoom(ctx context.Context, room application.Room) (application.Room, error) {
	c.saved = room
	return room, nil
}

func (c *capturingRoomRepo) GetRoom(ctx context.Context, id string) (application.Room, error) {
	return application.Room{}, application.ErrNotFound
}

func (c *capturingRoomRepo) ListRooms(ctx context.Context) ([]application.Room, error) {
	return nil, nil
}

func (c *capturingRoomRepo) DeleteRoom(ctx context.Context, id string) error {
	return nil
}

func TestServiceFactoryNewRoomService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingRoomRepo{}

	svc := factory.NewRoomService(RoomServiceDeps{Rooms: repo})
	principal := application.Principal{UserID: "user-owner", Email: "owner@example.com"}

	room, err := svc.CreateRoom(context.Background(), application.CreateRoomParams{
		Principal: principal,
		Input:     application.RoomInput{Name: "Board Room"},
	})
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}

	if room.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", room.ID)
	}
	if repo.saved.ID != room.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.saved.ID)
	}
	if !room.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), room.CreatedAt)
	}
}
