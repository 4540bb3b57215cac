package testfixtures

import (
	"github.com/example/roombooking/internal/persistence"
	"github.com/example/roombooking/internal/persistence/memory"
)

// MemoryHarness provides repository access backed by the in-memory store for
// tests that do not need a real database file.
type MemoryHarness struct {
	Users    persistence.UserRepository
	Rooms    persistence.RoomRepository
	Bookings persistence.BookingRepository
	Sessions persistence.SessionRepository
}

// NewMemoryHarness constructs a MemoryHarness over a fresh memory store.
func NewMemoryHarness() *MemoryHarness {
	store := memory.NewStore()
	return &MemoryHarness{
		Users:    store,
		Rooms:    store,
		Bookings: store,
		Sessions: store,
	}
}
