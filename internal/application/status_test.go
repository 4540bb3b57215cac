package application

import (
	"errors"
	"testing"
)

func TestParseBookingStatus(t *testing.T) {
	for _, value := range []string{"pending", "confirmed", "cancelled", "completed", " Pending "} {
		if _, ok := ParseBookingStatus(value); !ok {
			t.Fatalf("ParseBookingStatus(%q) rejected a valid status", value)
		}
	}
	for _, value := range []string{"", "expired", "done", "canceled?"} {
		if _, ok := ParseBookingStatus(value); ok {
			t.Fatalf("ParseBookingStatus(%q) accepted an unknown status", value)
		}
	}
}

func TestBookingStatus_Transition(t *testing.T) {
	allowed := []struct{ from, to BookingStatus }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
	}
	for _, edge := range allowed {
		got, err := edge.from.Transition(edge.to)
		if err != nil {
			t.Fatalf("Transition(%s, %s) returned %v", edge.from, edge.to, err)
		}
		if got != edge.to {
			t.Fatalf("Transition(%s, %s) = %s", edge.from, edge.to, got)
		}
	}

	denied := []struct{ from, to BookingStatus }{
		{StatusPending, StatusCompleted},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusConfirmed},
		{StatusConfirmed, StatusPending},
	}
	for _, edge := range denied {
		if _, err := edge.from.Transition(edge.to); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Transition(%s, %s) expected ErrInvalidTransition, got %v", edge.from, edge.to, err)
		}
	}
}

func TestBookingStatus_Predicates(t *testing.T) {
	if StatusPending.Terminal() || StatusConfirmed.Terminal() {
		t.Fatalf("non-terminal status reported terminal")
	}
	if !StatusCancelled.Terminal() || !StatusCompleted.Terminal() {
		t.Fatalf("terminal status reported non-terminal")
	}

	if !StatusPending.Blocking() || !StatusConfirmed.Blocking() {
		t.Fatalf("blocking status reported non-blocking")
	}
	if StatusCancelled.Blocking() || StatusCompleted.Blocking() {
		t.Fatalf("terminal status reported blocking")
	}
}
