package interval

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	valid := []string{"00:00", "08:00", "09:30", "23:59"}
	for _, value := range valid {
		if _, err := ParseClock(value); err != nil {
			t.Fatalf("ParseClock(%q) returned %v", value, err)
		}
	}

	invalid := []string{"", "8:00", "08:0", "24:00", "12:60", "ab:cd", "08-00", "08:000"}
	for _, value := range invalid {
		if _, err := ParseClock(value); !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("ParseClock(%q) expected ErrInvalidClock, got %v", value, err)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("accepts ordered bounds", func(t *testing.T) {
		iv, err := New("09:00", "10:00")
		if err != nil {
			t.Fatalf("New returned %v", err)
		}
		if iv.Start != "09:00" || iv.End != "10:00" {
			t.Fatalf("unexpected interval %+v", iv)
		}
	})

	t.Run("rejects start equal to end", func(t *testing.T) {
		if _, err := New("09:00", "09:00"); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("rejects start after end", func(t *testing.T) {
		if _, err := New("10:00", "09:00"); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical intervals", Interval{"09:00", "10:00"}, Interval{"09:00", "10:00"}, true},
		{"nested interval", Interval{"09:00", "12:00"}, Interval{"10:00", "11:00"}, true},
		{"partial overlap", Interval{"09:00", "10:00"}, Interval{"09:30", "10:30"}, true},
		{"back to back", Interval{"09:00", "10:00"}, Interval{"10:00", "11:00"}, false},
		{"disjoint", Interval{"08:00", "09:00"}, Interval{"13:00", "14:00"}, false},
		{"shared start", Interval{"09:00", "10:00"}, Interval{"09:00", "09:30"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			// Overlap is symmetric.
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestClockFromHour(t *testing.T) {
	if got := ClockFromHour(8); got != "08:00" {
		t.Fatalf("ClockFromHour(8) = %q", got)
	}
	if got := ClockFromHour(17); got != "17:00" {
		t.Fatalf("ClockFromHour(17) = %q", got)
	}
	if got := ClockFromMinutes(9*60 + 30); got != "09:30" {
		t.Fatalf("ClockFromMinutes(570) = %q", got)
	}
}
