package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWindowPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy WindowPolicy
		last   string
		now    string
		open   bool
	}{
		{"rolling inside", Rolling(24 * time.Hour), "2025-03-12T10:00:00Z", "2025-03-13T09:59:59Z", false},
		{"rolling at boundary", Rolling(24 * time.Hour), "2025-03-12T10:00:00Z", "2025-03-13T10:00:00Z", true},
		{"day same date", CalendarDay, "2025-03-12T00:00:00Z", "2025-03-12T23:59:59Z", false},
		{"day after midnight", CalendarDay, "2025-03-12T23:59:59Z", "2025-03-13T00:00:00Z", true},
		{"day uses utc", CalendarDay, "2025-03-12T23:30:00-02:00", "2025-03-13T02:00:00Z", false},
		{"week saturday to sunday", CalendarWeek, "2025-03-15T23:59:59Z", "2025-03-16T00:00:00Z", true},
		{"week sunday to saturday", CalendarWeek, "2025-03-16T00:00:00Z", "2025-03-22T23:59:59Z", false},
		{"once", Once, "2025-03-12T10:00:00Z", "2030-01-01T00:00:00Z", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Open(at(tt.last), at(tt.now)); got != tt.open {
				t.Fatalf("Open = %v; want %v", got, tt.open)
			}
		})
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2025-03-12T10:00:00Z", "2025-03-09T00:00:00Z"}, // wednesday
		{"2025-03-09T00:00:00Z", "2025-03-09T00:00:00Z"}, // sunday
		{"2025-03-15T23:59:59Z", "2025-03-09T00:00:00Z"}, // saturday
		{"2025-03-02T12:00:00Z", "2025-03-02T00:00:00Z"},
		{"2025-01-01T12:00:00Z", "2024-12-29T00:00:00Z"}, // crosses a year
	}
	for _, tt := range tests {
		if got := WeekStart(at(tt.in)); !got.Equal(at(tt.want)) {
			t.Errorf("WeekStart(%s) = %v; want %s", tt.in, got, tt.want)
		}
	}
}

func TestNextOpen(t *testing.T) {
	last := at("2025-03-12T10:00:00Z")
	if got := CalendarDay.NextOpen(last); !got.Equal(at("2025-03-13T00:00:00Z")) {
		t.Errorf("day next = %v", got)
	}
	if got := CalendarWeek.NextOpen(last); !got.Equal(at("2025-03-16T00:00:00Z")) {
		t.Errorf("week next = %v", got)
	}
	if got := Rolling(time.Hour).NextOpen(last); !got.Equal(at("2025-03-12T11:00:00Z")) {
		t.Errorf("rolling next = %v", got)
	}
	if got := Once.NextOpen(last); !got.IsZero() {
		t.Errorf("once next = %v", got)
	}
}

func TestLedgerClaim(t *testing.T) {
	clock := clockwork.NewFakeClockAt(at("2025-03-12T10:00:00Z"))
	l := NewLedger(repository.NewClaimRepository(kv.NewMemory()), clock)
	ctx := context.Background()

	st, err := l.Status(ctx, "u1", "r", CalendarDay)
	if err != nil || !st.Claimable || st.LastClaim != nil {
		t.Fatalf("fresh status = %+v, %v", st, err)
	}
	if err := l.Claim(ctx, "u1", "r", CalendarDay); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := l.Claim(ctx, "u1", "r", CalendarDay); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("second claim err = %v", err)
	}
	// keys are per user and per reward
	if err := l.Claim(ctx, "u2", "r", CalendarDay); err != nil {
		t.Fatalf("other user: %v", err)
	}
	if err := l.Claim(ctx, "u1", "other", CalendarDay); err != nil {
		t.Fatalf("other reward: %v", err)
	}

	st, _ = l.Status(ctx, "u1", "r", CalendarDay)
	if st.Claimable || st.NextOpen == nil || !st.NextOpen.Equal(at("2025-03-13T00:00:00Z")) {
		t.Fatalf("claimed status = %+v", st)
	}

	clock.Advance(14 * time.Hour)
	if err := l.Claim(ctx, "u1", "r", CalendarDay); err != nil {
		t.Fatalf("next day claim: %v", err)
	}
}
