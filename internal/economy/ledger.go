package economy

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
)

// WindowPolicy decides when a reward may be claimed again
type WindowPolicy interface {
	Name() string
	// Open reports whether a claim at now is allowed after a claim at last
	Open(last, now time.Time) bool
	// NextOpen is the first instant a claim is allowed after last. The zero
	// time means never.
	NextOpen(last time.Time) time.Time
}

// DayKey is the UTC calendar date of t
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayStart truncates t to UTC midnight
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart is the UTC midnight of the Sunday starting t's week
func WeekStart(t time.Time) time.Time {
	day := DayStart(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

type rolling struct{ d time.Duration }

// Rolling allows one claim per d elapsed since the last claim
func Rolling(d time.Duration) WindowPolicy { return rolling{d: d} }

func (p rolling) Name() string                      { return "rolling" }
func (p rolling) Open(last, now time.Time) bool     { return now.Sub(last) >= p.d }
func (p rolling) NextOpen(last time.Time) time.Time { return last.Add(p.d) }

type calendarDay struct{}

// CalendarDay allows one claim per UTC date
var CalendarDay WindowPolicy = calendarDay{}

func (calendarDay) Name() string                      { return "calendar_day" }
func (calendarDay) Open(last, now time.Time) bool     { return DayKey(last) != DayKey(now) }
func (calendarDay) NextOpen(last time.Time) time.Time { return DayStart(last).AddDate(0, 0, 1) }

type calendarWeek struct{}

// CalendarWeek allows one claim per UTC week, weeks starting on Sunday
var CalendarWeek WindowPolicy = calendarWeek{}

func (calendarWeek) Name() string { return "calendar_week" }
func (calendarWeek) Open(last, now time.Time) bool {
	return !WeekStart(last).Equal(WeekStart(now))
}
func (calendarWeek) NextOpen(last time.Time) time.Time { return WeekStart(last).AddDate(0, 0, 7) }

type once struct{}

// Once allows a single claim ever
var Once WindowPolicy = once{}

func (once) Name() string                 { return "once" }
func (once) Open(_, _ time.Time) bool     { return false }
func (once) NextOpen(time.Time) time.Time { return time.Time{} }

// ClaimStatus describes a reward's window for one user
type ClaimStatus struct {
	Claimable bool       `json:"claimable"`
	LastClaim *time.Time `json:"last_claim,omitempty"`
	NextOpen  *time.Time `json:"next_open,omitempty"`
}

// Ledger tracks the last claim per (user, reward) and applies window policies
type Ledger struct {
	claims *repository.ClaimRepository
	clock  clockwork.Clock
}

func NewLedger(claims *repository.ClaimRepository, clock clockwork.Clock) *Ledger {
	return &Ledger{claims: claims, clock: clock}
}

// Status reports whether rewardID can be claimed now
func (l *Ledger) Status(ctx context.Context, userID, rewardID string, p WindowPolicy) (ClaimStatus, error) {
	last, ok, err := l.claims.LastClaim(ctx, userID, rewardID)
	if err != nil {
		return ClaimStatus{}, err
	}
	return statusFrom(p, last, ok, l.clock.Now()), nil
}

func statusFrom(p WindowPolicy, last time.Time, claimed bool, now time.Time) ClaimStatus {
	if !claimed {
		return ClaimStatus{Claimable: true}
	}
	st := ClaimStatus{LastClaim: &last, Claimable: p.Open(last, now)}
	if next := p.NextOpen(last); !next.IsZero() && !st.Claimable {
		st.NextOpen = &next
	}
	return st
}

// Check returns ErrAlreadyClaimed when the window is closed at now
func (l *Ledger) Check(ctx context.Context, userID, rewardID string, p WindowPolicy, now time.Time) error {
	last, ok, err := l.claims.LastClaim(ctx, userID, rewardID)
	if err != nil {
		return err
	}
	if ok && !p.Open(last, now) {
		return ErrAlreadyClaimed
	}
	return nil
}

// Record marks rewardID claimed at now
func (l *Ledger) Record(ctx context.Context, userID, rewardID string, now time.Time) error {
	return l.claims.Record(ctx, userID, rewardID, now)
}

// Claim checks the window and records the claim
func (l *Ledger) Claim(ctx context.Context, userID, rewardID string, p WindowPolicy) error {
	now := l.clock.Now()
	if err := l.Check(ctx, userID, rewardID, p, now); err != nil {
		return err
	}
	return l.Record(ctx, userID, rewardID, now)
}
