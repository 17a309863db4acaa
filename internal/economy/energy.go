package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/metrics"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
)

type EnergyState string

const (
	EnergyFull     EnergyState = "full"
	EnergyDepleted EnergyState = "depleted"
	// EnergyResting is partial energy without a depletion timestamp. No
	// countdown runs in this state.
	EnergyResting EnergyState = "resting"
)

type EnergyStatus struct {
	State            EnergyState   `json:"state"`
	TapsLeft         int64         `json:"taps_left"`
	MaxTaps          int64         `json:"max_taps"`
	Window           time.Duration `json:"-"`
	WindowSeconds    int64         `json:"window_seconds"`
	DepletedAt       *time.Time    `json:"depleted_at,omitempty"`
	RecoversAt       *time.Time    `json:"recovers_at,omitempty"`
	Remaining        time.Duration `json:"-"`
	RemainingSeconds int64         `json:"remaining_seconds"`
	RefuelCost       int64         `json:"refuel_cost"`
}

// EnergyStateOf classifies stats
func EnergyStateOf(st domain.GameStats) EnergyState {
	switch {
	case st.EnergyDepletedAt != nil:
		return EnergyDepleted
	case st.TapsLeft >= st.MaxTaps:
		return EnergyFull
	default:
		return EnergyResting
	}
}

// RecoveryWindow looks up the user's tier on every call
func (e *Engine) RecoveryWindow(ctx context.Context, userID string) (time.Duration, error) {
	if e.flags == nil {
		return e.rules.RecoveryDefault, nil
	}
	unlimited, err := e.flags.HasUnlimitedEnergy(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("unlimited energy flag: %w", err)
	}
	if unlimited {
		return e.rules.RecoveryUnlimited, nil
	}
	vip, err := e.flags.IsVIP(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("vip flag: %w", err)
	}
	if vip {
		return e.rules.RecoveryVIP, nil
	}
	return e.rules.RecoveryDefault, nil
}

// Energy reports the recovery state and countdown
func (e *Engine) Energy(ctx context.Context, userID string) (EnergyStatus, error) {
	st, err := e.stats.Get(ctx, userID)
	if err != nil {
		return EnergyStatus{}, e.observe("energy", userID, err)
	}
	window, err := e.RecoveryWindow(ctx, userID)
	if err != nil {
		return EnergyStatus{}, e.observe("energy", userID, err)
	}

	status := EnergyStatus{
		State:         EnergyStateOf(st),
		TapsLeft:      st.TapsLeft,
		MaxTaps:       st.MaxTaps,
		Window:        window,
		WindowSeconds: int64(window / time.Second),
		DepletedAt:    st.EnergyDepletedAt,
		RefuelCost:    e.rules.RefuelCost,
	}
	if st.EnergyDepletedAt != nil {
		at := st.EnergyDepletedAt.Add(window)
		status.RecoversAt = &at
		if left := at.Sub(e.clock.Now()); left > 0 {
			status.Remaining = left
			status.RemainingSeconds = int64((left + time.Second - 1) / time.Second)
		}
	}
	return status, nil
}

// Recover refills energy once the recovery window has elapsed since
// depletion. Calling it again after a refill changes nothing.
func (e *Engine) Recover(ctx context.Context, userID string) (bool, domain.GameStats, error) {
	window, err := e.RecoveryWindow(ctx, userID)
	if err != nil {
		return false, domain.GameStats{}, e.observe("recover", userID, err)
	}

	now := e.clock.Now()
	recovered := false
	stats, err := e.stats.Update(ctx, userID, func(st *domain.GameStats) error {
		if st.EnergyDepletedAt == nil || now.Sub(*st.EnergyDepletedAt) < window {
			return store.ErrNoop
		}
		st.TapsLeft = st.MaxTaps
		st.EnergyDepletedAt = nil
		recovered = true
		return nil
	})
	if err != nil {
		return false, stats, e.observe("recover", userID, err)
	}
	if recovered {
		metrics.Recoveries.Inc()
		e.log.Debug("energy recovered", "user_id", userID, "window", window)
	}
	return recovered, stats, nil
}

// Refuel buys a full tank immediately
func (e *Engine) Refuel(ctx context.Context, userID string) (domain.GameStats, error) {
	cost := e.rules.RefuelCost
	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if st.Coins < cost {
			return ErrInsufficientFunds
		}
		st.Coins -= cost
		st.TapsLeft = st.MaxTaps
		st.EnergyDepletedAt = nil
		return nil
	}, func(domain.GameStats) error {
		return e.recordSpend(ctx, userID, domain.TxRefuel, cost, nil)
	})
	if err != nil {
		return stats, e.observe("refuel", userID, err)
	}

	metrics.Purchases.WithLabelValues("refuel").Inc()
	return stats, nil
}
