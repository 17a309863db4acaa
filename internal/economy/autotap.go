package economy

import (
	"context"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
)

type AutoTapState string

const (
	AutoTapIdle     AutoTapState = "idle"
	AutoTapCharging AutoTapState = "charging"
	AutoTapReady    AutoTapState = "ready"
	AutoTapActive   AutoTapState = "active"
	AutoTapExpired  AutoTapState = "expired"
)

type AutoTapStatus struct {
	State     AutoTapState `json:"state"`
	ReadyAt   *time.Time   `json:"ready_at,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

// AutoTapStateOf classifies the auto-tap data at now
func (r Rules) AutoTapStateOf(a *domain.AutoTapData, now time.Time) AutoTapState {
	switch {
	case a == nil:
		return AutoTapIdle
	case a.ExpiresAt != nil && !now.Before(*a.ExpiresAt):
		return AutoTapExpired
	case a.ActivatedAt != nil:
		return AutoTapActive
	case a.ChargingStarted == nil:
		return AutoTapIdle
	case now.Sub(*a.ChargingStarted) >= r.AutoTapCharge:
		return AutoTapReady
	default:
		return AutoTapCharging
	}
}

func (e *Engine) autoTapStatus(a *domain.AutoTapData, now time.Time) AutoTapStatus {
	s := AutoTapStatus{State: e.rules.AutoTapStateOf(a, now)}
	if a != nil {
		if a.ChargingStarted != nil {
			ready := a.ChargingStarted.Add(e.rules.AutoTapCharge)
			s.ReadyAt = &ready
		}
		s.ExpiresAt = a.ExpiresAt
	}
	return s
}

// AutoTap reports the auto-tap lifecycle of the user
func (e *Engine) AutoTap(ctx context.Context, userID string) (AutoTapStatus, error) {
	st, err := e.stats.Get(ctx, userID)
	if err != nil {
		return AutoTapStatus{}, e.observe("autotap", userID, err)
	}
	return e.autoTapStatus(st.AutoTap, e.clock.Now()), nil
}

// StartAutoTapCharging begins the charge. Only idle or expired auto-tap can
// be recharged.
func (e *Engine) StartAutoTapCharging(ctx context.Context, userID string) (AutoTapStatus, error) {
	now := e.clock.Now()
	stats, err := e.stats.Update(ctx, userID, func(st *domain.GameStats) error {
		switch e.rules.AutoTapStateOf(st.AutoTap, now) {
		case AutoTapIdle, AutoTapExpired:
		default:
			return ErrAutoTapState
		}
		t := now.UTC()
		st.AutoTap = &domain.AutoTapData{ChargingStarted: &t}
		return nil
	})
	if err != nil {
		return AutoTapStatus{}, e.observe("autotap_charge", userID, err)
	}
	return e.autoTapStatus(stats.AutoTap, now), nil
}

// ActivateAutoTap turns a fully charged auto-tap on for AutoTapDuration
func (e *Engine) ActivateAutoTap(ctx context.Context, userID string) (AutoTapStatus, error) {
	now := e.clock.Now()
	stats, err := e.stats.Update(ctx, userID, func(st *domain.GameStats) error {
		if e.rules.AutoTapStateOf(st.AutoTap, now) != AutoTapReady {
			return ErrAutoTapState
		}
		activated := now.UTC()
		expires := activated.Add(e.rules.AutoTapDuration)
		st.AutoTap.ActivatedAt = &activated
		st.AutoTap.ExpiresAt = &expires
		return nil
	})
	if err != nil {
		return AutoTapStatus{}, e.observe("autotap_activate", userID, err)
	}
	return e.autoTapStatus(stats.AutoTap, now), nil
}

// StepAutoTap advances auto-tap by one scheduler tick: a regular tap while
// active, clearing the data once expired. tapped reports whether coins were
// awarded.
func (e *Engine) StepAutoTap(ctx context.Context, userID string) (tapped bool, err error) {
	st, err := e.stats.Get(ctx, userID)
	if err != nil {
		return false, e.observe("autotap_step", userID, err)
	}

	now := e.clock.Now()
	switch e.rules.AutoTapStateOf(st.AutoTap, now) {
	case AutoTapActive:
		res, err := e.Tap(ctx, userID)
		if err != nil {
			return false, err
		}
		return res.Applied, nil
	case AutoTapExpired:
		_, err := e.stats.Update(ctx, userID, func(st *domain.GameStats) error {
			if e.rules.AutoTapStateOf(st.AutoTap, now) != AutoTapExpired {
				return store.ErrNoop
			}
			st.AutoTap = nil
			return nil
		})
		return false, e.observe("autotap_step", userID, err)
	}
	return false, nil
}
