package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
)

func TestAutoTapLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "u1", nil)

	status, err := h.engine.AutoTap(ctx, "u1")
	if err != nil || status.State != AutoTapIdle {
		t.Fatalf("initial = %+v, %v", status, err)
	}
	if _, err := h.engine.ActivateAutoTap(ctx, "u1"); !errors.Is(err, ErrAutoTapState) {
		t.Fatalf("activate idle err = %v", err)
	}

	status, err = h.engine.StartAutoTapCharging(ctx, "u1")
	if err != nil || status.State != AutoTapCharging {
		t.Fatalf("charge = %+v, %v", status, err)
	}
	if _, err := h.engine.StartAutoTapCharging(ctx, "u1"); !errors.Is(err, ErrAutoTapState) {
		t.Fatalf("double charge err = %v", err)
	}

	h.clock.Advance(30 * time.Minute)
	if _, err := h.engine.ActivateAutoTap(ctx, "u1"); !errors.Is(err, ErrAutoTapState) {
		t.Fatalf("activate while charging err = %v", err)
	}
	if tapped, err := h.engine.StepAutoTap(ctx, "u1"); err != nil || tapped {
		t.Fatalf("step while charging = %v, %v", tapped, err)
	}

	h.clock.Advance(30 * time.Minute)
	status, err = h.engine.ActivateAutoTap(ctx, "u1")
	if err != nil || status.State != AutoTapActive {
		t.Fatalf("activate = %+v, %v", status, err)
	}

	tapped, err := h.engine.StepAutoTap(ctx, "u1")
	if err != nil || !tapped {
		t.Fatalf("step while active = %v, %v", tapped, err)
	}
	if st := h.get(t, "u1"); st.Coins != 10 || st.TapsLeft != 99 {
		t.Fatalf("stats after auto tap = %+v", st)
	}

	h.clock.Advance(30 * time.Minute)
	if tapped, err := h.engine.StepAutoTap(ctx, "u1"); err != nil || tapped {
		t.Fatalf("step after expiry = %v, %v", tapped, err)
	}
	if st := h.get(t, "u1"); st.AutoTap != nil {
		t.Fatalf("expired auto-tap not cleared: %+v", st.AutoTap)
	}
}

func TestAutoTapRespectsEnergy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	activated := testStart
	expires := testStart.Add(time.Hour)
	h.register(t, "u1", func(st *domain.GameStats) {
		st.TapsLeft = 0
		st.EnergyDepletedAt = &activated
		st.AutoTap = &domain.AutoTapData{ChargingStarted: &activated, ActivatedAt: &activated, ExpiresAt: &expires}
	})

	tapped, err := h.engine.StepAutoTap(ctx, "u1")
	if err != nil || tapped {
		t.Fatalf("step = %v, %v", tapped, err)
	}
	if st := h.get(t, "u1"); st.Coins != 0 {
		t.Fatalf("coins = %d", st.Coins)
	}
}

func TestUpgrades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "u1", func(st *domain.GameStats) {
		st.Coins = 12000
		st.TapsLeft = 40
	})

	st, err := h.engine.UpgradeLevel(ctx, "u1")
	if err != nil {
		t.Fatalf("level: %v", err)
	}
	if st.Coins != 7000 || st.Level != 2 || st.RobotPower != 15 {
		t.Fatalf("after level = %+v", st)
	}

	// next level costs 10000
	if _, err := h.engine.UpgradeLevel(ctx, "u1"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("second level err = %v", err)
	}

	st, err = h.engine.UpgradeEnergy(ctx, "u1")
	if err != nil {
		t.Fatalf("energy: %v", err)
	}
	if st.Coins != 5000 || st.MaxTaps != 150 || st.TapsLeft != 40 {
		t.Fatalf("after energy = %+v", st)
	}

	q := h.engine.UpgradeQuote(st)
	if q.LevelCost != 10000 || q.EnergyCost != 3000 || q.RefuelCost != 5000 {
		t.Fatalf("quote = %+v", q)
	}
}
