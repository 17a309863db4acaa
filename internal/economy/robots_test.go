package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

func TestResolveWithoutRecord(t *testing.T) {
	h := newHarness(t)
	h.register(t, "u1", nil)

	active, reconciled, err := h.engine.ResolveAndReconcile(context.Background(), "u1")
	if err != nil || reconciled {
		t.Fatalf("resolve = %v, %v", reconciled, err)
	}
	if active.Robot.ID != BaseRobotID || active.RemainingDays != -1 {
		t.Fatalf("active = %+v", active)
	}
	rec, _ := h.robots.GetOwned(context.Background(), "u1")
	if rec != nil {
		t.Fatalf("resolution wrote a record: %+v", rec)
	}
}

func TestRobotExpiryReadTrigger(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "u1", nil)
	bought := testStart.Add(-31 * 24 * time.Hour)
	if err := h.robots.SetOwned(ctx, "u1", domain.OwnedRobot{RobotID: "helper", PurchaseTimestamp: bought}); err != nil {
		t.Fatalf("set robot: %v", err)
	}

	active, reconciled, err := h.engine.ResolveAndReconcile(ctx, "u1")
	if err != nil || !reconciled || active.Robot.ID != BaseRobotID {
		t.Fatalf("first resolve = %+v, %v, %v", active, reconciled, err)
	}
	rec, err := h.robots.GetOwned(ctx, "u1")
	if err != nil || rec == nil || rec.RobotID != BaseRobotID || !rec.PurchaseTimestamp.Equal(testStart) {
		t.Fatalf("persisted record = %+v, %v", rec, err)
	}

	active, reconciled, err = h.engine.ResolveAndReconcile(ctx, "u1")
	if err != nil || reconciled || active.Robot.ID != BaseRobotID {
		t.Fatalf("second resolve = %+v, %v, %v", active, reconciled, err)
	}
}

func TestRobotLifespanBoundary(t *testing.T) {
	tests := []struct {
		name      string
		age       time.Duration
		wantID    string
		remaining int64
	}{
		{"fresh", 0, "helper", 30},
		{"29 days 23h", 29*24*time.Hour + 23*time.Hour, "helper", 1},
		{"exactly 30 days", 30 * 24 * time.Hour, BaseRobotID, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			h.register(t, "u1", nil)
			_ = h.robots.SetOwned(ctx, "u1", domain.OwnedRobot{RobotID: "helper", PurchaseTimestamp: testStart.Add(-tt.age)})

			active, _, err := h.engine.ResolveAndReconcile(ctx, "u1")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if active.Robot.ID != tt.wantID || active.RemainingDays != tt.remaining {
				t.Fatalf("active = %s/%d; want %s/%d", active.Robot.ID, active.RemainingDays, tt.wantID, tt.remaining)
			}
		})
	}
}

func TestUnknownRobotDemoted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "u1", nil)
	_ = h.robots.SetOwned(ctx, "u1", domain.OwnedRobot{RobotID: "retired_model", PurchaseTimestamp: testStart})

	active, reconciled, err := h.engine.ResolveAndReconcile(ctx, "u1")
	if err != nil || !reconciled || active.Robot.ID != BaseRobotID {
		t.Fatalf("resolve = %+v, %v, %v", active, reconciled, err)
	}
}

func TestExpiredRobotTapsAtBasePower(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "u1", nil)
	_ = h.robots.SetOwned(ctx, "u1", domain.OwnedRobot{RobotID: "engineer", PurchaseTimestamp: testStart.Add(-40 * 24 * time.Hour)})

	res, err := h.engine.Tap(ctx, "u1")
	if err != nil {
		t.Fatalf("tap: %v", err)
	}
	if res.TapValue != 10 || res.Robot.Robot.ID != BaseRobotID {
		t.Fatalf("tap = %+v", res)
	}
}

func TestPurchaseRobot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "u1", func(st *domain.GameStats) {
		st.Coins = 200000
		st.TotalEarned = 300000
	})

	active, st, err := h.engine.PurchaseRobot(ctx, "u1", "worker")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if active.Robot.ID != "worker" || active.RemainingDays != 30 {
		t.Fatalf("active = %+v", active)
	}
	if st.Coins != 80000 || st.TotalEarned != 300000 || st.RobotsOwned["worker"] != 1 {
		t.Fatalf("stats = %+v", st)
	}

	// replacing an unexpired robot keeps no trace of the old one
	h.clock.Advance(24 * time.Hour)
	if _, _, err := h.engine.PurchaseRobot(ctx, "u1", "helper"); err != nil {
		t.Fatalf("second purchase: %v", err)
	}
	rec, _ := h.robots.GetOwned(ctx, "u1")
	if rec.RobotID != "helper" || !rec.PurchaseTimestamp.Equal(testStart.Add(24*time.Hour)) {
		t.Fatalf("record = %+v", rec)
	}
	n, _ := h.robots.DistinctRobots(ctx, "u1")
	if n != 2 {
		t.Fatalf("distinct robots = %d; want 2", n)
	}
}

func TestPurchaseRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "u1", func(st *domain.GameStats) { st.Coins = 10_000_000 })

	tests := []struct {
		robot string
		now   time.Time
		want  error
	}{
		{"nope", testStart, ErrUnknownRobot},
		{"titan", time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC), ErrRobotUnavailable},
	}
	for _, tt := range tests {
		e := *h.engine
		e.clock = clockAt(tt.now)
		if _, _, err := e.PurchaseRobot(ctx, "u1", tt.robot); !errors.Is(err, tt.want) {
			t.Errorf("purchase %s err = %v; want %v", tt.robot, err, tt.want)
		}
	}
	if got := h.get(t, "u1").Coins; got != 10_000_000 {
		t.Fatalf("coins changed: %d", got)
	}

	if _, _, err := h.engine.PurchaseRobot(ctx, "u1", "titan"); err != nil {
		t.Fatalf("titan after launch: %v", err)
	}
}

func TestPurchaseRollsBackWhenRobotRecordFails(t *testing.T) {
	db := &failingKV{Store: kv.NewMemory()}
	h := newHarnessOn(t, db)
	ctx := context.Background()
	h.register(t, "u1", func(st *domain.GameStats) { st.Coins = 200000 })

	db.failOn("robot:")
	if _, _, err := h.engine.PurchaseRobot(ctx, "u1", "worker"); !errors.Is(err, errWriteFailed) {
		t.Fatalf("err = %v; want errWriteFailed", err)
	}

	st := h.get(t, "u1")
	if st.Coins != 200000 || st.RobotsOwned["worker"] != 0 {
		t.Fatalf("stats after failed purchase = %+v", st)
	}
	if rec, _ := h.robots.GetOwned(ctx, "u1"); rec != nil {
		t.Fatalf("robot granted without payment: %+v", rec)
	}
}

func TestPurchaseWritesNothingWhenStatsSaveFails(t *testing.T) {
	db := &failingKV{Store: kv.NewMemory()}
	h := newHarnessOn(t, db)
	ctx := context.Background()
	h.register(t, "u1", func(st *domain.GameStats) { st.Coins = 200000 })

	db.failOn("user:")
	if _, _, err := h.engine.PurchaseRobot(ctx, "u1", "worker"); !errors.Is(err, errWriteFailed) {
		t.Fatalf("err = %v; want errWriteFailed", err)
	}
	if rec, _ := h.robots.GetOwned(ctx, "u1"); rec != nil {
		t.Fatalf("robot record written: %+v", rec)
	}
	if history, _ := h.robots.Purchases(ctx, "u1"); len(history) != 0 {
		t.Fatalf("purchase history written: %+v", history)
	}
	if log, _ := h.txs.GetByUserID(ctx, "u1", 10); len(log) != 0 {
		t.Fatalf("spend log written: %+v", log)
	}
}
