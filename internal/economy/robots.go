package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/metrics"
)

const day = 24 * time.Hour

// ActiveRobot is the robot currently multiplying taps.
// RemainingDays is -1 for robots that never expire.
type ActiveRobot struct {
	Robot         domain.Robot `json:"robot"`
	PurchasedAt   *time.Time   `json:"purchased_at,omitempty"`
	RemainingDays int64        `json:"remaining_days"`
}

// ShopEntry is a catalog robot as seen by one user
type ShopEntry struct {
	domain.Robot
	Available  bool  `json:"available"`
	Affordable bool  `json:"affordable"`
	Active     bool  `json:"active"`
	Owned      int64 `json:"owned"`
}

func baseActive() ActiveRobot {
	return ActiveRobot{Robot: BaseRobot(), RemainingDays: -1}
}

// ResolveAndReconcile returns the user's active robot. An expired or unknown
// robot is replaced by the base robot and the replacement is persisted;
// reconciled reports whether that write happened.
func (e *Engine) ResolveAndReconcile(ctx context.Context, userID string) (ActiveRobot, bool, error) {
	var (
		active     ActiveRobot
		reconciled bool
	)
	err := e.stats.View(ctx, userID, func(domain.GameStats) error {
		var err error
		active, reconciled, err = e.resolveLocked(ctx, userID, e.clock.Now())
		return err
	})
	return active, reconciled, e.observe("resolve_robot", userID, err)
}

// resolveLocked must run under the user's stats lock
func (e *Engine) resolveLocked(ctx context.Context, userID string, now time.Time) (ActiveRobot, bool, error) {
	rec, err := e.robots.GetOwned(ctx, userID)
	if err != nil {
		return ActiveRobot{}, false, fmt.Errorf("load robot: %w", err)
	}
	if rec == nil {
		return baseActive(), false, nil
	}

	robot, ok := RobotByID(rec.RobotID)
	if !ok {
		e.log.Warn("unknown robot in record, demoting", "user_id", userID, "robot_id", rec.RobotID)
		return e.demote(ctx, userID, now)
	}
	if robot.ID == BaseRobotID || !robot.Expires() {
		purchased := rec.PurchaseTimestamp
		return ActiveRobot{Robot: robot, PurchasedAt: &purchased, RemainingDays: -1}, false, nil
	}

	daysPassed := int64(now.Sub(rec.PurchaseTimestamp) / day)
	if daysPassed >= robot.LifespanDays {
		return e.demote(ctx, userID, now)
	}

	purchased := rec.PurchaseTimestamp
	return ActiveRobot{
		Robot:         robot,
		PurchasedAt:   &purchased,
		RemainingDays: robot.LifespanDays - daysPassed,
	}, false, nil
}

func (e *Engine) demote(ctx context.Context, userID string, now time.Time) (ActiveRobot, bool, error) {
	rec := domain.OwnedRobot{RobotID: BaseRobotID, PurchaseTimestamp: now.UTC()}
	if err := e.robots.SetOwned(ctx, userID, rec); err != nil {
		return ActiveRobot{}, false, fmt.Errorf("demote robot: %w", err)
	}
	active := baseActive()
	active.PurchasedAt = &rec.PurchaseTimestamp
	return active, true, nil
}

// PurchaseRobot replaces the active robot with robotID. The previous robot is
// discarded without refund.
func (e *Engine) PurchaseRobot(ctx context.Context, userID, robotID string) (ActiveRobot, domain.GameStats, error) {
	robot, ok := RobotByID(robotID)
	if !ok {
		return ActiveRobot{}, domain.GameStats{}, e.observe("purchase_robot", userID, ErrUnknownRobot)
	}

	now := e.clock.Now()
	rec := domain.OwnedRobot{RobotID: robot.ID, PurchaseTimestamp: now.UTC()}
	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if !robot.AvailableAt(now) {
			return ErrRobotUnavailable
		}
		if st.Coins < robot.Price {
			return ErrInsufficientFunds
		}
		st.Coins -= robot.Price
		if st.RobotsOwned == nil {
			st.RobotsOwned = make(map[string]int64)
		}
		st.RobotsOwned[robot.ID]++
		return nil
	}, func(domain.GameStats) error {
		// the owned record goes last: it is what grants the robot
		if err := e.recordSpend(ctx, userID, domain.TxRobotPurchase, robot.Price, map[string]interface{}{"robot_id": robot.ID}); err != nil {
			return err
		}
		if err := e.robots.AppendPurchase(ctx, userID, domain.RobotPurchase{
			RobotID:     robot.ID,
			Price:       robot.Price,
			PurchasedAt: now.UTC(),
		}); err != nil {
			return fmt.Errorf("purchase log: %w", err)
		}
		if err := e.robots.SetOwned(ctx, userID, rec); err != nil {
			return fmt.Errorf("save robot: %w", err)
		}
		return nil
	})
	if err != nil {
		return ActiveRobot{}, stats, e.observe("purchase_robot", userID, err)
	}

	remaining := int64(-1)
	if robot.Expires() {
		remaining = robot.LifespanDays
	}
	active := ActiveRobot{Robot: robot, PurchasedAt: &rec.PurchaseTimestamp, RemainingDays: remaining}
	metrics.Purchases.WithLabelValues("robot_" + robot.ID).Inc()
	e.log.Info("robot purchased", "user_id", userID, "robot_id", robot.ID, "price", robot.Price)
	return active, stats, nil
}

// RobotShop lists the catalog with availability for the user
func (e *Engine) RobotShop(ctx context.Context, userID string) ([]ShopEntry, ActiveRobot, error) {
	active, _, err := e.ResolveAndReconcile(ctx, userID)
	if err != nil {
		return nil, ActiveRobot{}, err
	}
	st, err := e.stats.Get(ctx, userID)
	if err != nil {
		return nil, ActiveRobot{}, e.observe("robot_shop", userID, err)
	}

	now := e.clock.Now()
	out := make([]ShopEntry, 0, len(robotCatalog))
	for _, r := range Robots() {
		out = append(out, ShopEntry{
			Robot:      r,
			Available:  r.AvailableAt(now),
			Affordable: st.Coins >= r.Price,
			Active:     r.ID == active.Robot.ID,
			Owned:      st.RobotsOwned[r.ID],
		})
	}
	return out, active, nil
}
