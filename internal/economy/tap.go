package economy

import (
	"context"
	"fmt"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/metrics"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
)

// TapResult describes one tap. Applied is false when the player had no
// energy; nothing changed in that case.
type TapResult struct {
	Applied  bool             `json:"applied"`
	TapValue int64            `json:"tap_value"`
	Depleted bool             `json:"depleted"`
	Robot    ActiveRobot      `json:"robot"`
	Stats    domain.GameStats `json:"stats"`
}

// Tap awards robotPower * tapPower coins for one unit of energy
func (e *Engine) Tap(ctx context.Context, userID string) (TapResult, error) {
	now := e.clock.Now()
	var res TapResult

	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if st.TapsLeft <= 0 {
			return store.ErrNoop
		}

		robot, _, err := e.resolveLocked(ctx, userID, now)
		if err != nil {
			return err
		}

		value := st.RobotPower * robot.Robot.TapPower
		credit(st, value)
		st.TapsLeft--

		depleted := st.TapsLeft == 0
		if depleted && st.EnergyDepletedAt == nil {
			t := now.UTC()
			st.EnergyDepletedAt = &t
		}

		res = TapResult{Applied: true, TapValue: value, Depleted: depleted, Robot: robot}
		return nil
	}, func(domain.GameStats) error {
		if _, err := e.tasks.Increment(ctx, userID, DayKey(now), func(c *domain.TaskCounters) {
			c.Taps++
			c.CoinsEarned += res.TapValue
			if res.Depleted {
				c.Depletions++
			}
		}); err != nil {
			return fmt.Errorf("task counters: %w", err)
		}
		return nil
	})
	if err != nil {
		return TapResult{}, e.observe("tap", userID, err)
	}

	res.Stats = stats
	if res.Applied {
		metrics.Taps.Inc()
		metrics.CoinsEarned.Add(float64(res.TapValue))
	}
	return res, nil
}
