package economy

import (
	"context"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/metrics"
)

// LevelUpCost is the price of going from level to level+1
func (r Rules) LevelUpCost(level int64) int64 {
	return r.LevelUpCostBase * level
}

// EnergyUpgradeCost is the price of raising capacity above maxTaps
func (r Rules) EnergyUpgradeCost(maxTaps int64) int64 {
	return r.EnergyUpgradePrice * maxTaps
}

// UpgradeLevel raises level by one and robotPower by RobotPowerPerLevel
func (e *Engine) UpgradeLevel(ctx context.Context, userID string) (domain.GameStats, error) {
	var cost int64
	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		cost = e.rules.LevelUpCost(st.Level)
		if st.Coins < cost {
			return ErrInsufficientFunds
		}
		st.Coins -= cost
		st.Level++
		st.RobotPower += e.rules.RobotPowerPerLevel
		return nil
	}, func(st domain.GameStats) error {
		return e.recordSpend(ctx, userID, domain.TxLevelUpgrade, cost, map[string]interface{}{"level": st.Level})
	})
	if err != nil {
		return stats, e.observe("upgrade_level", userID, err)
	}

	metrics.Purchases.WithLabelValues("level").Inc()
	return stats, nil
}

// UpgradeEnergy raises maxTaps by EnergyUpgradeStep. Current energy is kept.
func (e *Engine) UpgradeEnergy(ctx context.Context, userID string) (domain.GameStats, error) {
	var cost int64
	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		cost = e.rules.EnergyUpgradeCost(st.MaxTaps)
		if st.Coins < cost {
			return ErrInsufficientFunds
		}
		st.Coins -= cost
		st.MaxTaps += e.rules.EnergyUpgradeStep
		return nil
	}, func(st domain.GameStats) error {
		return e.recordSpend(ctx, userID, domain.TxEnergyUpgrade, cost, map[string]interface{}{"max_taps": st.MaxTaps})
	})
	if err != nil {
		return stats, e.observe("upgrade_energy", userID, err)
	}

	metrics.Purchases.WithLabelValues("energy").Inc()
	return stats, nil
}

// UpgradeQuote lists the next upgrade prices
type UpgradeQuote struct {
	LevelCost  int64 `json:"level_cost"`
	EnergyCost int64 `json:"energy_cost"`
	RefuelCost int64 `json:"refuel_cost"`
}

func (e *Engine) UpgradeQuote(st domain.GameStats) UpgradeQuote {
	return UpgradeQuote{
		LevelCost:  e.rules.LevelUpCost(st.Level),
		EnergyCost: e.rules.EnergyUpgradeCost(st.MaxTaps),
		RefuelCost: e.rules.RefuelCost,
	}
}
