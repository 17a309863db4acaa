package economy

import (
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
)

// BaseRobotID is the robot every player falls back to
const BaseRobotID = "basic"

// Rules are the tunable constants of the economy
type Rules struct {
	RefuelCost         int64
	RecoveryDefault    time.Duration
	RecoveryVIP        time.Duration
	RecoveryUnlimited  time.Duration
	RobotPowerPerLevel int64
	LevelUpCostBase    int64
	EnergyUpgradeStep  int64
	EnergyUpgradePrice int64 // per point of current capacity
	AutoTapCharge      time.Duration
	AutoTapDuration    time.Duration
	DailyBonusWindow   time.Duration
}

func DefaultRules() Rules {
	return Rules{
		RefuelCost:         5000,
		RecoveryDefault:    5 * time.Hour,
		RecoveryVIP:        time.Hour,
		RecoveryUnlimited:  15 * time.Minute,
		RobotPowerPerLevel: 5,
		LevelUpCostBase:    5000,
		EnergyUpgradeStep:  50,
		EnergyUpgradePrice: 20,
		AutoTapCharge:      time.Hour,
		AutoTapDuration:    30 * time.Minute,
		DailyBonusWindow:   24 * time.Hour,
	}
}

var titanLaunch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

var robotCatalog = []domain.Robot{
	{ID: BaseRobotID, Name: "Basic Bot", TapPower: 1, Price: 0, LifespanDays: 0},
	{ID: "helper", Name: "Helper Bot", TapPower: 2, Price: 25000, LifespanDays: 30},
	{ID: "worker", Name: "Worker Bot", TapPower: 3, Price: 120000, LifespanDays: 30},
	{ID: "engineer", Name: "Engineer Bot", TapPower: 5, Price: 500000, LifespanDays: 30},
	{ID: "titan", Name: "Titan", TapPower: 10, Price: 2000000, LifespanDays: 60, AvailableFrom: &titanLaunch},
}

var achievementCatalog = []domain.Achievement{
	{ID: "coins_1k", Title: "First Thousand", RequirementType: domain.RequirementCoins, RequirementValue: 1000, RewardAmount: 500},
	{ID: "coins_100k", Title: "Coin Hoarder", RequirementType: domain.RequirementCoins, RequirementValue: 100000, RewardAmount: 10000},
	{ID: "coins_1m", Title: "Millionaire", RequirementType: domain.RequirementCoins, RequirementValue: 1000000, RewardAmount: 100000},
	{ID: "taps_100", Title: "Warming Up", RequirementType: domain.RequirementTaps, RequirementValue: 100, RewardAmount: 200},
	{ID: "taps_10k", Title: "Tap Machine", RequirementType: domain.RequirementTaps, RequirementValue: 10000, RewardAmount: 20000},
	{ID: "days_7", Title: "One Week In", RequirementType: domain.RequirementDays, RequirementValue: 7, RewardAmount: 5000},
	{ID: "days_30", Title: "Veteran", RequirementType: domain.RequirementDays, RequirementValue: 30, RewardAmount: 30000},
	{ID: "level_5", Title: "Level 5", RequirementType: domain.RequirementLevel, RequirementValue: 5, RewardAmount: 5000},
	{ID: "level_10", Title: "Level 10", RequirementType: domain.RequirementLevel, RequirementValue: 10, RewardAmount: 25000},
	{ID: "robots_3", Title: "Collector", RequirementType: domain.RequirementRobots, RequirementValue: 3, RewardAmount: 50000},
}

var dailyTaskCatalog = []domain.DailyTask{
	{ID: "taps_1000", Title: "Tap 1000 times", Metric: domain.TaskMetricTaps, Target: 1000, RewardAmount: 5000},
	{ID: "coins_50000", Title: "Earn 50000 coins", Metric: domain.TaskMetricCoins, Target: 50000, RewardAmount: 10000},
	{ID: "energy_3", Title: "Deplete energy 3 times", Metric: domain.TaskMetricDepletions, Target: 3, RewardAmount: 3000},
	{ID: "login", Title: "Log in", Metric: domain.TaskMetricLogin, Target: 1, RewardAmount: 1000},
}

// League bands in ascending order, contiguous over [0, inf)
var leagueTiers = []domain.LeagueTier{
	{ID: "bronze", Name: "Bronze", Min: 0, Max: 9999, DailyReward: 100, WeeklyReward: 1000},
	{ID: "silver", Name: "Silver", Min: 10000, Max: 99999, DailyReward: 500, WeeklyReward: 5000},
	{ID: "gold", Name: "Gold", Min: 100000, Max: 499999, DailyReward: 1000, WeeklyReward: 10000},
	{ID: "platinum", Name: "Platinum", Min: 500000, Max: 1999999, DailyReward: 5000, WeeklyReward: 50000},
	{ID: "diamond", Name: "Diamond", Min: 2000000, Max: -1, DailyReward: 10000, WeeklyReward: 100000},
}

// Robots returns the robot catalog
func Robots() []domain.Robot {
	out := make([]domain.Robot, len(robotCatalog))
	copy(out, robotCatalog)
	return out
}

// RobotByID looks up a catalog entry
func RobotByID(id string) (domain.Robot, bool) {
	for _, r := range robotCatalog {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Robot{}, false
}

// BaseRobot returns the fallback robot
func BaseRobot() domain.Robot {
	r, _ := RobotByID(BaseRobotID)
	return r
}

func Achievements() []domain.Achievement {
	out := make([]domain.Achievement, len(achievementCatalog))
	copy(out, achievementCatalog)
	return out
}

func AchievementByID(id string) (domain.Achievement, bool) {
	for _, a := range achievementCatalog {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Achievement{}, false
}

func DailyTasks() []domain.DailyTask {
	out := make([]domain.DailyTask, len(dailyTaskCatalog))
	copy(out, dailyTaskCatalog)
	return out
}

func DailyTaskByID(id string) (domain.DailyTask, bool) {
	for _, t := range dailyTaskCatalog {
		if t.ID == id {
			return t, true
		}
	}
	return domain.DailyTask{}, false
}

func LeagueTiers() []domain.LeagueTier {
	out := make([]domain.LeagueTier, len(leagueTiers))
	copy(out, leagueTiers)
	return out
}
