package domain

// RequirementType selects which statistic an achievement measures
type RequirementType string

const (
	RequirementCoins  RequirementType = "coins"
	RequirementTaps   RequirementType = "taps"
	RequirementDays   RequirementType = "days"
	RequirementLevel  RequirementType = "level"
	RequirementRobots RequirementType = "robots"
)

type Achievement struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	RequirementType  RequirementType `json:"requirement_type"`
	RequirementValue int64           `json:"requirement_value"`
	RewardAmount     int64           `json:"reward_amount"`
}

// LeagueTier is a band of league points. Max < 0 means unbounded.
type LeagueTier struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Min          int64  `json:"min"`
	Max          int64  `json:"max"`
	DailyReward  int64  `json:"daily_reward"`
	WeeklyReward int64  `json:"weekly_reward"`
}

// Contains reports whether points fall inside the band
func (t LeagueTier) Contains(points int64) bool {
	return points >= t.Min && (t.Max < 0 || points <= t.Max)
}
