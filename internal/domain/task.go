package domain

// TaskMetric names the per-day counter a daily task checks
type TaskMetric string

const (
	TaskMetricTaps       TaskMetric = "taps"
	TaskMetricCoins      TaskMetric = "coins"
	TaskMetricDepletions TaskMetric = "depletions"
	TaskMetricLogin      TaskMetric = "login"
)

type DailyTask struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Metric       TaskMetric `json:"metric"`
	Target       int64      `json:"target"`
	RewardAmount int64      `json:"reward_amount"`
}

// TaskCounters are the per-user, per-UTC-day activity counters
type TaskCounters struct {
	Day         string `json:"day"`
	Taps        int64  `json:"taps"`
	CoinsEarned int64  `json:"coins_earned"`
	Depletions  int64  `json:"depletions"`
	Logins      int64  `json:"logins"`
}

// Value returns the counter a metric refers to
func (c TaskCounters) Value(m TaskMetric) int64 {
	switch m {
	case TaskMetricTaps:
		return c.Taps
	case TaskMetricCoins:
		return c.CoinsEarned
	case TaskMetricDepletions:
		return c.Depletions
	case TaskMetricLogin:
		return c.Logins
	}
	return 0
}
