package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/game"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/metrics"
)

// Reward ids used as ledger keys
const (
	RewardDailyBonus = "daily_bonus"
	RewardWheel      = "wheel"
)

// League reward periods
const (
	PeriodDaily  = "daily"
	PeriodWeekly = "weekly"
)

func taskRewardID(id string) string        { return "task:" + id }
func achievementRewardID(id string) string { return "achievement:" + id }
func leagueRewardID(period string) string  { return "league:" + period }

// RewardResult is the outcome of a successful claim
type RewardResult struct {
	RewardID string           `json:"reward_id"`
	Amount   int64            `json:"amount"`
	Stats    domain.GameStats `json:"stats"`
}

// DailyBonusStatus reports the rolling window of the daily bonus
func (e *Engine) DailyBonusStatus(ctx context.Context, userID string) (ClaimStatus, int64, error) {
	st, err := e.stats.Get(ctx, userID)
	if err != nil {
		return ClaimStatus{}, 0, e.observe("daily_bonus_status", userID, err)
	}
	status, err := e.ledger.Status(ctx, userID, RewardDailyBonus, Rolling(e.rules.DailyBonusWindow))
	return status, st.DailyBonus, e.observe("daily_bonus_status", userID, err)
}

// ClaimDailyBonus credits dailyBonus at most once per rolling window
func (e *Engine) ClaimDailyBonus(ctx context.Context, userID string) (RewardResult, error) {
	now := e.clock.Now()
	policy := Rolling(e.rules.DailyBonusWindow)
	var amount int64

	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if err := e.ledger.Check(ctx, userID, RewardDailyBonus, policy, now); err != nil {
			return err
		}
		amount = st.DailyBonus
		credit(st, amount)
		t := now.UTC()
		st.LastDailyBonusTime = &t
		return nil
	}, func(domain.GameStats) error {
		return e.ledger.Record(ctx, userID, RewardDailyBonus, now)
	})
	if err != nil {
		return RewardResult{}, e.observe("daily_bonus", userID, err)
	}
	return e.claimed(RewardDailyBonus, "daily_bonus", amount, stats), nil
}

func (e *Engine) claimed(rewardID, label string, amount int64, stats domain.GameStats) RewardResult {
	metrics.Claims.WithLabelValues(label).Inc()
	metrics.CoinsEarned.Add(float64(amount))
	return RewardResult{RewardID: rewardID, Amount: amount, Stats: stats}
}

// TaskView is a daily task with today's progress
type TaskView struct {
	domain.DailyTask
	Progress  int64 `json:"progress"`
	Completed bool  `json:"completed"`
	Claimed   bool  `json:"claimed"`
}

// RecordLogin counts a login toward today's login task
func (e *Engine) RecordLogin(ctx context.Context, userID string) error {
	return e.stats.View(ctx, userID, func(domain.GameStats) error {
		_, err := e.tasks.Increment(ctx, userID, DayKey(e.clock.Now()), func(c *domain.TaskCounters) {
			c.Logins++
		})
		return err
	})
}

// TaskBoard lists today's tasks for the user
func (e *Engine) TaskBoard(ctx context.Context, userID string) ([]TaskView, error) {
	now := e.clock.Now()
	counters, err := e.tasks.Get(ctx, userID, DayKey(now))
	if err != nil {
		return nil, e.observe("tasks", userID, err)
	}

	out := make([]TaskView, 0, len(dailyTaskCatalog))
	for _, t := range DailyTasks() {
		status, err := e.ledger.Status(ctx, userID, taskRewardID(t.ID), CalendarDay)
		if err != nil {
			return nil, e.observe("tasks", userID, err)
		}
		progress := counters.Value(t.Metric)
		out = append(out, TaskView{
			DailyTask: t,
			Progress:  progress,
			Completed: progress >= t.Target,
			Claimed:   !status.Claimable,
		})
	}
	return out, nil
}

// ClaimTask pays a completed daily task once per UTC day
func (e *Engine) ClaimTask(ctx context.Context, userID, taskID string) (RewardResult, error) {
	task, ok := DailyTaskByID(taskID)
	if !ok {
		return RewardResult{}, e.observe("claim_task", userID, ErrUnknownTask)
	}

	now := e.clock.Now()
	rewardID := taskRewardID(task.ID)
	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if err := e.ledger.Check(ctx, userID, rewardID, CalendarDay, now); err != nil {
			return err
		}
		counters, err := e.tasks.Get(ctx, userID, DayKey(now))
		if err != nil {
			return fmt.Errorf("task counters: %w", err)
		}
		if counters.Value(task.Metric) < task.Target {
			return ErrNotEligible
		}
		credit(st, task.RewardAmount)
		return nil
	}, func(domain.GameStats) error {
		return e.ledger.Record(ctx, userID, rewardID, now)
	})
	if err != nil {
		return RewardResult{}, e.observe("claim_task", userID, err)
	}
	return e.claimed(rewardID, "task", task.RewardAmount, stats), nil
}

// ClaimLeagueReward pays the daily or weekly reward of the league the user is
// in at claim time
func (e *Engine) ClaimLeagueReward(ctx context.Context, userID, period string) (RewardResult, error) {
	var policy WindowPolicy
	switch period {
	case PeriodDaily:
		policy = CalendarDay
	case PeriodWeekly:
		policy = CalendarWeek
	default:
		return RewardResult{}, e.observe("claim_league", userID, ErrUnknownPeriod)
	}

	u, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return RewardResult{}, e.observe("claim_league", userID, err)
	}
	aux, err := e.Auxiliary(ctx, u)
	if err != nil {
		return RewardResult{}, e.observe("claim_league", userID, err)
	}

	now := e.clock.Now()
	rewardID := leagueRewardID(period)
	var amount int64
	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if err := e.ledger.Check(ctx, userID, rewardID, policy, now); err != nil {
			return err
		}
		tier := CurrentLeague(LeaguePoints(*st, aux))
		amount = tier.DailyReward
		if period == PeriodWeekly {
			amount = tier.WeeklyReward
		}
		credit(st, amount)
		return nil
	}, func(domain.GameStats) error {
		return e.ledger.Record(ctx, userID, rewardID, now)
	})
	if err != nil {
		return RewardResult{}, e.observe("claim_league", userID, err)
	}
	return e.claimed(rewardID, "league_"+period, amount, stats), nil
}

// AchievementView is an achievement with the user's progress
type AchievementView struct {
	domain.Achievement
	Progress Progress `json:"progress"`
	Claimed  bool     `json:"claimed"`
}

// Achievements lists the catalog with progress
func (e *Engine) Achievements(ctx context.Context, userID string) ([]AchievementView, error) {
	u, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return nil, e.observe("achievements", userID, err)
	}
	aux, err := e.Auxiliary(ctx, u)
	if err != nil {
		return nil, e.observe("achievements", userID, err)
	}

	out := make([]AchievementView, 0, len(achievementCatalog))
	for _, a := range Achievements() {
		status, err := e.ledger.Status(ctx, userID, achievementRewardID(a.ID), Once)
		if err != nil {
			return nil, e.observe("achievements", userID, err)
		}
		out = append(out, AchievementView{
			Achievement: a,
			Progress:    AchievementProgress(a, u.Stats, aux),
			Claimed:     !status.Claimable,
		})
	}
	return out, nil
}

// ClaimAchievement pays a completed achievement exactly once
func (e *Engine) ClaimAchievement(ctx context.Context, userID, achievementID string) (RewardResult, error) {
	a, ok := AchievementByID(achievementID)
	if !ok {
		return RewardResult{}, e.observe("claim_achievement", userID, ErrUnknownAchievement)
	}
	u, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return RewardResult{}, e.observe("claim_achievement", userID, err)
	}
	aux, err := e.Auxiliary(ctx, u)
	if err != nil {
		return RewardResult{}, e.observe("claim_achievement", userID, err)
	}

	now := e.clock.Now()
	rewardID := achievementRewardID(a.ID)
	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if err := e.ledger.Check(ctx, userID, rewardID, Once, now); err != nil {
			return err
		}
		if !AchievementProgress(a, *st, aux).Completed {
			return ErrNotEligible
		}
		credit(st, a.RewardAmount)
		return nil
	}, func(domain.GameStats) error {
		return e.ledger.Record(ctx, userID, rewardID, now)
	})
	if err != nil {
		return RewardResult{}, e.observe("claim_achievement", userID, err)
	}
	return e.claimed(rewardID, "achievement", a.RewardAmount, stats), nil
}

// WheelInfo is the payout table and today's spin window
type WheelInfo struct {
	Segments []game.WheelSegment `json:"segments"`
	Status   ClaimStatus         `json:"status"`
}

func (e *Engine) WheelInfo(ctx context.Context, userID string) (WheelInfo, error) {
	status, err := e.ledger.Status(ctx, userID, RewardWheel, CalendarDay)
	if err != nil {
		return WheelInfo{}, e.observe("wheel_info", userID, err)
	}
	return WheelInfo{Segments: e.wheel.Segments(), Status: status}, nil
}

// SpinOutcome is the result of the daily wheel spin
type SpinOutcome struct {
	Spin     game.SpinResult  `json:"spin"`
	Stats    domain.GameStats `json:"stats"`
	NextSpin time.Time        `json:"next_spin"`
}

// SpinWheel draws one prize per UTC day. The prize goes to coins only and
// does not count toward totalEarned.
func (e *Engine) SpinWheel(ctx context.Context, userID string) (SpinOutcome, error) {
	now := e.clock.Now()
	var spin game.SpinResult
	stats, err := e.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if err := e.ledger.Check(ctx, userID, RewardWheel, CalendarDay, now); err != nil {
			return err
		}
		var err error
		if spin, err = e.wheel.Spin(); err != nil {
			return fmt.Errorf("spin: %w", err)
		}
		st.Coins += spin.Segment.Coins
		return nil
	}, func(domain.GameStats) error {
		return e.ledger.Record(ctx, userID, RewardWheel, now)
	})
	if err != nil {
		return SpinOutcome{}, e.observe("spin_wheel", userID, err)
	}

	metrics.Claims.WithLabelValues("wheel").Inc()
	e.log.Debug("wheel spun", "user_id", userID, "coins", spin.Segment.Coins)
	return SpinOutcome{Spin: spin, Stats: stats, NextSpin: CalendarDay.NextOpen(now)}, nil
}
