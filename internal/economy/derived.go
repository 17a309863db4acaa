package economy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
)

// League point bonuses for membership flags
const (
	levelPoints     = 1000
	vipPoints       = 50000
	unlimitedPoints = 500000
)

// Auxiliary carries the facts derived views need beyond GameStats
type Auxiliary struct {
	DaysSinceRegistration int64
	DistinctRobots        int64
	VIP                   bool
	UnlimitedEnergy       bool
}

type Progress struct {
	Current   int64 `json:"current"`
	Target    int64 `json:"target"`
	Percent   int   `json:"percent"`
	Completed bool  `json:"completed"`
}

// AchievementProgress measures a snapshot against an achievement. Taps are
// estimated as totalEarned / robotPower; there is no tap counter.
func AchievementProgress(a domain.Achievement, st domain.GameStats, aux Auxiliary) Progress {
	var current int64
	switch a.RequirementType {
	case domain.RequirementCoins:
		current = st.TotalEarned
	case domain.RequirementTaps:
		current = st.TotalEarned / max(st.RobotPower, 1)
	case domain.RequirementDays:
		current = min(aux.DaysSinceRegistration, a.RequirementValue)
	case domain.RequirementLevel:
		current = st.Level
	case domain.RequirementRobots:
		current = aux.DistinctRobots
	}

	p := Progress{Current: current, Target: a.RequirementValue}
	if a.RequirementValue <= 0 || current >= a.RequirementValue {
		p.Percent = 100
		p.Completed = true
		return p
	}
	if current > 0 {
		p.Percent = int(current * 100 / a.RequirementValue)
	}
	return p
}

// LeaguePoints scores a player for league placement
func LeaguePoints(st domain.GameStats, aux Auxiliary) int64 {
	points := st.TotalEarned + st.Level*levelPoints
	if aux.VIP {
		points += vipPoints
	}
	if aux.UnlimitedEnergy {
		points += unlimitedPoints
	}
	return points
}

// CurrentLeague returns the first tier containing points
func CurrentLeague(points int64) domain.LeagueTier {
	for _, t := range leagueTiers {
		if t.Contains(points) {
			return t
		}
	}
	// negative points cannot happen with valid stats
	return leagueTiers[0]
}

// DaysSince counts whole days between from and now
func DaysSince(from, now time.Time) int64 {
	if now.Before(from) {
		return 0
	}
	return int64(now.Sub(from) / day)
}

// LeaderboardEntry is one ranked player
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	TotalEarned int64  `json:"total_earned"`
	Level       int64  `json:"level"`
	League      string `json:"league,omitempty"`
}

// Standing is the input row of a leaderboard
type Standing struct {
	UserID   string
	Username string
	Stats    domain.GameStats
	Aux      Auxiliary
}

// Leaderboard ranks players by totalEarned descending, ties by username
func Leaderboard(players []Standing) []LeaderboardEntry {
	sorted := make([]Standing, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Stats.TotalEarned != sorted[j].Stats.TotalEarned {
			return sorted[i].Stats.TotalEarned > sorted[j].Stats.TotalEarned
		}
		return sorted[i].Username < sorted[j].Username
	})

	out := make([]LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		out[i] = LeaderboardEntry{
			Rank:        i + 1,
			UserID:      p.UserID,
			Username:    p.Username,
			TotalEarned: p.Stats.TotalEarned,
			Level:       p.Stats.Level,
			League:      CurrentLeague(LeaguePoints(p.Stats, p.Aux)).ID,
		}
	}
	return out
}

// LeagueLeaderboard ranks only the players in tier
func LeagueLeaderboard(players []Standing, tier domain.LeagueTier) []LeaderboardEntry {
	var members []Standing
	for _, p := range players {
		if CurrentLeague(LeaguePoints(p.Stats, p.Aux)).ID == tier.ID {
			members = append(members, p)
		}
	}
	return Leaderboard(members)
}

// Auxiliary gathers the derived-view inputs for one user
func (e *Engine) Auxiliary(ctx context.Context, u *domain.User) (Auxiliary, error) {
	aux := Auxiliary{DaysSinceRegistration: DaysSince(u.CreatedAt, e.clock.Now())}

	distinct, err := e.robots.DistinctRobots(ctx, u.ID)
	if err != nil {
		return aux, fmt.Errorf("distinct robots: %w", err)
	}
	aux.DistinctRobots = distinct

	if e.flags != nil {
		if aux.VIP, err = e.flags.IsVIP(ctx, u.ID); err != nil {
			return aux, fmt.Errorf("vip flag: %w", err)
		}
		if aux.UnlimitedEnergy, err = e.flags.HasUnlimitedEnergy(ctx, u.ID); err != nil {
			return aux, fmt.Errorf("unlimited energy flag: %w", err)
		}
	}
	return aux, nil
}

// Standings loads every player for leaderboards
func (e *Engine) Standings(ctx context.Context) ([]Standing, error) {
	users, err := e.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]Standing, 0, len(users))
	for _, u := range users {
		aux, err := e.Auxiliary(ctx, u)
		if err != nil {
			return nil, err
		}
		out = append(out, Standing{UserID: u.ID, Username: u.Username, Stats: u.Stats, Aux: aux})
	}
	return out, nil
}

// LeagueView is a user's league placement
type LeagueView struct {
	Points int64              `json:"points"`
	Tier   domain.LeagueTier  `json:"tier"`
	Next   *domain.LeagueTier `json:"next,omitempty"`
	Daily  ClaimStatus        `json:"daily"`
	Weekly ClaimStatus        `json:"weekly"`
}

// League computes the user's tier and reward windows
func (e *Engine) League(ctx context.Context, userID string) (LeagueView, error) {
	u, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return LeagueView{}, e.observe("league", userID, err)
	}
	aux, err := e.Auxiliary(ctx, u)
	if err != nil {
		return LeagueView{}, e.observe("league", userID, err)
	}

	points := LeaguePoints(u.Stats, aux)
	view := LeagueView{Points: points, Tier: CurrentLeague(points)}
	for i, t := range leagueTiers {
		if t.ID == view.Tier.ID && i+1 < len(leagueTiers) {
			next := leagueTiers[i+1]
			view.Next = &next
		}
	}

	if view.Daily, err = e.ledger.Status(ctx, userID, leagueRewardID(PeriodDaily), CalendarDay); err != nil {
		return LeagueView{}, e.observe("league", userID, err)
	}
	if view.Weekly, err = e.ledger.Status(ctx, userID, leagueRewardID(PeriodWeekly), CalendarWeek); err != nil {
		return LeagueView{}, e.observe("league", userID, err)
	}
	return view, nil
}

// GlobalLeaderboard ranks all players, truncated to limit when positive
func (e *Engine) GlobalLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	players, err := e.Standings(ctx)
	if err != nil {
		return nil, e.observe("leaderboard", "", err)
	}
	return truncate(Leaderboard(players), limit), nil
}

// UserLeagueLeaderboard ranks the players sharing the user's league
func (e *Engine) UserLeagueLeaderboard(ctx context.Context, userID string, limit int) ([]LeaderboardEntry, domain.LeagueTier, error) {
	view, err := e.League(ctx, userID)
	if err != nil {
		return nil, domain.LeagueTier{}, err
	}
	players, err := e.Standings(ctx)
	if err != nil {
		return nil, domain.LeagueTier{}, e.observe("leaderboard", userID, err)
	}
	return truncate(LeagueLeaderboard(players, view.Tier), limit), view.Tier, nil
}

func truncate(entries []LeaderboardEntry, limit int) []LeaderboardEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
