package economy

import (
	"context"
	"testing"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
)

func TestCurrentLeagueBoundaries(t *testing.T) {
	tests := []struct {
		points int64
		want   string
	}{
		{0, "bronze"},
		{9999, "bronze"},
		{10000, "silver"},
		{99999, "silver"},
		{100000, "gold"},
		{499999, "gold"},
		{500000, "platinum"},
		{1999999, "platinum"},
		{2000000, "diamond"},
		{1 << 50, "diamond"},
	}
	for _, tt := range tests {
		if got := CurrentLeague(tt.points).ID; got != tt.want {
			t.Errorf("CurrentLeague(%d) = %s; want %s", tt.points, got, tt.want)
		}
	}
}

func TestLeagueTiersContiguous(t *testing.T) {
	tiers := LeagueTiers()
	if tiers[0].Min != 0 {
		t.Fatalf("first tier starts at %d", tiers[0].Min)
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Min != tiers[i-1].Max+1 {
			t.Errorf("gap between %s and %s", tiers[i-1].ID, tiers[i].ID)
		}
	}
	if tiers[len(tiers)-1].Max >= 0 {
		t.Error("last tier must be unbounded")
	}
}

func TestLeaguePoints(t *testing.T) {
	st := domain.GameStats{TotalEarned: 1234, Level: 3}
	tests := []struct {
		aux  Auxiliary
		want int64
	}{
		{Auxiliary{}, 4234},
		{Auxiliary{VIP: true}, 54234},
		{Auxiliary{UnlimitedEnergy: true}, 504234},
		{Auxiliary{VIP: true, UnlimitedEnergy: true}, 554234},
	}
	for _, tt := range tests {
		if got := LeaguePoints(st, tt.aux); got != tt.want {
			t.Errorf("LeaguePoints(%+v) = %d; want %d", tt.aux, got, tt.want)
		}
	}
}

func TestAchievementProgress(t *testing.T) {
	st := domain.GameStats{TotalEarned: 5000, RobotPower: 20, Level: 4}
	tests := []struct {
		name    string
		a       domain.Achievement
		aux     Auxiliary
		current int64
		percent int
		done    bool
	}{
		{"coins", domain.Achievement{RequirementType: domain.RequirementCoins, RequirementValue: 10000}, Auxiliary{}, 5000, 50, false},
		{"taps estimated", domain.Achievement{RequirementType: domain.RequirementTaps, RequirementValue: 100}, Auxiliary{}, 250, 100, true},
		{"days capped", domain.Achievement{RequirementType: domain.RequirementDays, RequirementValue: 7}, Auxiliary{DaysSinceRegistration: 40}, 7, 100, true},
		{"level", domain.Achievement{RequirementType: domain.RequirementLevel, RequirementValue: 5}, Auxiliary{}, 4, 80, false},
		{"robots", domain.Achievement{RequirementType: domain.RequirementRobots, RequirementValue: 3}, Auxiliary{DistinctRobots: 1}, 1, 33, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := AchievementProgress(tt.a, st, tt.aux)
			if p.Current != tt.current || p.Percent != tt.percent || p.Completed != tt.done {
				t.Fatalf("progress = %+v", p)
			}
		})
	}
}

func TestTapEstimateWithZeroPower(t *testing.T) {
	a := domain.Achievement{RequirementType: domain.RequirementTaps, RequirementValue: 100}
	p := AchievementProgress(a, domain.GameStats{TotalEarned: 50}, Auxiliary{})
	if p.Current != 50 {
		t.Fatalf("current = %d; want 50", p.Current)
	}
}

func TestLeaderboardRanking(t *testing.T) {
	players := []Standing{
		{UserID: "1", Username: "carol", Stats: domain.GameStats{TotalEarned: 500, Level: 1}},
		{UserID: "2", Username: "alice", Stats: domain.GameStats{TotalEarned: 900, Level: 1}},
		{UserID: "3", Username: "bob", Stats: domain.GameStats{TotalEarned: 500, Level: 1}},
		{UserID: "4", Username: "dave", Stats: domain.GameStats{TotalEarned: 50000, Level: 1}},
	}
	got := Leaderboard(players)
	want := []string{"dave", "alice", "bob", "carol"}
	for i, e := range got {
		if e.Username != want[i] || e.Rank != i+1 {
			t.Fatalf("entry %d = %+v; want %s rank %d", i, e, want[i], i+1)
		}
	}
	if got[0].League != "silver" || got[1].League != "bronze" {
		t.Fatalf("leagues = %s, %s", got[0].League, got[1].League)
	}

	bronze := LeagueLeaderboard(players, CurrentLeague(0))
	if len(bronze) != 3 || bronze[0].Username != "alice" || bronze[0].Rank != 1 {
		t.Fatalf("bronze board = %+v", bronze)
	}
}

func TestEngineLeaderboards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a", func(st *domain.GameStats) { st.TotalEarned = 100 })
	h.register(t, "b", func(st *domain.GameStats) { st.TotalEarned = 300 })
	h.register(t, "c", func(st *domain.GameStats) { st.TotalEarned = 200 })
	_ = h.membership.Set(ctx, "c", domain.Membership{VIP: true})

	global, err := h.engine.GlobalLeaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	if len(global) != 2 || global[0].UserID != "b" || global[1].UserID != "c" {
		t.Fatalf("global = %+v", global)
	}

	board, tier, err := h.engine.UserLeagueLeaderboard(ctx, "a", 0)
	if err != nil {
		t.Fatalf("league board: %v", err)
	}
	if tier.ID != "bronze" || len(board) != 2 || board[0].UserID != "b" {
		t.Fatalf("league board = %s %+v", tier.ID, board)
	}

	view, err := h.engine.League(ctx, "c")
	if err != nil {
		t.Fatalf("league: %v", err)
	}
	if view.Points != 51200 || view.Tier.ID != "silver" || view.Next == nil || view.Next.ID != "gold" {
		t.Fatalf("view = %+v", view)
	}
}
