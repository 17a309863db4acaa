package domain

import "time"

// Initial values for a freshly registered player
const (
	InitialMaxTaps    = 100
	InitialRobotPower = 10
	InitialDailyBonus = 50
)

// AutoTapData tracks the auto-tap lifecycle: charging, then active until ExpiresAt
type AutoTapData struct {
	ChargingStarted *time.Time `json:"charging_started,omitempty"`
	ActivatedAt     *time.Time `json:"activated_at,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// GameStats is the canonical mutable economy record of a player.
//
// Coins is the spendable wallet. TotalEarned only ever grows and is what
// achievements, leagues and leaderboards read; spending lowers Coins but
// never TotalEarned.
type GameStats struct {
	Coins              int64            `json:"coins"`
	TotalEarned        int64            `json:"total_earned"`
	TapsLeft           int64            `json:"taps_left"`
	MaxTaps            int64            `json:"max_taps"`
	Level              int64            `json:"level"`
	RobotPower         int64            `json:"robot_power"`
	DailyBonus         int64            `json:"daily_bonus"`
	LastDailyBonusTime *time.Time       `json:"last_daily_bonus_time,omitempty"`
	EnergyDepletedAt   *time.Time       `json:"energy_depleted_at"`
	AutoTap            *AutoTapData     `json:"auto_tap_data,omitempty"`
	RobotsOwned        map[string]int64 `json:"robots_owned,omitempty"`
}

// NewGameStats returns the stats every player starts with
func NewGameStats() GameStats {
	return GameStats{
		Coins:       0,
		TotalEarned: 0,
		TapsLeft:    InitialMaxTaps,
		MaxTaps:     InitialMaxTaps,
		Level:       1,
		RobotPower:  InitialRobotPower,
		DailyBonus:  InitialDailyBonus,
	}
}

// Clone returns a deep copy
func (s GameStats) Clone() GameStats {
	out := s
	out.LastDailyBonusTime = cloneTime(s.LastDailyBonusTime)
	out.EnergyDepletedAt = cloneTime(s.EnergyDepletedAt)
	if s.AutoTap != nil {
		out.AutoTap = &AutoTapData{
			ChargingStarted: cloneTime(s.AutoTap.ChargingStarted),
			ActivatedAt:     cloneTime(s.AutoTap.ActivatedAt),
			ExpiresAt:       cloneTime(s.AutoTap.ExpiresAt),
		}
	}
	if s.RobotsOwned != nil {
		out.RobotsOwned = make(map[string]int64, len(s.RobotsOwned))
		for k, v := range s.RobotsOwned {
			out.RobotsOwned[k] = v
		}
	}
	return out
}

// StatsPatch is a partial update. Nil fields are left untouched; the Clear
// flags reset the optional timestamps. RobotsOwned entries overwrite the
// matching counters only.
type StatsPatch struct {
	Coins               *int64
	TotalEarned         *int64
	TapsLeft            *int64
	MaxTaps             *int64
	Level               *int64
	RobotPower          *int64
	DailyBonus          *int64
	LastDailyBonusTime  *time.Time
	EnergyDepletedAt    *time.Time
	ClearEnergyDepleted bool
	AutoTap             *AutoTapData
	ClearAutoTap        bool
	RobotsOwned         map[string]int64
}

// Apply merges the patch into s
func (p StatsPatch) Apply(s *GameStats) {
	setInt(&s.Coins, p.Coins)
	setInt(&s.TotalEarned, p.TotalEarned)
	setInt(&s.TapsLeft, p.TapsLeft)
	setInt(&s.MaxTaps, p.MaxTaps)
	setInt(&s.Level, p.Level)
	setInt(&s.RobotPower, p.RobotPower)
	setInt(&s.DailyBonus, p.DailyBonus)
	if p.LastDailyBonusTime != nil {
		s.LastDailyBonusTime = cloneTime(p.LastDailyBonusTime)
	}
	if p.ClearEnergyDepleted {
		s.EnergyDepletedAt = nil
	} else if p.EnergyDepletedAt != nil {
		s.EnergyDepletedAt = cloneTime(p.EnergyDepletedAt)
	}
	if p.ClearAutoTap {
		s.AutoTap = nil
	} else if p.AutoTap != nil {
		a := *p.AutoTap
		s.AutoTap = &a
	}
	if len(p.RobotsOwned) > 0 {
		if s.RobotsOwned == nil {
			s.RobotsOwned = make(map[string]int64, len(p.RobotsOwned))
		}
		for k, v := range p.RobotsOwned {
			s.RobotsOwned[k] = v
		}
	}
	if s.TapsLeft > s.MaxTaps {
		s.TapsLeft = s.MaxTaps
	}
	if s.TapsLeft < 0 {
		s.TapsLeft = 0
	}
}

// Int64 is a helper for building patches
func Int64(v int64) *int64 { return &v }

func setInt(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
