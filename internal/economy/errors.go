package economy

import (
	"errors"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/metrics"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
)

// Rejections: the operation was refused and nothing changed.
var (
	ErrUserNotFound       = store.ErrUserNotFound
	ErrInsufficientFunds  = errors.New("insufficient coins")
	ErrAlreadyClaimed     = errors.New("reward already claimed in this window")
	ErrNotEligible        = errors.New("reward requirements not met")
	ErrUnknownRobot       = errors.New("unknown robot")
	ErrRobotUnavailable   = errors.New("robot not available yet")
	ErrUnknownTask        = errors.New("unknown task")
	ErrUnknownAchievement = errors.New("unknown achievement")
	ErrUnknownPeriod      = errors.New("unknown league reward period")
	ErrAutoTapState       = errors.New("auto-tap cannot do that in its current state")
)

var rejections = []struct {
	err    error
	reason string
}{
	{ErrUserNotFound, "user_not_found"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrAlreadyClaimed, "already_claimed"},
	{ErrNotEligible, "not_eligible"},
	{ErrUnknownRobot, "unknown_robot"},
	{ErrRobotUnavailable, "robot_unavailable"},
	{ErrUnknownTask, "unknown_task"},
	{ErrUnknownAchievement, "unknown_achievement"},
	{ErrUnknownPeriod, "unknown_period"},
	{ErrAutoTapState, "autotap_state"},
}

// IsRejection reports whether err is a business rejection rather than an
// infrastructure failure
func IsRejection(err error) bool {
	return rejectionReason(err) != ""
}

func rejectionReason(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ""
}

// observe counts rejections and passes err through
func (e *Engine) observe(op, userID string, err error) error {
	if reason := rejectionReason(err); reason != "" {
		metrics.Rejections.WithLabelValues(reason).Inc()
		e.log.Debug("rejected", "op", op, "user_id", userID, "reason", reason)
	} else if err != nil {
		e.log.Error("operation failed", "op", op, "user_id", userID, "error", err)
	}
	return err
}
