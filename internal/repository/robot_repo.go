package repository

import (
	"context"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

// RobotRepository persists the single active robot slot and the purchase log
type RobotRepository struct {
	kv kv.Store
}

func NewRobotRepository(store kv.Store) *RobotRepository {
	return &RobotRepository{kv: store}
}

// GetOwned returns the active robot record, or nil when the user never bought one
func (r *RobotRepository) GetOwned(ctx context.Context, userID string) (*domain.OwnedRobot, error) {
	var rec domain.OwnedRobot
	found, err := kv.GetJSON(ctx, r.kv, robotKey(userID), &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// SetOwned overwrites the active robot record
func (r *RobotRepository) SetOwned(ctx context.Context, userID string, rec domain.OwnedRobot) error {
	return kv.SetJSON(ctx, r.kv, robotKey(userID), rec)
}

// AppendPurchase adds an entry to the user's purchase history
func (r *RobotRepository) AppendPurchase(ctx context.Context, userID string, p domain.RobotPurchase) error {
	history, err := r.Purchases(ctx, userID)
	if err != nil {
		return err
	}
	history = append(history, p)
	return kv.SetJSON(ctx, r.kv, purchasesKey(userID), history)
}

// Purchases returns the purchase history, oldest first
func (r *RobotRepository) Purchases(ctx context.Context, userID string) ([]domain.RobotPurchase, error) {
	var history []domain.RobotPurchase
	if _, err := kv.GetJSON(ctx, r.kv, purchasesKey(userID), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// DistinctRobots counts the different robot ids ever bought
func (r *RobotRepository) DistinctRobots(ctx context.Context, userID string) (int64, error) {
	history, err := r.Purchases(ctx, userID)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(history))
	for _, p := range history {
		seen[p.RobotID] = struct{}{}
	}
	return int64(len(seen)), nil
}
