package repository

import (
	"context"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

// TaskRepository keeps daily task counters, one document per user and UTC day
type TaskRepository struct {
	kv kv.Store
}

func NewTaskRepository(store kv.Store) *TaskRepository {
	return &TaskRepository{kv: store}
}

// Get returns the counters of day; a missing day reads as all zero
func (r *TaskRepository) Get(ctx context.Context, userID, day string) (domain.TaskCounters, error) {
	c := domain.TaskCounters{Day: day}
	if _, err := kv.GetJSON(ctx, r.kv, tasksKey(userID, day), &c); err != nil {
		return domain.TaskCounters{}, err
	}
	c.Day = day
	return c, nil
}

// Increment applies fn to the counters of day and stores the result
func (r *TaskRepository) Increment(ctx context.Context, userID, day string, fn func(c *domain.TaskCounters)) (domain.TaskCounters, error) {
	c, err := r.Get(ctx, userID, day)
	if err != nil {
		return c, err
	}
	fn(&c)
	return c, kv.SetJSON(ctx, r.kv, tasksKey(userID, day), c)
}
