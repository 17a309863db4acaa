package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

var ErrWithdrawalNotFound = errors.New("withdrawal not found")

type WithdrawalRepository struct {
	kv kv.Store
}

func NewWithdrawalRepository(store kv.Store) *WithdrawalRepository {
	return &WithdrawalRepository{kv: store}
}

// Create indexes a new withdrawal under its user, then stores it. Readers
// skip index entries whose record is missing.
func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	var ids []string
	if _, err := kv.GetJSON(ctx, r.kv, withdrawalsKey(w.UserID), &ids); err != nil {
		return err
	}
	ids = append(ids, w.ID)
	if err := kv.SetJSON(ctx, r.kv, withdrawalsKey(w.UserID), ids); err != nil {
		return err
	}
	return kv.SetJSON(ctx, r.kv, withdrawalKey(w.ID), w)
}

// GetByID retrieves withdrawal by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	found, err := kv.GetJSON(ctx, r.kv, withdrawalKey(id), &w)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWithdrawalNotFound
	}
	return &w, nil
}

// Save overwrites an existing withdrawal
func (r *WithdrawalRepository) Save(ctx context.Context, w *domain.Withdrawal) error {
	return kv.SetJSON(ctx, r.kv, withdrawalKey(w.ID), w)
}

// GetByUserID retrieves the withdrawals of a user, newest first
func (r *WithdrawalRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error) {
	var ids []string
	if _, err := kv.GetJSON(ctx, r.kv, withdrawalsKey(userID), &ids); err != nil {
		return nil, err
	}
	var out []domain.Withdrawal
	for i := len(ids) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		w, err := r.GetByID(ctx, ids[i])
		if errors.Is(err, ErrWithdrawalNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, nil
}

// GetPending retrieves all pending withdrawals, oldest first
func (r *WithdrawalRepository) GetPending(ctx context.Context) ([]domain.Withdrawal, error) {
	keys, err := r.kv.List(ctx, prefixWithdrawal)
	if err != nil {
		return nil, err
	}
	var out []domain.Withdrawal
	for _, k := range keys {
		var w domain.Withdrawal
		found, err := kv.GetJSON(ctx, r.kv, k, &w)
		if err != nil {
			return nil, err
		}
		if found && w.Status == domain.WithdrawalStatusPending {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
