package repository

import (
	"context"
	"sync"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

// maxSpendLog bounds the per-user spend log
const maxSpendLog = 500

type TransactionRepository struct {
	kv    kv.Store
	locks sync.Map // userID -> *sync.Mutex
}

func NewTransactionRepository(store kv.Store) *TransactionRepository {
	return &TransactionRepository{kv: store}
}

// GetByUserID returns recent transactions for a user, newest first
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	var log []domain.Transaction
	if _, err := kv.GetJSON(ctx, r.kv, spendKey(userID), &log); err != nil {
		return nil, err
	}

	out := make([]domain.Transaction, 0, limit)
	for i := len(log) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, log[i])
	}
	return out, nil
}

// Create appends a transaction to the user's log. Appends for one user are
// serialized within the process.
func (r *TransactionRepository) Create(ctx context.Context, tx domain.Transaction) error {
	m, _ := r.locks.LoadOrStore(tx.UserID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	var log []domain.Transaction
	if _, err := kv.GetJSON(ctx, r.kv, spendKey(tx.UserID), &log); err != nil {
		return err
	}
	log = append(log, tx)
	if len(log) > maxSpendLog {
		log = log[len(log)-maxSpendLog:]
	}
	return kv.SetJSON(ctx, r.kv, spendKey(tx.UserID), log)
}
