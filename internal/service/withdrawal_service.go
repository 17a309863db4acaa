package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/economy"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
)

// MinWithdrawal is the smallest request accepted, in coins
const MinWithdrawal int64 = 100000

var (
	ErrBelowMinimum         = fmt.Errorf("withdrawal below minimum of %d coins", MinWithdrawal)
	ErrWithdrawalNotPending = errors.New("withdrawal is not pending")
	ErrWithdrawalNotOwned   = errors.New("withdrawal belongs to another user")
	ErrDestinationRequired  = errors.New("destination is required")
	ErrWithdrawalNotFound   = repository.ErrWithdrawalNotFound
)

// WithdrawalService records cash-out requests. Coins leave the wallet when
// the request is made and come back if it is rejected or cancelled.
type WithdrawalService struct {
	stats *store.StatsStore
	repo  *repository.WithdrawalRepository
	txs   *repository.TransactionRepository
	clock clockwork.Clock
}

func NewWithdrawalService(stats *store.StatsStore, repo *repository.WithdrawalRepository, txs *repository.TransactionRepository, clock clockwork.Clock) *WithdrawalService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &WithdrawalService{stats: stats, repo: repo, txs: txs, clock: clock}
}

// Request debits coins and stores a pending withdrawal
func (s *WithdrawalService) Request(ctx context.Context, userID string, req domain.WithdrawRequest) (*domain.Withdrawal, error) {
	if req.Coins < MinWithdrawal {
		return nil, ErrBelowMinimum
	}
	if req.Destination == "" {
		return nil, ErrDestinationRequired
	}

	w := &domain.Withdrawal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Coins:       req.Coins,
		Destination: req.Destination,
		Status:      domain.WithdrawalStatusPending,
		CreatedAt:   s.clock.Now().UTC(),
	}
	_, err := s.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if st.Coins < req.Coins {
			return economy.ErrInsufficientFunds
		}
		st.Coins -= req.Coins
		return nil
	}, func(domain.GameStats) error {
		if err := s.record(ctx, userID, domain.TxWithdrawal, req.Coins, w.ID); err != nil {
			return err
		}
		return s.repo.Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("withdrawal requested", "user_id", userID, "withdrawal_id", w.ID, "coins", w.Coins)
	return w, nil
}

// List returns the user's requests, newest first
func (s *WithdrawalService) List(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}

func (s *WithdrawalService) Pending(ctx context.Context) ([]domain.Withdrawal, error) {
	return s.repo.GetPending(ctx)
}

// Cancel lets the owner withdraw a pending request
func (s *WithdrawalService) Cancel(ctx context.Context, userID, id string) (*domain.Withdrawal, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrWithdrawalNotOwned
	}
	return s.close(ctx, w.UserID, id, domain.WithdrawalStatusCancelled, "")
}

// Approve marks a pending request as paid out
func (s *WithdrawalService) Approve(ctx context.Context, id, notes string) (*domain.Withdrawal, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.close(ctx, w.UserID, id, domain.WithdrawalStatusApproved, notes)
}

// Reject refuses a pending request and refunds it
func (s *WithdrawalService) Reject(ctx context.Context, id, reason string) (*domain.Withdrawal, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.close(ctx, w.UserID, id, domain.WithdrawalStatusRejected, reason)
}

// close moves a pending request to status under the owner's stats lock. The
// request is saved only after the refund has been written.
func (s *WithdrawalService) close(ctx context.Context, userID, id string, status domain.WithdrawalStatus, notes string) (*domain.Withdrawal, error) {
	var out *domain.Withdrawal
	refund := status != domain.WithdrawalStatusApproved

	_, err := s.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		w, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if w.Status != domain.WithdrawalStatusPending {
			return ErrWithdrawalNotPending
		}

		now := s.clock.Now().UTC()
		w.Status = status
		w.AdminNotes = notes
		w.ProcessedAt = &now
		out = w

		if refund {
			st.Coins += w.Coins
		}
		return nil
	}, func(domain.GameStats) error {
		if refund {
			if err := s.record(ctx, userID, domain.TxRefund, out.Coins, out.ID); err != nil {
				return err
			}
		}
		return s.repo.Save(ctx, out)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("withdrawal closed", "withdrawal_id", id, "status", status)
	return out, nil
}

func (s *WithdrawalService) record(ctx context.Context, userID, txType string, amount int64, id string) error {
	if s.txs == nil {
		return nil
	}
	err := s.txs.Create(ctx, domain.Transaction{
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Meta:      map[string]interface{}{"withdrawal_id": id},
		CreatedAt: s.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("transaction log: %w", err)
	}
	return nil
}
