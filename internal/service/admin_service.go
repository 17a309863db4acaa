package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/economy"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
)

// AdminService provides admin statistics and operations
type AdminService struct {
	users       *repository.UserRepository
	stats       *store.StatsStore
	membership  *repository.MembershipRepository
	withdrawals *WithdrawalService
	txs         *repository.TransactionRepository
	clock       clockwork.Clock
}

// NewAdminService creates a new admin service. A nil clock means wall time.
func NewAdminService(users *repository.UserRepository, stats *store.StatsStore, membership *repository.MembershipRepository, withdrawals *WithdrawalService, txs *repository.TransactionRepository, clock clockwork.Clock) *AdminService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AdminService{users: users, stats: stats, membership: membership, withdrawals: withdrawals, txs: txs, clock: clock}
}

// Stats represents platform statistics
type Stats struct {
	TotalUsers       int64 `json:"total_users"`
	NewUsersToday    int64 `json:"new_users_today"`
	TotalCoins       int64 `json:"total_coins"`
	TotalEarned      int64 `json:"total_earned"`
	VIPUsers         int64 `json:"vip_users"`
	UnlimitedUsers   int64 `json:"unlimited_users"`
	PendingWithdraws int   `json:"pending_withdraws"`
	PendingCoins     int64 `json:"pending_coins"`
}

// GetStats returns platform statistics
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalUsers: int64(len(users))}
	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	for _, u := range users {
		stats.TotalCoins += u.Stats.Coins
		stats.TotalEarned += u.Stats.TotalEarned
		if !u.CreatedAt.Before(today) {
			stats.NewUsersToday++
		}
		m, err := s.membership.Get(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if m.VIP {
			stats.VIPUsers++
		}
		if m.UnlimitedEnergy {
			stats.UnlimitedUsers++
		}
	}

	pending, err := s.withdrawals.Pending(ctx)
	if err != nil {
		return nil, err
	}
	stats.PendingWithdraws = len(pending)
	for _, w := range pending {
		stats.PendingCoins += w.Coins
	}
	return stats, nil
}

// UserInfo represents user information for admin
type UserInfo struct {
	domain.Profile
	Stats      domain.GameStats     `json:"stats"`
	Membership domain.Membership    `json:"membership"`
	Recent     []domain.Transaction `json:"recent_transactions"`
}

// GetUser returns user info by ID or username
func (s *AdminService) GetUser(ctx context.Context, identifier string) (*UserInfo, error) {
	u, err := s.users.GetByID(ctx, identifier)
	if errors.Is(err, repository.ErrUserNotFound) {
		u, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}

	m, err := s.membership.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.txs.GetByUserID(ctx, u.ID, 20)
	if err != nil {
		return nil, err
	}
	return &UserInfo{Profile: u.Profile(), Stats: u.Stats, Membership: m, Recent: recent}, nil
}

// SetMembership replaces the user's entitlement flags
func (s *AdminService) SetMembership(ctx context.Context, userID string, m domain.Membership) (domain.Membership, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return domain.Membership{}, err
	}
	if err := s.membership.Set(ctx, userID, m); err != nil {
		return domain.Membership{}, err
	}
	logger.Info("membership updated", "user_id", userID, "vip", m.VIP, "unlimited_energy", m.UnlimitedEnergy)
	return s.membership.Get(ctx, userID)
}

// AddUserCoins adjusts the wallet. It never touches totalEarned and refuses
// to go below zero.
func (s *AdminService) AddUserCoins(ctx context.Context, userID string, amount int64) (int64, error) {
	st, err := s.stats.UpdateThen(ctx, userID, func(st *domain.GameStats) error {
		if st.Coins+amount < 0 {
			return economy.ErrInsufficientFunds
		}
		st.Coins += amount
		return nil
	}, func(domain.GameStats) error {
		if err := s.txs.Create(ctx, domain.Transaction{
			UserID:    userID,
			Type:      domain.TxAdminAdjust,
			Amount:    amount,
			CreatedAt: s.clock.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("transaction log: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("admin coin adjustment", "user_id", userID, "amount", amount, "balance", st.Coins)
	return st.Coins, nil
}

// GetPendingWithdrawals returns pending withdrawal requests
func (s *AdminService) GetPendingWithdrawals(ctx context.Context) ([]domain.Withdrawal, error) {
	return s.withdrawals.Pending(ctx)
}

// ApproveWithdrawal marks withdrawal as paid (after manual payout)
func (s *AdminService) ApproveWithdrawal(ctx context.Context, id, notes string) (*domain.Withdrawal, error) {
	return s.withdrawals.Approve(ctx, id, notes)
}

// RejectWithdrawal rejects a withdrawal and refunds coins
func (s *AdminService) RejectWithdrawal(ctx context.Context, id, reason string) (*domain.Withdrawal, error) {
	return s.withdrawals.Reject(ctx, id, reason)
}
