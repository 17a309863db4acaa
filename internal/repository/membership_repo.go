package repository

import (
	"context"
	"github.com/jonboulle/clockwork"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

// MembershipRepository exposes the VIP and unlimited-energy flags
type MembershipRepository struct {
	kv    kv.Store
	clock clockwork.Clock
}

func NewMembershipRepository(store kv.Store, clock clockwork.Clock) *MembershipRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MembershipRepository{kv: store, clock: clock}
}

func (r *MembershipRepository) Get(ctx context.Context, userID string) (domain.Membership, error) {
	var m domain.Membership
	if _, err := kv.GetJSON(ctx, r.kv, membershipKey(userID), &m); err != nil {
		return domain.Membership{}, err
	}
	return m, nil
}

func (r *MembershipRepository) Set(ctx context.Context, userID string, m domain.Membership) error {
	now := r.clock.Now().UTC()
	m.UpdatedAt = &now
	return kv.SetJSON(ctx, r.kv, membershipKey(userID), m)
}

func (r *MembershipRepository) IsVIP(ctx context.Context, userID string) (bool, error) {
	m, err := r.Get(ctx, userID)
	return m.VIP, err
}

func (r *MembershipRepository) HasUnlimitedEnergy(ctx context.Context, userID string) (bool, error) {
	m, err := r.Get(ctx, userID)
	return m.UnlimitedEnergy, err
}
