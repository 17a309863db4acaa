package repository

import (
	"context"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

// ClaimRepository stores the last successful claim instant per (user, reward)
type ClaimRepository struct {
	kv kv.Store
}

type claimRecord struct {
	ClaimedAt time.Time `json:"claimed_at"`
}

func NewClaimRepository(store kv.Store) *ClaimRepository {
	return &ClaimRepository{kv: store}
}

// LastClaim returns the last claim time; ok is false when never claimed
func (r *ClaimRepository) LastClaim(ctx context.Context, userID, rewardID string) (t time.Time, ok bool, err error) {
	var rec claimRecord
	found, err := kv.GetJSON(ctx, r.kv, claimKey(userID, rewardID), &rec)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return rec.ClaimedAt, true, nil
}

// Record marks the reward claimed at t
func (r *ClaimRepository) Record(ctx context.Context, userID, rewardID string, t time.Time) error {
	return kv.SetJSON(ctx, r.kv, claimKey(userID, rewardID), claimRecord{ClaimedAt: t.UTC()})
}
