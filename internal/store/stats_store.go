// Package store holds the canonical GameStats of every player. All economy
// operations read and write stats through StatsStore, which serializes them
// per user and notifies subscribers after each write.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
	// ErrNoop is returned by an Update callback to finish without writing
	ErrNoop = errors.New("store: no change")
)

// ChangeFunc is invoked after every successful stats write
type ChangeFunc func(userID string, stats domain.GameStats)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
}

type StatsStore struct {
	users UserStore
	locks sync.Map // userID -> *sync.Mutex

	hooksMu sync.RWMutex
	hooks   []ChangeFunc
}

func New(users UserStore) *StatsStore {
	return &StatsStore{users: users}
}

// OnChange registers a hook called after each write
func (s *StatsStore) OnChange(fn ChangeFunc) {
	s.hooksMu.Lock()
	s.hooks = append(s.hooks, fn)
	s.hooksMu.Unlock()
}

func (s *StatsStore) lock(userID string) func() {
	m, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Get returns a snapshot of the user's stats
func (s *StatsStore) Get(ctx context.Context, userID string) (domain.GameStats, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.GameStats{}, err
	}
	return u.Stats.Clone(), nil
}

// Patch merges a partial update in one read-modify-write
func (s *StatsStore) Patch(ctx context.Context, userID string, p domain.StatsPatch) (domain.GameStats, error) {
	return s.Update(ctx, userID, func(st *domain.GameStats) error {
		p.Apply(st)
		return nil
	})
}

// Update runs fn against the current stats while holding the user's lock and
// persists the result. An error from fn aborts without writing; ErrNoop
// returns the unchanged stats with a nil error.
func (s *StatsStore) Update(ctx context.Context, userID string, fn func(st *domain.GameStats) error) (domain.GameStats, error) {
	return s.UpdateThen(ctx, userID, fn, nil)
}

// UpdateThen is Update followed by commit, which runs under the same lock once
// the new stats are saved. commit writes the records that depend on the stats
// change. If commit fails the previous stats are saved back and its error is
// returned.
func (s *StatsStore) UpdateThen(ctx context.Context, userID string, fn func(st *domain.GameStats) error, commit func(st domain.GameStats) error) (domain.GameStats, error) {
	unlock := s.lock(userID)
	defer unlock()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.GameStats{}, err
	}

	prev := u.Stats.Clone()
	next := u.Stats.Clone()
	if err := fn(&next); err != nil {
		if errors.Is(err, ErrNoop) {
			return prev, nil
		}
		return prev, err
	}

	u.Stats = next
	if err := s.users.Save(ctx, u); err != nil {
		return domain.GameStats{}, fmt.Errorf("save stats %s: %w", userID, err)
	}

	if commit != nil {
		if err := commit(next.Clone()); err != nil {
			u.Stats = prev
			if rerr := s.users.Save(ctx, u); rerr != nil {
				return domain.GameStats{}, errors.Join(err, fmt.Errorf("restore stats %s: %w", userID, rerr))
			}
			return prev.Clone(), err
		}
	}

	s.notify(userID, next)
	return next.Clone(), nil
}

// View runs fn against the current stats under the user's lock without
// writing them. fn may touch other per-user records.
func (s *StatsStore) View(ctx context.Context, userID string, fn func(st domain.GameStats) error) error {
	unlock := s.lock(userID)
	defer unlock()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return fn(u.Stats.Clone())
}

func (s *StatsStore) notify(userID string, stats domain.GameStats) {
	s.hooksMu.RLock()
	hooks := s.hooks
	s.hooksMu.RUnlock()
	for _, h := range hooks {
		h(userID, stats.Clone())
	}
}
