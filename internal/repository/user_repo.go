package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type UserRepository struct {
	kv kv.Store
	// serializes username reservation
	createMu sync.Mutex
}

func NewUserRepository(store kv.Store) *UserRepository {
	return &UserRepository{kv: store}
}

// NormalizeUsername is the form used for the username index
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Create stores a new user and reserves its username
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	nameKey := usernameKey(NormalizeUsername(u.Username))
	var existing string
	found, err := kv.GetJSON(ctx, r.kv, nameKey, &existing)
	if err != nil {
		return err
	}
	if found {
		return ErrUsernameTaken
	}

	if err := kv.SetJSON(ctx, r.kv, userKey(u.ID), u); err != nil {
		return err
	}
	return kv.SetJSON(ctx, r.kv, nameKey, u.ID)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	found, err := kv.GetJSON(ctx, r.kv, userKey(id), &u)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var id string
	found, err := kv.GetJSON(ctx, r.kv, usernameKey(NormalizeUsername(username)), &id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

// Save overwrites an existing user record
func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	return kv.SetJSON(ctx, r.kv, userKey(u.ID), u)
}

// List returns every registered user
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	keys, err := r.kv.List(ctx, prefixUser)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(keys))
	for _, k := range keys {
		var u domain.User
		found, err := kv.GetJSON(ctx, r.kv, k, &u)
		if err != nil {
			return nil, err
		}
		if found {
			users = append(users, &u)
		}
	}
	return users, nil
}
