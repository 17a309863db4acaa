package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must be 3-32 characters")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

// LoginRecorder counts logins toward the daily login task
type LoginRecorder interface {
	RecordLogin(ctx context.Context, userID string) error
}

type AuthService struct {
	users  *repository.UserRepository
	logins LoginRecorder
	cost   int
	clock  clockwork.Clock
}

func NewAuthService(users *repository.UserRepository, logins LoginRecorder) *AuthService {
	return &AuthService{users: users, logins: logins, cost: bcrypt.DefaultCost, clock: clockwork.NewRealClock()}
}

// WithClock sets the clock that stamps new accounts
func (s *AuthService) WithClock(clock clockwork.Clock) *AuthService {
	s.clock = clock
	return s
}

// WithHashCost lowers the bcrypt cost, for tests
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// Session is returned by register and login
type Session struct {
	Token string           `json:"token"`
	User  domain.Profile   `json:"user"`
	Stats domain.GameStats `json:"stats"`
}

// Register creates a player with fresh stats and signs them in
func (s *AuthService) Register(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 32 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now().UTC(),
		Stats:        domain.NewGameStats(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("user registered", "user_id", u.ID, "username", u.Username)

	return s.session(ctx, u)
}

// Login checks credentials and issues a token
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(ctx, u)
}

func (s *AuthService) session(ctx context.Context, u *domain.User) (*Session, error) {
	if s.logins != nil {
		if err := s.logins.RecordLogin(ctx, u.ID); err != nil {
			logger.Warn("record login failed", "user_id", u.ID, "error", err)
		}
	}
	token, err := GenerateJWT(u.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, User: u.Profile(), Stats: u.Stats}, nil
}
