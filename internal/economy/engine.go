// Package economy implements the rules of the tap game: tapping, energy
// recovery, timed rewards, robot lifespans and the statistics derived from a
// player's GameStats. Every mutation goes through store.StatsStore.
package economy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/game"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
)

// Flags are the externally managed entitlements of a user
type Flags interface {
	IsVIP(ctx context.Context, userID string) (bool, error)
	HasUnlimitedEnergy(ctx context.Context, userID string) (bool, error)
}

// Deps are the collaborators of the engine
type Deps struct {
	Stats        *store.StatsStore
	Users        *repository.UserRepository
	Robots       *repository.RobotRepository
	Claims       *repository.ClaimRepository
	Tasks        *repository.TaskRepository
	Transactions *repository.TransactionRepository
	Flags        Flags
}

type Engine struct {
	stats  *store.StatsStore
	users  *repository.UserRepository
	robots *repository.RobotRepository
	tasks  *repository.TaskRepository
	txs    *repository.TransactionRepository
	flags  Flags
	ledger *Ledger
	wheel  *game.PrizeWheel
	clock  clockwork.Clock
	rules  Rules
	log    *slog.Logger
}

type Option func(*Engine)

// WithClock replaces the wall clock, mostly for tests
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithRules(r Rules) Option {
	return func(e *Engine) { e.rules = r }
}

func WithWheel(w *game.PrizeWheel) Option {
	return func(e *Engine) { e.wheel = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(d Deps, opts ...Option) *Engine {
	e := &Engine{
		stats:  d.Stats,
		users:  d.Users,
		robots: d.Robots,
		tasks:  d.Tasks,
		txs:    d.Transactions,
		flags:  d.Flags,
		clock:  clockwork.NewRealClock(),
		rules:  DefaultRules(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.wheel == nil {
		e.wheel = game.NewPrizeWheel()
	}
	if e.log == nil {
		e.log = logger.Component("economy")
	}
	e.ledger = NewLedger(d.Claims, e.clock)
	return e
}

func (e *Engine) Clock() clockwork.Clock { return e.clock }

func (e *Engine) Rules() Rules { return e.rules }

func (e *Engine) Ledger() *Ledger { return e.ledger }

// Stats returns the current stats snapshot
func (e *Engine) Stats(ctx context.Context, userID string) (domain.GameStats, error) {
	st, err := e.stats.Get(ctx, userID)
	return st, e.observe("stats", userID, err)
}

// recordSpend appends to the spend log. It runs as the commit step of the
// stats update that took the coins, so appends for one user never overlap.
func (e *Engine) recordSpend(ctx context.Context, userID, txType string, amount int64, meta map[string]interface{}) error {
	if e.txs == nil {
		return nil
	}
	tx := domain.Transaction{
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Meta:      meta,
		CreatedAt: e.clock.Now().UTC(),
	}
	if err := e.txs.Create(ctx, tx); err != nil {
		return fmt.Errorf("spend log: %w", err)
	}
	return nil
}

// credit adds income to the wallet and the lifetime counter
func credit(st *domain.GameStats, amount int64) {
	st.Coins += amount
	st.TotalEarned += amount
}
