// Package scheduler binds a periodic energy job to every live player session.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/economy"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/metrics"
)

// MaxInterval is the slowest allowed poll
const MaxInterval = time.Second

// Ticker is the per-tick work: energy recovery, then one auto-tap step
type Ticker interface {
	Recover(ctx context.Context, userID string) (bool, domain.GameStats, error)
	StepAutoTap(ctx context.Context, userID string) (bool, error)
}

type session struct {
	job  uuid.UUID
	refs int
}

type SessionScheduler struct {
	sched    gocron.Scheduler
	ticker   Ticker
	interval time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a scheduler polling every interval, capped at MaxInterval
func New(ticker Ticker, interval time.Duration, opts ...gocron.SchedulerOption) (*SessionScheduler, error) {
	if interval <= 0 || interval > MaxInterval {
		interval = MaxInterval
	}
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}
	return &SessionScheduler{
		sched:    sched,
		ticker:   ticker,
		interval: interval,
		log:      logger.Component("scheduler"),
		sessions: make(map[string]*session),
	}, nil
}

func (s *SessionScheduler) Start() {
	s.sched.Start()
}

// Watch starts the user's periodic job, or joins it when another session of
// the same user already runs one. The returned stop is safe to call twice.
func (s *SessionScheduler) Watch(userID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.refs++
		return s.stopFunc(userID), nil
	}

	job, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			defer cancel()
			s.Tick(ctx, userID)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithTags(userID),
	)
	if err != nil {
		return nil, err
	}

	s.sessions[userID] = &session{job: job.ID(), refs: 1}
	metrics.Sessions.Inc()
	s.log.Debug("session job started", "user_id", userID, "interval", s.interval)
	return s.stopFunc(userID), nil
}

func (s *SessionScheduler) stopFunc(userID string) func() {
	var once sync.Once
	return func() {
		once.Do(func() { s.release(userID) })
	}
}

func (s *SessionScheduler) release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return
	}
	sess.refs--
	if sess.refs > 0 {
		return
	}
	delete(s.sessions, userID)
	metrics.Sessions.Dec()
	if err := s.sched.RemoveJob(sess.job); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		s.log.Warn("remove session job", "user_id", userID, "error", err)
	}
	s.log.Debug("session job stopped", "user_id", userID)
}

// Tick runs one recovery check and one auto-tap step
func (s *SessionScheduler) Tick(ctx context.Context, userID string) {
	if _, _, err := s.ticker.Recover(ctx, userID); err != nil && !economy.IsRejection(err) {
		s.log.Error("energy recovery tick", "user_id", userID, "error", err)
	}
	if _, err := s.ticker.StepAutoTap(ctx, userID); err != nil && !economy.IsRejection(err) {
		s.log.Error("auto-tap tick", "user_id", userID, "error", err)
	}
}

// Active counts users with a running job
func (s *SessionScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionScheduler) Shutdown() error {
	s.mu.Lock()
	metrics.Sessions.Sub(float64(len(s.sessions)))
	s.sessions = make(map[string]*session)
	s.mu.Unlock()
	return s.sched.Shutdown()
}
