package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/economy"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"
)

// Sessions starts the periodic energy job of a connected user
type Sessions interface {
	Watch(userID string) (func(), error)
}

// Game is the part of the economy a socket can drive
type Game interface {
	Stats(ctx context.Context, userID string) (domain.GameStats, error)
	Tap(ctx context.Context, userID string) (economy.TapResult, error)
}

// Hub tracks the live sockets of every user and pushes stats snapshots to them
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	game     Game
	sessions Sessions
	log      *slog.Logger
}

func NewHub(game Game, sessions Sessions) *Hub {
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		game:     game,
		sessions: sessions,
		log:      logger.Component("ws"),
	}
}

// Register adds c and binds a scheduler session to it
func (h *Hub) Register(c *Client) error {
	if h.sessions != nil {
		stop, err := h.sessions.Watch(c.UserID)
		if err != nil {
			return err
		}
		c.stopSession = stop
	}

	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("client registered", "user_id", c.UserID)
	return nil
}

// Unregister removes c and releases its scheduler session
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()

	if c.stopSession != nil {
		c.stopSession()
	}
	h.log.Debug("client unregistered", "user_id", c.UserID)
}

// Publish pushes a stats snapshot to every socket of userID. It matches
// store.ChangeFunc so it can be registered as a change hook.
func (h *Hub) Publish(userID string, stats domain.GameStats) {
	msg, err := encode(MsgStats, stats)
	if err != nil {
		h.log.Error("encode stats", "user_id", userID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		c.trySend(msg)
	}
}

// Connected reports how many sockets userID has open
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
