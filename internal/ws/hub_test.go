package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/economy"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/service"
)

type fakeGame struct {
	mu    sync.Mutex
	stats domain.GameStats
}

func (g *fakeGame) Stats(context.Context, string) (domain.GameStats, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats, nil
}

func (g *fakeGame) Tap(context.Context, string) (economy.TapResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stats.TapsLeft == 0 {
		return economy.TapResult{Stats: g.stats}, nil
	}
	g.stats.TapsLeft--
	g.stats.Coins += 10
	return economy.TapResult{Applied: true, TapValue: 10, Stats: g.stats}, nil
}

type fakeSessions struct {
	mu      sync.Mutex
	active  map[string]int
	stopped chan string
}

func (s *fakeSessions) Watch(userID string) (func(), error) {
	s.mu.Lock()
	s.active[userID]++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.active[userID]--
		s.mu.Unlock()
		s.stopped <- userID
	}, nil
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return env
}

func TestSocketLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service.InitJWT("ws-secret")

	game := &fakeGame{stats: domain.NewGameStats()}
	sessions := &fakeSessions{active: map[string]int{}, stopped: make(chan string, 1)}
	hub := NewHub(game, sessions)

	r := gin.New()
	r.GET("/ws", HandleWS(hub, ""))
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := service.GenerateJWT("u1")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	if env := readEnvelope(t, conn); env.Type != MsgReady {
		t.Fatalf("first message = %s; want ready", env.Type)
	}
	env := readEnvelope(t, conn)
	if env.Type != MsgStats {
		t.Fatalf("second message = %s; want stats", env.Type)
	}
	var st domain.GameStats
	if err := json.Unmarshal(env.Data, &st); err != nil || st.TapsLeft != 100 {
		t.Fatalf("initial stats = %+v, %v", st, err)
	}
	if hub.Connected("u1") != 1 {
		t.Fatalf("connected = %d", hub.Connected("u1"))
	}

	if err := conn.WriteJSON(Envelope{Type: MsgTap}); err != nil {
		t.Fatalf("write tap: %v", err)
	}
	env = readEnvelope(t, conn)
	var tap TapResultPayload
	if env.Type != MsgTapResult || json.Unmarshal(env.Data, &tap) != nil || !tap.Applied || tap.TapValue != 10 {
		t.Fatalf("tap reply = %s %s", env.Type, env.Data)
	}

	hub.Publish("u1", domain.GameStats{Coins: 777})
	hub.Publish("someone-else", domain.GameStats{Coins: 1})
	env = readEnvelope(t, conn)
	if err := json.Unmarshal(env.Data, &st); err != nil || env.Type != MsgStats || st.Coins != 777 {
		t.Fatalf("published = %s %s", env.Type, env.Data)
	}

	_ = conn.Close()
	select {
	case uid := <-sessions.stopped:
		if uid != "u1" {
			t.Fatalf("stopped session of %s", uid)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session not released on disconnect")
	}
	if hub.Connected("u1") != 0 {
		t.Fatalf("connected after close = %d", hub.Connected("u1"))
	}
}

func TestSocketRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(&fakeGame{}, nil)
	r := gin.New()
	r.GET("/ws", HandleWS(hub, ""))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("response = %+v", resp)
	}
}
