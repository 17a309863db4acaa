package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/economy"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 64
)

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	Hub         *Hub
	Done        chan struct{}
	stopSession func()
	closeOnce   sync.Once
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		Hub:    hub,
		Done:   make(chan struct{}),
	}
}

// Run registers the client, sends the ready handshake and the current stats,
// then serves the socket until it closes
func (c *Client) Run() {
	if err := c.Hub.Register(c); err != nil {
		c.Hub.log.Error("register client", "user_id", c.UserID, "error", err)
		_ = c.Conn.Close()
		return
	}

	go c.writePump()

	c.queue(MsgReady, nil)
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	stats, err := c.Hub.game.Stats(ctx, c.UserID)
	cancel()
	if err == nil {
		c.queue(MsgStats, stats)
	} else {
		c.queue(MsgError, ErrorPayload{Message: err.Error()})
	}

	c.readPump()
	<-c.Done
}

func (c *Client) queue(msgType string, data any) {
	msg, err := encode(msgType, data)
	if err != nil {
		return
	}
	c.trySend(msg)
}

// trySend drops the message when the client is slow; the next snapshot
// supersedes it
func (c *Client) trySend(msg []byte) {
	select {
	case c.Send <- msg:
	default:
		c.Hub.log.Warn("send buffer full, dropping message", "user_id", c.UserID)
	}
}

//read
func (c *Client) readPump() {
	defer c.disconnect()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.log.Debug("read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.queue(MsgError, ErrorPayload{Message: "malformed message"})
		return
	}

	switch env.Type {
	case MsgPing:
		c.queue(MsgPong, nil)
	case MsgTap:
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		res, err := c.Hub.game.Tap(ctx, c.UserID)
		if err != nil {
			msg := "tap failed"
			if economy.IsRejection(err) {
				msg = err.Error()
			}
			c.queue(MsgError, ErrorPayload{Message: msg})
			return
		}
		c.queue(MsgTapResult, TapResultPayload{Applied: res.Applied, TapValue: res.TapValue, Depleted: res.Depleted})
	default:
		c.queue(MsgError, ErrorPayload{Message: "unknown message type"})
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-c.Done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Hub.log.Debug("write error", "user_id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

//disconnect
func (c *Client) disconnect() {
	c.closeOnce.Do(func() {
		c.Hub.Unregister(c)
		close(c.Done)
		_ = c.Conn.Close()
	})
}
