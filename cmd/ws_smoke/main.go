package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/service"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/ws"
)

// Signs a player in against a running server, opens the stats socket and
// taps a few times, printing every frame.
func main() {
	username := flag.String("username", "smoke", "player username")
	password := flag.String("password", "smokepass", "player password")
	taps := flag.Int("taps", 5, "taps to send")
	flag.Parse()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "127.0.0.1:" + port

	session, err := signIn(base, *username, *password)
	if err != nil {
		log.Fatalf("sign in: %v", err)
	}
	log.Printf("signed in as %s (%s)", session.User.Username, session.User.ID)

	wsURL := fmt.Sprintf("ws://%s/ws?token=%s", base, url.QueryEscape(session.Token))
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// ready, then the initial stats snapshot
	readFrame(conn, 2*time.Second)
	readFrame(conn, 2*time.Second)

	for i := 0; i < *taps; i++ {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"`+ws.MsgTap+`"}`)); err != nil {
			log.Fatalf("write tap: %v", err)
		}
		// each tap yields a stats push and a tap_result, in either order
		readFrame(conn, 3*time.Second)
		readFrame(conn, 3*time.Second)
	}

	log.Println("smoke test finished")
}

func signIn(base, username, password string) (*service.Session, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/auth/register"} {
		res, err := http.Post("http://"+base+path, "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusCreated {
			var s service.Session
			err := json.NewDecoder(res.Body).Decode(&s)
			res.Body.Close()
			return &s, err
		}
		res.Body.Close()
	}
	return nil, fmt.Errorf("could not log in or register %q", username)
}

func readFrame(conn *websocket.Conn, timeout time.Duration) {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		log.Printf("read error: %v", err)
		return
	}
	var env ws.Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("bad frame: %s", msg)
		return
	}
	log.Printf("%s: %s", env.Type, env.Data)
}
