package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/config"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/db"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/service"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
)

// Creates (or reuses) a player in the configured storage and prints a token.
// With -coins the wallet is topped up, which helps when trying the shop.
func main() {
	username := flag.String("username", "testuser", "player username")
	password := flag.String("password", "testpass", "player password")
	coins := flag.Int64("coins", 0, "coins to add to the wallet")
	flag.Parse()

	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret)

	ctx := context.Background()
	kvStore, closeStore, err := db.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer closeStore()

	users := repository.NewUserRepository(kvStore)
	auth := service.NewAuthService(users, nil)

	session, err := auth.Register(ctx, *username, *password)
	if errors.Is(err, repository.ErrUsernameTaken) {
		session, err = auth.Login(ctx, *username, *password)
	}
	if err != nil {
		log.Fatalf("register/login failed: %v", err)
	}
	log.Printf("user id=%s username=%s created_at=%v\n", session.User.ID, session.User.Username, session.User.CreatedAt)

	if *coins != 0 {
		st, err := store.New(users).Update(ctx, session.User.ID, func(st *domain.GameStats) error {
			st.Coins += *coins
			return nil
		})
		if err != nil {
			log.Fatalf("top up failed: %v", err)
		}
		log.Printf("coins=%d\n", st.Coins)
	}

	log.Printf("token=%s\n", session.Token)
}
