package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

// Prints the kv_store schema, or applies it with -apply.
func main() {
	apply := flag.Bool("apply", false, "apply migration")
	flag.Parse()

	if !*apply {
		fmt.Println(kv.Schema)
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := kv.NewPostgres(db).Migrate(context.Background()); err != nil {
		log.Fatalf("failed to apply kv_store schema: %v", err)
	}
	fmt.Println("applied kv_store schema")
}
