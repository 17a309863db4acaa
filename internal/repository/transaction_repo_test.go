package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/domain"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/kv"
)

func TestTransactionCreateKeepsConcurrentAppends(t *testing.T) {
	repo := NewTransactionRepository(kv.NewMemory())
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, domain.Transaction{UserID: "u1", Type: domain.TxRefuel, Amount: int64(i)})
			if err != nil {
				t.Errorf("create: %v", err)
			}
		}(i)
	}
	wg.Wait()

	log, err := repo.GetByUserID(ctx, "u1", 1000)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(log) != n {
		t.Fatalf("log has %d entries; want %d", len(log), n)
	}
}

func TestTransactionLogIsCappedNewestFirst(t *testing.T) {
	repo := NewTransactionRepository(kv.NewMemory())
	ctx := context.Background()
	start := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	for i := 0; i < maxSpendLog+5; i++ {
		tx := domain.Transaction{UserID: "u1", Type: domain.TxRefuel, Amount: int64(i), CreatedAt: start.Add(time.Duration(i) * time.Second)}
		if err := repo.Create(ctx, tx); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := repo.GetByUserID(ctx, "u1", 1000)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(all) != maxSpendLog {
		t.Fatalf("len = %d; want %d", len(all), maxSpendLog)
	}
	if all[0].Amount != maxSpendLog+4 || all[len(all)-1].Amount != 5 {
		t.Fatalf("order = first %d last %d", all[0].Amount, all[len(all)-1].Amount)
	}

	recent, _ := repo.GetByUserID(ctx, "u1", 0)
	if len(recent) != 100 {
		t.Fatalf("default limit = %d; want 100", len(recent))
	}
}
