package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/game"
)

// Spins the prize wheel many times and compares observed frequencies with
// the configured weights.
func main() {
	spins := flag.Int("spins", 100000, "number of spins")
	flag.Parse()

	w := game.NewPrizeWheel()
	counts := make(map[int]int)
	var paid int64
	for i := 0; i < *spins; i++ {
		res, err := w.Spin()
		if err != nil {
			log.Fatalf("spin: %v", err)
		}
		counts[res.Segment.ID]++
		paid += res.Segment.Coins
	}

	fmt.Printf("%-8s %10s %10s %10s\n", "coins", "expected", "observed", "hits")
	for i, s := range w.Segments() {
		observed := float64(counts[s.ID]) / float64(*spins)
		fmt.Printf("%-8d %9.2f%% %9.2f%% %10d\n", s.Coins, w.Probability(i)*100, observed*100, counts[s.ID])
	}
	fmt.Printf("\nexpected payout %.2f, observed %.2f coins per spin\n", w.ExpectedPayout(), float64(paid)/float64(*spins))
}
