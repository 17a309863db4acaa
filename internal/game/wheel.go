package game

import (
	"crypto/rand"
	"errors"
	"math/big"
)

var ErrEmptyWheel = errors.New("wheel has no weighted segments")

// WheelSegment represents a single prize segment on the wheel
type WheelSegment struct {
	ID     int    `json:"id"`
	Coins  int64  `json:"coins"`
	Weight int64  `json:"weight"`
	Color  string `json:"color"`
	Label  string `json:"label"`
}

// SpinResult is the outcome of one spin
type SpinResult struct {
	Segment   WheelSegment `json:"segment"`
	SpinAngle float64      `json:"spin_angle"` // final angle for frontend animation
}

// Source returns a uniform integer in [0, n)
type Source func(n int64) (int64, error)

// CryptoSource draws from crypto/rand
func CryptoSource(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// PrizeWheel draws a segment with probability weight/totalWeight
type PrizeWheel struct {
	segments []WheelSegment
	total    int64
	rand     Source
}

// DefaultWheelSegments returns the default payout table. Weights sum to 100.
func DefaultWheelSegments() []WheelSegment {
	return []WheelSegment{
		{ID: 1, Coins: 5, Weight: 35, Color: "#4a4a4a", Label: "5"},
		{ID: 2, Coins: 10, Weight: 25, Color: "#e74c3c", Label: "10"},
		{ID: 3, Coins: 15, Weight: 15, Color: "#f39c12", Label: "15"},
		{ID: 4, Coins: 20, Weight: 12, Color: "#2ecc71", Label: "20"},
		{ID: 5, Coins: 25, Weight: 7, Color: "#3498db", Label: "25"},
		{ID: 6, Coins: 50, Weight: 5, Color: "#9b59b6", Label: "50"},
		{ID: 7, Coins: 100, Weight: 1, Color: "#f1c40f", Label: "100"},
	}
}

// NewPrizeWheel creates a wheel with the default segments
func NewPrizeWheel() *PrizeWheel {
	w, _ := NewPrizeWheelWithSegments(DefaultWheelSegments(), CryptoSource)
	return w
}

// NewPrizeWheelWithSegments creates a wheel with custom segments and source
func NewPrizeWheelWithSegments(segments []WheelSegment, src Source) (*PrizeWheel, error) {
	var total int64
	for _, s := range segments {
		if s.Weight > 0 {
			total += s.Weight
		}
	}
	if total == 0 {
		return nil, ErrEmptyWheel
	}
	if src == nil {
		src = CryptoSource
	}
	return &PrizeWheel{segments: segments, total: total, rand: src}, nil
}

// Segments returns a copy of the payout table
func (w *PrizeWheel) Segments() []WheelSegment {
	out := make([]WheelSegment, len(w.segments))
	copy(out, w.segments)
	return out
}

// Probability returns the chance of landing on the segment at index i
func (w *PrizeWheel) Probability(i int) float64 {
	if i < 0 || i >= len(w.segments) || w.segments[i].Weight <= 0 {
		return 0
	}
	return float64(w.segments[i].Weight) / float64(w.total)
}

// Spin performs the wheel spin and returns the winning segment
func (w *PrizeWheel) Spin() (SpinResult, error) {
	n, err := w.rand(w.total)
	if err != nil {
		return SpinResult{}, err
	}

	idx := w.pick(n)
	res := SpinResult{Segment: w.segments[idx]}

	// each segment takes 360/numSegments degrees, plus a random offset and full rotations
	segmentAngle := 360.0 / float64(len(w.segments))
	baseAngle := float64(idx) * segmentAngle
	var offset float64
	if span := int64(segmentAngle * 100); span > 0 {
		if o, err := w.rand(span); err == nil {
			offset = float64(o) / 100.0
		}
	}
	rotations := 5
	res.SpinAngle = float64(rotations*360) + baseAngle + offset

	return res, nil
}

func (w *PrizeWheel) pick(n int64) int {
	var cumulative int64
	for i, s := range w.segments {
		if s.Weight <= 0 {
			continue
		}
		cumulative += s.Weight
		if n < cumulative {
			return i
		}
	}
	return len(w.segments) - 1
}

// ExpectedPayout calculates the mean coins per spin
func (w *PrizeWheel) ExpectedPayout() float64 {
	expected := 0.0
	for i, s := range w.segments {
		expected += w.Probability(i) * float64(s.Coins)
	}
	return expected
}
