package sm2

import (
	"math"
	"testing"
)

func TestNextStateFirstSuccess(t *testing.T) {
	next, err := NextState(State{EaseFactor: 2.5, Interval: 1}, 5)
	if err != nil {
		t.Fatalf("NextState returned an unexpected error: %v", err)
	}
	if next.Interval != 6 {
		t.Errorf("Expected first successful recall to jump to 6 days, got %d", next.Interval)
	}
	if next.EaseFactor < 2.5 {
		t.Errorf("Expected ease factor to grow on a perfect grade, got %.2f", next.EaseFactor)
	}
}

func TestNextStateCompounding(t *testing.T) {
	next, err := NextState(State{EaseFactor: 2.5, Interval: 6}, 5)
	if err != nil {
		t.Fatalf("NextState returned an unexpected error: %v", err)
	}
	// EF' = 2.5 + 0.1 = 2.6, interval = floor(6 * 2.6) = 15
	if math.Abs(next.EaseFactor-2.6) > 1e-9 {
		t.Errorf("Expected ease factor 2.6, got %.4f", next.EaseFactor)
	}
	if next.Interval != 15 {
		t.Errorf("Expected interval floor(6*2.6)=15, got %d", next.Interval)
	}
}

func TestNextStateFailureResets(t *testing.T) {
	for quality := 0; quality < 3; quality++ {
		next, err := NextState(State{EaseFactor: 2.2, Interval: 30}, quality)
		if err != nil {
			t.Fatalf("NextState(quality=%d) returned an unexpected error: %v", quality, err)
		}
		if next.Interval != 1 {
			t.Errorf("Expected quality %d to reset interval to 1, got %d", quality, next.Interval)
		}
	}
}

func TestNextStateEaseFactorFloor(t *testing.T) {
	state := State{EaseFactor: 1.3, Interval: 1}
	for quality := 0; quality <= 5; quality++ {
		next, err := NextState(state, quality)
		if err != nil {
			t.Fatalf("NextState(quality=%d) returned an unexpected error: %v", quality, err)
		}
		if next.EaseFactor < MinEaseFactor {
			t.Errorf("Ease factor dropped below floor for quality %d: %.4f", quality, next.EaseFactor)
		}
	}
}

func TestNextStateEaseFactorFormula(t *testing.T) {
	testCases := []struct {
		quality  int
		expected float64
	}{
		{5, 2.6},
		{4, 2.5},
		{3, 2.36},
		{2, 2.18},
		{1, 1.96},
		{0, 1.7},
	}
	for _, tc := range testCases {
		next, err := NextState(State{EaseFactor: 2.5, Interval: 10}, tc.quality)
		if err != nil {
			t.Fatalf("NextState(quality=%d) returned an unexpected error: %v", tc.quality, err)
		}
		if math.Abs(next.EaseFactor-tc.expected) > 1e-9 {
			t.Errorf("quality %d: expected ease factor %.2f, got %.4f", tc.quality, tc.expected, next.EaseFactor)
		}
	}
}

func TestNextStateInvalidQuality(t *testing.T) {
	for _, quality := range []int{-1, 6, 100} {
		if _, err := NextState(State{EaseFactor: 2.5, Interval: 1}, quality); err != ErrInvalidQuality {
			t.Errorf("Expected ErrInvalidQuality for quality %d, got %v", quality, err)
		}
	}
}
