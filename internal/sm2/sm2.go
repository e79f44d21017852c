// Package sm2 implements the SM-2 spaced-repetition scheduling function.
package sm2

import (
	"errors"
	"math"
)

// Quality grades a recall attempt, 0 (total failure) to 5 (perfect recall).
const (
	MinQuality = 0
	MaxQuality = 5
)

// MinEaseFactor is the floor below which the ease factor never drops,
// preventing runaway interval collapse.
const MinEaseFactor = 1.3

// ErrInvalidQuality is returned for quality grades outside [0,5]. Out-of-range
// input is rejected rather than clamped.
var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// State is the scheduling state consumed and produced by NextState.
type State struct {
	EaseFactor float64
	Interval   int
}

// NextState computes the scheduling state after one graded review. It is a
// pure function of its inputs.
//
// A failing grade (quality < 3) resets the interval to one day regardless of
// prior progress. The first successful recall after a reset jumps straight to
// six days; every success after that multiplies the interval by the new ease
// factor.
func NextState(current State, quality int) (State, error) {
	if quality < MinQuality || quality > MaxQuality {
		return State{}, ErrInvalidQuality
	}

	q := float64(quality)
	ease := current.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}

	var interval int
	switch {
	case quality < 3:
		interval = 1
	case current.Interval == 1:
		interval = 6
	default:
		interval = int(math.Floor(float64(current.Interval) * ease))
	}

	return State{EaseFactor: ease, Interval: interval}, nil
}
