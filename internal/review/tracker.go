// Package review tracks which verses are memorized and decides when they are
// due using the SM-2 scheduler.
package review

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/versekeep/versekeep/internal/domain"
	"github.com/versekeep/versekeep/internal/sm2"
	"github.com/versekeep/versekeep/internal/storage"
)

// Due pairs a verse with its review state and how many days overdue it is.
type Due struct {
	Verse   domain.Verse
	State   domain.ReviewState
	Overdue float64
}

// Tracker persists spaced-repetition state through the store.
type Tracker struct {
	db *storage.DB

	// now is injectable for tests.
	now func() time.Time
}

// NewTracker creates a tracker backed by the given store.
func NewTracker(db *storage.DB) *Tracker {
	return &Tracker{db: db, now: time.Now}
}

// MarkMemorized puts a verse into the memorized set with the default
// scheduling state. Re-memorizing an already-tracked verse resets its progress
// rather than accumulating.
func (t *Tracker) MarkMemorized(book string, chapter, verse int) error {
	state := domain.ReviewState{
		Book:         book,
		Chapter:      chapter,
		Verse:        verse,
		EaseFactor:   domain.InitialEaseFactor,
		Interval:     domain.InitialInterval,
		LastReviewed: t.now(),
	}
	return t.db.SaveReviewState(state)
}

// Forget removes a verse from the memorized set.
func (t *Tracker) Forget(book string, chapter, verse int) error {
	return t.db.DeleteReviewState(book, chapter, verse)
}

// DueForReview returns at most limit memorized verses whose elapsed time since
// last review has reached their interval, most-overdue first. Review states
// whose verse is absent from the current corpus are excluded.
func (t *Tracker) DueForReview(limit int) ([]Due, error) {
	memorized, err := t.db.MemorizedVerses()
	if err != nil {
		return nil, err
	}

	now := t.now()
	var due []Due
	for _, mv := range memorized {
		elapsedDays := now.Sub(mv.State.LastReviewed).Hours() / 24
		overdue := elapsedDays - float64(mv.State.Interval)
		if overdue >= 0 {
			due = append(due, Due{Verse: mv.Verse, State: mv.State, Overdue: overdue})
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].Overdue > due[j].Overdue
	})
	if limit >= 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// RecordReview grades one review of a memorized verse and reschedules it.
// Returns domain.ErrNotMemorized if the verse is not in the memorized set and
// sm2.ErrInvalidQuality for grades outside [0,5].
func (t *Tracker) RecordReview(book string, chapter, verse, quality int) (domain.ReviewState, error) {
	state, err := t.db.ReviewState(book, chapter, verse)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ReviewState{}, fmt.Errorf("%w: %s %d:%d", domain.ErrNotMemorized, book, chapter, verse)
		}
		return domain.ReviewState{}, err
	}

	next, err := sm2.NextState(sm2.State{EaseFactor: state.EaseFactor, Interval: state.Interval}, quality)
	if err != nil {
		return domain.ReviewState{}, err
	}

	state.EaseFactor = next.EaseFactor
	state.Interval = next.Interval
	state.LastReviewed = t.now()
	if err := t.db.SaveReviewState(state); err != nil {
		return domain.ReviewState{}, err
	}
	return state, nil
}
