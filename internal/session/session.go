// Package session holds the state of one review session: the currently
// selected verse, test mode, and the attempt counter. It replaces shared
// mutable selection state so multiple sessions can coexist.
package session

import (
	"errors"
	"math/rand/v2"

	"github.com/versekeep/versekeep/internal/domain"
	"github.com/versekeep/versekeep/internal/grader"
	"github.com/versekeep/versekeep/internal/review"
	"github.com/versekeep/versekeep/internal/storage"
)

// MaxAttempts is how many failed recall attempts are allowed before the
// canonical text is revealed.
const MaxAttempts = 5

// ErrNoActiveTest is returned when an attempt is submitted outside a test.
var ErrNoActiveTest = errors.New("no memory test in progress")

// Outcome classifies the result of one submitted attempt.
type Outcome int

const (
	// Pass: the attempt matched; the verse is marked memorized.
	Pass Outcome = iota
	// Retry: the attempt failed and a hint is offered.
	Retry
	// Reveal: attempts are exhausted and the canonical text is shown.
	Reveal
)

// Feedback is what the UI shows after an attempt.
type Feedback struct {
	Outcome Outcome
	Hint    string
	Text    string
	Attempt int
	Limit   int
}

// Session drives one user's browse/test/review flow.
type Session struct {
	db      *storage.DB
	tracker *review.Tracker

	// topVerses is the static "top memory verses" table from configuration.
	topVerses []domain.Verse

	current  domain.Verse
	testMode bool
	attempts int
}

// New creates a session. topVerses may be nil, in which case the built-in
// default list is used.
func New(db *storage.DB, tracker *review.Tracker, topVerses []domain.Verse) *Session {
	if len(topVerses) == 0 {
		topVerses = domain.DefaultTopVerses()
	}
	return &Session{db: db, tracker: tracker, topVerses: topVerses}
}

// Current returns the currently selected verse.
func (s *Session) Current() domain.Verse {
	return s.current
}

// InTest reports whether a memory test is in progress.
func (s *Session) InTest() bool {
	return s.testMode
}

// LoadRandom selects a uniformly random verse from the corpus, falling back
// to John 3:16 when the store is empty so the UI always has something to show.
func (s *Session) LoadRandom() (domain.Verse, error) {
	v, err := s.db.RandomVerse()
	if errors.Is(err, domain.ErrEmptyCorpus) {
		v = domain.FallbackVerse()
	} else if err != nil {
		return domain.Verse{}, err
	}
	s.setCurrent(v)
	return v, nil
}

// LoadReference selects a specific verse.
func (s *Session) LoadReference(book string, chapter, verse int) (domain.Verse, error) {
	v, err := s.db.ByReference(book, chapter, verse)
	if err != nil {
		return domain.Verse{}, err
	}
	s.setCurrent(v)
	return v, nil
}

// LoadTopVerse selects a uniformly random entry from the top memory verses
// table.
func (s *Session) LoadTopVerse() domain.Verse {
	v := s.topVerses[rand.IntN(len(s.topVerses))]
	s.setCurrent(v)
	return v
}

// StartTest begins a memory test on the current verse.
func (s *Session) StartTest() {
	s.testMode = true
	s.attempts = 0
}

// SubmitAttempt grades one recall attempt against the current verse. A pass
// marks the verse memorized (resetting any prior schedule). A failure offers
// a progressively stronger hint until MaxAttempts is reached, then reveals the
// canonical text and ends the test.
func (s *Session) SubmitAttempt(attempt string) (Feedback, error) {
	if !s.testMode {
		return Feedback{}, ErrNoActiveTest
	}

	res := grader.Grade(attempt, s.current.Text, s.attempts+1)
	if res.Pass {
		s.testMode = false
		if err := s.tracker.MarkMemorized(s.current.Book, s.current.Chapter, s.current.Verse); err != nil {
			return Feedback{}, err
		}
		return Feedback{Outcome: Pass, Text: s.current.Text}, nil
	}

	s.attempts++
	if s.attempts >= MaxAttempts {
		s.testMode = false
		return Feedback{Outcome: Reveal, Text: s.current.Text, Attempt: s.attempts, Limit: MaxAttempts}, nil
	}
	return Feedback{
		Outcome: Retry,
		Hint:    res.Hint,
		Attempt: s.attempts,
		Limit:   MaxAttempts,
	}, nil
}

func (s *Session) setCurrent(v domain.Verse) {
	s.current = v
	s.testMode = false
	s.attempts = 0
}
