package domain

import (
	"errors"
	"fmt"
	"time"
)

// Verse is a single addressable corpus record. IDs are assigned densely from 1
// in import order and never change for the lifetime of a loaded corpus.
type Verse struct {
	ID      int64
	Book    string
	Chapter int
	Verse   int
	Text    string
}

// ReviewState is the spaced-repetition state for one memorized verse,
// keyed by (book, chapter, verse).
type ReviewState struct {
	Book         string
	Chapter      int
	Verse        int
	EaseFactor   float64
	Interval     int
	LastReviewed time.Time
}

// ImportReport summarises one corpus import.
type ImportReport struct {
	Processed int
	Skipped   int
}

// Scheduling defaults for a freshly memorized verse.
const (
	InitialEaseFactor = 2.5
	InitialInterval   = 1
)

var (
	// ErrNotFound is returned when a verse lookup matches no record.
	ErrNotFound = errors.New("verse not found")
	// ErrEmptyCorpus is returned when an operation needs at least one verse
	// and the store holds none.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrNotMemorized is returned when a review is recorded against a verse
	// that was never marked memorized.
	ErrNotMemorized = errors.New("verse not memorized")
)

// FallbackVerse is shown when the store is empty: the review surface must
// always have something to display.
func FallbackVerse() Verse {
	return Verse{
		Book:    "John",
		Chapter: 3,
		Verse:   16,
		Text:    "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life.",
	}
}

// Reference renders the canonical "Book Chapter:Verse" form.
func (v Verse) Reference() string {
	return fmt.Sprintf("%s %d:%d", v.Book, v.Chapter, v.Verse)
}

// DefaultTopVerses is the built-in "top memory verses" table, used when the
// configuration supplies no replacement. The selection policy over it is a
// uniform random pick.
func DefaultTopVerses() []Verse {
	return []Verse{
		{Book: "James", Chapter: 2, Verse: 17, Text: "Faith without works is dead."},
		{Book: "John", Chapter: 3, Verse: 16, Text: "For God so loved the world, that he gave his only begotten Son..."},
		{Book: "Philippians", Chapter: 4, Verse: 13, Text: "I can do all things through Christ which strengtheneth me."},
		{Book: "Romans", Chapter: 8, Verse: 28, Text: "And we know that all things work together for good..."},
	}
}
