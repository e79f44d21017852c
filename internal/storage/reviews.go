package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/versekeep/versekeep/internal/domain"
)

// MemorizedVerse pairs a review state with the verse it references.
type MemorizedVerse struct {
	Verse domain.Verse
	State domain.ReviewState
}

// SaveReviewState inserts or replaces the review state for one reference.
func (db *DB) SaveReviewState(state domain.ReviewState) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO reviews (book, chapter, verse, last_reviewed, ease_factor, interval)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		state.Book,
		state.Chapter,
		state.Verse,
		state.LastReviewed.UTC().Format(timeLayout),
		state.EaseFactor,
		state.Interval,
	)
	if err != nil {
		return fmt.Errorf("failed to save review state for %s %d:%d: %w", state.Book, state.Chapter, state.Verse, err)
	}
	return nil
}

// ReviewState retrieves the review state for one reference. Returns
// domain.ErrNotFound when the verse was never marked memorized.
func (db *DB) ReviewState(book string, chapter, verse int) (domain.ReviewState, error) {
	row := db.conn.QueryRow(`
		SELECT book, chapter, verse, last_reviewed, ease_factor, interval
		FROM reviews WHERE book = ? AND chapter = ? AND verse = ?
	`, book, chapter, verse)

	state, err := scanReviewState(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReviewState{}, domain.ErrNotFound
		}
		return domain.ReviewState{}, fmt.Errorf("failed to find review state for %s %d:%d: %w", book, chapter, verse, err)
	}
	return state, nil
}

// MemorizedVerses returns every review state whose verse still exists in the
// corpus, joined with the verse record. Orphaned states (the reference is
// absent from the current corpus) are excluded.
func (db *DB) MemorizedVerses() ([]MemorizedVerse, error) {
	rows, err := db.conn.Query(`
		SELECT v.id, v.book, v.chapter, v.verse, v.text,
		       r.last_reviewed, r.ease_factor, r.interval
		FROM reviews r
		JOIN verses v ON r.book = v.book AND r.chapter = v.chapter AND r.verse = v.verse
		ORDER BY v.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list memorized verses: %w", err)
	}
	defer rows.Close()

	var memorized []MemorizedVerse
	for rows.Next() {
		var mv MemorizedVerse
		var lastReviewed string
		if err := rows.Scan(
			&mv.Verse.ID,
			&mv.Verse.Book,
			&mv.Verse.Chapter,
			&mv.Verse.Verse,
			&mv.Verse.Text,
			&lastReviewed,
			&mv.State.EaseFactor,
			&mv.State.Interval,
		); err != nil {
			return nil, fmt.Errorf("failed to scan memorized verse row: %w", err)
		}
		mv.State.Book = mv.Verse.Book
		mv.State.Chapter = mv.Verse.Chapter
		mv.State.Verse = mv.Verse.Verse
		t, err := time.Parse(timeLayout, lastReviewed)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_reviewed %q: %w", lastReviewed, err)
		}
		mv.State.LastReviewed = t
		memorized = append(memorized, mv)
	}
	return memorized, rows.Err()
}

// DeleteReviewState removes a reference from the memorized set.
func (db *DB) DeleteReviewState(book string, chapter, verse int) error {
	_, err := db.conn.Exec(`
		DELETE FROM reviews WHERE book = ? AND chapter = ? AND verse = ?
	`, book, chapter, verse)
	if err != nil {
		return fmt.Errorf("failed to delete review state for %s %d:%d: %w", book, chapter, verse, err)
	}
	return nil
}

type scanFunc func(dest ...any) error

func scanReviewState(scan scanFunc) (domain.ReviewState, error) {
	var state domain.ReviewState
	var lastReviewed string
	if err := scan(
		&state.Book,
		&state.Chapter,
		&state.Verse,
		&lastReviewed,
		&state.EaseFactor,
		&state.Interval,
	); err != nil {
		return domain.ReviewState{}, err
	}
	t, err := time.Parse(timeLayout, lastReviewed)
	if err != nil {
		return domain.ReviewState{}, fmt.Errorf("failed to parse last_reviewed %q: %w", lastReviewed, err)
	}
	state.LastReviewed = t
	return state, nil
}
