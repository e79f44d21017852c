package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/versekeep/versekeep/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// timeLayout is how timestamps are stored in the database.
const timeLayout = time.RFC3339Nano

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ReplaceVerses discards the current corpus and stores the given verses in a
// single transaction: readers observe either the previous corpus or the new
// one, never a partial load.
func (db *DB) ReplaceVerses(verses []domain.Verse) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM verses`); err != nil {
		return fmt.Errorf("failed to clear verses: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO verses (id, book, chapter, verse, text)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare verse insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range verses {
		if _, err := stmt.Exec(v.ID, v.Book, v.Chapter, v.Verse, v.Text); err != nil {
			return fmt.Errorf("failed to insert verse %s: %w", v.Reference(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace transaction: %w", err)
	}
	return nil
}

// Count returns the number of verses in the corpus.
func (db *DB) Count() (int, error) {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM verses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count verses: %w", err)
	}
	return count, nil
}

// RandomVerse returns a uniformly random verse from the committed corpus.
// Returns domain.ErrEmptyCorpus when no verses are loaded.
func (db *DB) RandomVerse() (domain.Verse, error) {
	var v domain.Verse
	row := db.conn.QueryRow(`
		SELECT id, book, chapter, verse, text
		FROM verses ORDER BY RANDOM() LIMIT 1
	`)
	err := row.Scan(&v.ID, &v.Book, &v.Chapter, &v.Verse, &v.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Verse{}, domain.ErrEmptyCorpus
		}
		return domain.Verse{}, fmt.Errorf("failed to select random verse: %w", err)
	}
	return v, nil
}

// ByReference retrieves a specific verse. Returns domain.ErrNotFound when the
// reference matches no record.
func (db *DB) ByReference(book string, chapter, verse int) (domain.Verse, error) {
	var v domain.Verse
	row := db.conn.QueryRow(`
		SELECT id, book, chapter, verse, text
		FROM verses WHERE book = ? AND chapter = ? AND verse = ?
	`, book, chapter, verse)
	err := row.Scan(&v.ID, &v.Book, &v.Chapter, &v.Verse, &v.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Verse{}, domain.ErrNotFound
		}
		return domain.Verse{}, fmt.Errorf("failed to find verse %s %d:%d: %w", book, chapter, verse, err)
	}
	return v, nil
}

// Books lists the distinct book names in first-appearance (import) order.
func (db *DB) Books() ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT book FROM verses GROUP BY book ORDER BY MIN(id)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []string
	for rows.Next() {
		var book string
		if err := rows.Scan(&book); err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// Chapters lists the chapter numbers present for a book, ascending.
func (db *DB) Chapters(book string) ([]int, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT chapter FROM verses WHERE book = ? ORDER BY chapter
	`, book)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters for %s: %w", book, err)
	}
	defer rows.Close()

	var chapters []int
	for rows.Next() {
		var ch int
		if err := rows.Scan(&ch); err != nil {
			return nil, fmt.Errorf("failed to scan chapter row: %w", err)
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

// VersesInChapter lists the verses of one chapter, ascending by verse number.
func (db *DB) VersesInChapter(book string, chapter int) ([]domain.Verse, error) {
	rows, err := db.conn.Query(`
		SELECT id, book, chapter, verse, text
		FROM verses WHERE book = ? AND chapter = ? ORDER BY verse
	`, book, chapter)
	if err != nil {
		return nil, fmt.Errorf("failed to list verses for %s %d: %w", book, chapter, err)
	}
	defer rows.Close()

	var verses []domain.Verse
	for rows.Next() {
		var v domain.Verse
		if err := rows.Scan(&v.ID, &v.Book, &v.Chapter, &v.Verse, &v.Text); err != nil {
			return nil, fmt.Errorf("failed to scan verse row: %w", err)
		}
		verses = append(verses, v)
	}
	return verses, rows.Err()
}

// SearchSubstring returns all verses whose text contains the word,
// case-insensitively, ordered by id. The count is the number of matching
// verses, not the number of occurrences within each text.
func (db *DB) SearchSubstring(word string) (int, []domain.Verse, error) {
	pattern := "%" + escapeLike(word) + "%"
	rows, err := db.conn.Query(`
		SELECT id, book, chapter, verse, text
		FROM verses WHERE text LIKE ? ESCAPE '\' ORDER BY id
	`, pattern)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to search for %q: %w", word, err)
	}
	defer rows.Close()

	var verses []domain.Verse
	for rows.Next() {
		var v domain.Verse
		if err := rows.Scan(&v.ID, &v.Book, &v.Chapter, &v.Verse, &v.Text); err != nil {
			return 0, nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		verses = append(verses, v)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	return len(verses), verses, nil
}

// escapeLike neutralises LIKE wildcards so the search term is matched as a
// literal substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
