// Package importer loads a line-oriented verse corpus into the store,
// replacing whatever was loaded before.
package importer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/versekeep/versekeep/internal/domain"
	"github.com/versekeep/versekeep/internal/parser"
	"github.com/versekeep/versekeep/internal/storage"
)

// maxLineSize bounds a single corpus line. Verse texts are short; 1 MiB leaves
// plenty of headroom for unusual sources.
const maxLineSize = 1 << 20

// ImportFile opens the corpus file at path and imports it. An unreadable
// source fails the whole call before any mutation, so the prior corpus is
// preserved.
func ImportFile(db *storage.DB, path string) (domain.ImportReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.ImportReport{}, fmt.Errorf("failed to open corpus source %s: %w", path, err)
	}
	defer file.Close()

	return Import(db, file)
}

// Import reads lines from r, parses each into a verse, and replaces the
// stored corpus in one transaction. Malformed lines are counted as skipped and
// never abort the import; blank lines and '#' comments are invisible to the
// report. IDs are assigned densely from 1 in accepted-line order.
func Import(db *storage.DB, r io.Reader) (domain.ImportReport, error) {
	var report domain.ImportReport
	var verses []domain.Verse
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if !parser.IsRecord(line) {
			continue
		}
		v, ok := parser.ParseLine(line)
		if !ok {
			report.Skipped++
			continue
		}
		// (book, chapter, verse) is unique within a corpus; a duplicate
		// reference is treated like any other bad line.
		key := v.Reference()
		if seen[key] {
			slog.Warn("duplicate reference in corpus, skipping", "reference", key)
			report.Skipped++
			continue
		}
		seen[key] = true

		v.ID = int64(len(verses) + 1)
		verses = append(verses, v)
		report.Processed++
	}
	if err := scanner.Err(); err != nil {
		return domain.ImportReport{}, fmt.Errorf("failed to read corpus source: %w", err)
	}

	if err := db.ReplaceVerses(verses); err != nil {
		return domain.ImportReport{}, err
	}

	slog.Info("corpus import complete", "processed", report.Processed, "skipped", report.Skipped)
	return report, nil
}
