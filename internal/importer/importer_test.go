package importer

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/versekeep/versekeep/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "versekeep.db"))
	if err != nil {
		t.Fatalf("storage.Open() returned an unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const sampleCorpus = `# King James Version sample
Genesis 1:1 In the beginning God created the heaven and the earth.
Genesis 1:2 And the earth was without form, and void.

this line matches no grammar
Exodus20:3 Thou shalt have no other gods before me.
John 3:16 For God so loved the world.
`

func TestImportCountsAndIDs(t *testing.T) {
	db := openTestDB(t)

	report, err := Import(db, strings.NewReader(sampleCorpus))
	if err != nil {
		t.Fatalf("Import() returned an unexpected error: %v", err)
	}
	if report.Processed != 4 {
		t.Errorf("Expected 4 processed lines, got %d", report.Processed)
	}
	if report.Skipped != 1 {
		t.Errorf("Expected 1 skipped line, got %d", report.Skipped)
	}

	// IDs are dense from 1, independent of skipped lines.
	for i, ref := range []struct {
		book    string
		chapter int
		verse   int
	}{
		{"Genesis", 1, 1},
		{"Genesis", 1, 2},
		{"Exodus", 20, 3},
		{"John", 3, 16},
	} {
		v, err := db.ByReference(ref.book, ref.chapter, ref.verse)
		if err != nil {
			t.Fatalf("ByReference(%s %d:%d) returned an unexpected error: %v", ref.book, ref.chapter, ref.verse, err)
		}
		if v.ID != int64(i+1) {
			t.Errorf("Expected %s %d:%d to have id %d, got %d", ref.book, ref.chapter, ref.verse, i+1, v.ID)
		}
	}
}

func TestImportReplacesPriorCorpus(t *testing.T) {
	db := openTestDB(t)

	if _, err := Import(db, strings.NewReader(sampleCorpus)); err != nil {
		t.Fatalf("Import() returned an unexpected error: %v", err)
	}
	report, err := Import(db, strings.NewReader("Psalms 23:1 The LORD is my shepherd; I shall not want.\n"))
	if err != nil {
		t.Fatalf("Import() returned an unexpected error: %v", err)
	}
	if report.Processed != 1 || report.Skipped != 0 {
		t.Errorf("Unexpected report: %+v", report)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() returned an unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected re-import to fully replace corpus, got %d verses", count)
	}
	if _, err := db.ByReference("Genesis", 1, 1); err == nil {
		t.Error("Expected verse from first import to be gone after second import")
	}
}

func TestImportDuplicateReferenceSkipped(t *testing.T) {
	db := openTestDB(t)

	corpus := `Genesis 1:1 In the beginning God created the heaven and the earth.
Genesis 1:1 A duplicate of the same reference.
`
	report, err := Import(db, strings.NewReader(corpus))
	if err != nil {
		t.Fatalf("Import() returned an unexpected error: %v", err)
	}
	if report.Processed != 1 || report.Skipped != 1 {
		t.Errorf("Expected duplicate to be skipped, got %+v", report)
	}
}

func TestImportFileUnreadableSourcePreservesCorpus(t *testing.T) {
	db := openTestDB(t)

	if _, err := Import(db, strings.NewReader(sampleCorpus)); err != nil {
		t.Fatalf("Import() returned an unexpected error: %v", err)
	}

	_, err := ImportFile(db, filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Expected a not-exist error for missing source, got %v", err)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() returned an unexpected error: %v", err)
	}
	if count != 4 {
		t.Errorf("Pre-import corpus must be preserved when the source is unreadable, got %d verses", count)
	}
}

func TestImportEmptySource(t *testing.T) {
	db := openTestDB(t)

	report, err := Import(db, strings.NewReader("# only a comment\n\n"))
	if err != nil {
		t.Fatalf("Import() returned an unexpected error: %v", err)
	}
	if report.Processed != 0 || report.Skipped != 0 {
		t.Errorf("Blank and comment lines must not be counted, got %+v", report)
	}
	count, _ := db.Count()
	if count != 0 {
		t.Errorf("Expected empty corpus, got %d verses", count)
	}
}
