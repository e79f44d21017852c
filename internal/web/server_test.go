package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/versekeep/versekeep/internal/domain"
	"github.com/versekeep/versekeep/internal/review"
	"github.com/versekeep/versekeep/internal/session"
	"github.com/versekeep/versekeep/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "versekeep.db"))
	if err != nil {
		t.Fatalf("storage.Open() returned an unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	verses := []domain.Verse{
		{ID: 1, Book: "Genesis", Chapter: 1, Verse: 1, Text: "In the beginning God created the heaven and the earth."},
		{ID: 2, Book: "John", Chapter: 3, Verse: 16, Text: "For God so loved the world."},
	}
	if err := db.ReplaceVerses(verses); err != nil {
		t.Fatalf("ReplaceVerses() returned an unexpected error: %v", err)
	}

	tracker := review.NewTracker(db)
	sess := session.New(db, tracker, nil)
	return NewServer(db, tracker, sess, 10), db
}

func TestHandleBooks(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /books returned status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Genesis") || !strings.Contains(body, "John") {
		t.Errorf("Expected both books in response, got %q", body)
	}
}

func TestHandleVerseAndTestFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/verse?book=Genesis&chapter=1&verse=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /verse returned status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "In the beginning") {
		t.Errorf("Expected verse text in panel, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test/start", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /test/start returned status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "In the beginning") {
		t.Error("Verse text must be hidden during a test")
	}

	form := url.Values{"attempt": {"in the beginning God created the heaven and the earth"}}
	req := httptest.NewRequest(http.MethodPost, "/test/attempt", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /test/attempt returned status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Correct") {
		t.Errorf("Expected a pass, got %q", rec.Body.String())
	}
}

func TestHandleAttemptWithoutTest(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{"attempt": {"anything"}}
	req := httptest.NewRequest(http.MethodPost, "/test/attempt", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 when no test is running, got %d", rec.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=god", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /search returned status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "2 verses") {
		t.Errorf("Expected 2 matches reported, got %q", body)
	}
}

func TestHandleGrade(t *testing.T) {
	srv, db := newTestServer(t)

	tracker := review.NewTracker(db)
	if err := tracker.MarkMemorized("John", 3, 16); err != nil {
		t.Fatalf("MarkMemorized() returned an unexpected error: %v", err)
	}

	form := url.Values{
		"book":    {"John"},
		"chapter": {"3"},
		"verse":   {"16"},
		"quality": {"5"},
	}
	req := httptest.NewRequest(http.MethodPost, "/reviews/grade", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /reviews/grade returned status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "6 day") {
		t.Errorf("Expected next interval of 6 days in response, got %q", rec.Body.String())
	}

	// Out-of-range quality is rejected before touching the tracker.
	form.Set("quality", "9")
	req = httptest.NewRequest(http.MethodPost, "/reviews/grade", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for quality 9, got %d", rec.Code)
	}
}

func TestHandleGradeNotMemorized(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{
		"book":    {"Genesis"},
		"chapter": {"1"},
		"verse":   {"1"},
		"quality": {"4"},
	}
	req := httptest.NewRequest(http.MethodPost, "/reviews/grade", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unmemorized verse, got %d", rec.Code)
	}
}

func TestHandleRandomFallsBackOnEmptyCorpus(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "versekeep.db"))
	if err != nil {
		t.Fatalf("storage.Open() returned an unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	tracker := review.NewTracker(db)
	srv := NewServer(db, tracker, session.New(db, tracker, nil), 10)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/random", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /random returned status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "John 3:16") {
		t.Errorf("Expected the fallback verse, got %q", rec.Body.String())
	}
}
