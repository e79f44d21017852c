package web

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/versekeep/versekeep/internal/domain"
	"github.com/versekeep/versekeep/internal/importer"
	"github.com/versekeep/versekeep/internal/review"
	"github.com/versekeep/versekeep/internal/session"
	"github.com/versekeep/versekeep/internal/storage"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// maxSearchResults caps how many matches the search fragment renders; the
// total count is always shown.
const maxSearchResults = 20

var validate = validator.New()

// Server holds the dependencies for the HTTP server.
type Server struct {
	db        *storage.DB
	tracker   *review.Tracker
	router    *http.ServeMux
	templates *template.Template
	dueLimit  int

	// The browser UI drives a single review session.
	mu      sync.Mutex
	session *session.Session
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, tracker *review.Tracker, sess *session.Session, dueLimit int) *Server {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	s := &Server{
		db:        db,
		tracker:   tracker,
		router:    http.NewServeMux(),
		templates: tpl,
		dueLimit:  dueLimit,
		session:   sess,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create sub-filesystem for static assets: %v", err)
	}
	fileServer := http.FileServer(http.FS(staticFS))

	s.router.Handle("/static/", http.StripPrefix("/static/", fileServer))
	s.router.Handle("/", fileServer)

	// HTMX-based routes
	s.router.HandleFunc("GET /books", s.handleBooks)
	s.router.HandleFunc("GET /chapters", s.handleChapters)
	s.router.HandleFunc("GET /verses", s.handleVerses)
	s.router.HandleFunc("GET /verse", s.handleVerse)
	s.router.HandleFunc("GET /random", s.handleRandom)
	s.router.HandleFunc("GET /top", s.handleTopVerse)
	s.router.HandleFunc("GET /search", s.handleSearch)
	s.router.HandleFunc("POST /test/start", s.handleStartTest)
	s.router.HandleFunc("POST /test/attempt", s.handleAttempt)
	s.router.HandleFunc("GET /reviews/due", s.handleDue)
	s.router.HandleFunc("POST /reviews/grade", s.handleGrade)
	s.router.HandleFunc("POST /import", s.handleImport)
}

// versePanel is the data for the main verse display fragment.
type versePanel struct {
	Verse  domain.Verse
	InTest bool
}

func (s *Server) renderVersePanel(w http.ResponseWriter) {
	s.templates.ExecuteTemplate(w, "verse_panel", versePanel{
		Verse:  s.session.Current(),
		InTest: s.session.InTest(),
	})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.db.Books()
	if err != nil {
		slog.Error("failed to list books", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "book_options", books)
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	book := r.URL.Query().Get("book")
	chapters, err := s.db.Chapters(book)
	if err != nil {
		slog.Error("failed to list chapters", "book", book, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "chapter_options", map[string]any{
		"Book":     book,
		"Chapters": chapters,
	})
}

func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	book := r.URL.Query().Get("book")
	chapter, err := strconv.Atoi(r.URL.Query().Get("chapter"))
	if err != nil {
		http.Error(w, "Invalid chapter", http.StatusBadRequest)
		return
	}
	verses, err := s.db.VersesInChapter(book, chapter)
	if err != nil {
		slog.Error("failed to list verses", "book", book, "chapter", chapter, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "verse_options", map[string]any{
		"Book":    book,
		"Chapter": chapter,
		"Verses":  verses,
	})
}

func (s *Server) handleVerse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	chapter, errCh := strconv.Atoi(q.Get("chapter"))
	verse, errVs := strconv.Atoi(q.Get("verse"))
	if errCh != nil || errVs != nil {
		http.Error(w, "Invalid reference", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.session.LoadReference(q.Get("book"), chapter, verse); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to load verse", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.renderVersePanel(w)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.session.LoadRandom(); err != nil {
		slog.Error("failed to load random verse", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.renderVersePanel(w)
}

func (s *Server) handleTopVerse(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.LoadTopVerse()
	s.renderVersePanel(w)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		http.Error(w, "Missing search term", http.StatusBadRequest)
		return
	}
	count, verses, err := s.db.SearchSubstring(term)
	if err != nil {
		slog.Error("search failed", "term", term, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	shown := verses
	if len(shown) > maxSearchResults {
		shown = shown[:maxSearchResults]
	}
	s.templates.ExecuteTemplate(w, "search_results", map[string]any{
		"Term":   term,
		"Count":  count,
		"Verses": shown,
		"More":   count - len(shown),
	})
}

func (s *Server) handleStartTest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.StartTest()
	s.renderVersePanel(w)
}

// attemptRequest is the form payload of a recall attempt.
type attemptRequest struct {
	Attempt string `validate:"required"`
}

func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	req := attemptRequest{Attempt: r.PostFormValue("attempt")}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Attempt cannot be empty", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fb, err := s.session.SubmitAttempt(req.Attempt)
	if err != nil {
		if errors.Is(err, session.ErrNoActiveTest) {
			http.Error(w, "Start a memory test first", http.StatusConflict)
			return
		}
		slog.Error("failed to grade attempt", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "feedback", fb)
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	due, err := s.tracker.DueForReview(s.dueLimit)
	if err != nil {
		slog.Error("failed to list due reviews", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "due_list", due)
}

// gradeRequest is the form payload of a review grade.
type gradeRequest struct {
	Book    string `validate:"required"`
	Chapter int    `validate:"gt=0"`
	Verse   int    `validate:"gt=0"`
	Quality int    `validate:"gte=0,lte=5"`
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	chapter, errCh := strconv.Atoi(r.PostFormValue("chapter"))
	verse, errVs := strconv.Atoi(r.PostFormValue("verse"))
	quality, errQ := strconv.Atoi(r.PostFormValue("quality"))
	if errCh != nil || errVs != nil || errQ != nil {
		http.Error(w, "Invalid grade request", http.StatusBadRequest)
		return
	}
	req := gradeRequest{Book: r.PostFormValue("book"), Chapter: chapter, Verse: verse, Quality: quality}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid grade request", http.StatusBadRequest)
		return
	}

	state, err := s.tracker.RecordReview(req.Book, req.Chapter, req.Verse, req.Quality)
	if err != nil {
		if errors.Is(err, domain.ErrNotMemorized) {
			http.Error(w, "Verse is not memorized", http.StatusNotFound)
			return
		}
		slog.Error("failed to record review", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "grade_result", state)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("corpus")
	if err != nil {
		http.Error(w, "Missing corpus file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	report, err := importer.Import(s.db, file)
	if err != nil {
		slog.Error("import failed", "error", err)
		http.Error(w, "Import failed", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "import_report", report)
}
