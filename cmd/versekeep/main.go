package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/versekeep/versekeep/internal/config"
	"github.com/versekeep/versekeep/internal/gitsource"
	"github.com/versekeep/versekeep/internal/importer"
	"github.com/versekeep/versekeep/internal/review"
	"github.com/versekeep/versekeep/internal/session"
	"github.com/versekeep/versekeep/internal/storage"
	"github.com/versekeep/versekeep/internal/web"
)

// reposDir returns the cache directory for git corpus clones, kept next to
// the database so it does not depend on the working directory.
func reposDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "repos")
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	// 1. Define and parse command-line flags
	flags := pflag.NewFlagSet("versekeep", pflag.ExitOnError)
	flags.String("config", "versekeep.yaml", "Path to the YAML configuration file")
	flags.String("db", config.Default().DB, "Path to the SQLite database file")
	flags.String("addr", config.Default().Addr, "HTTP listen address")
	importPath := flags.String("import", "", "Import a corpus from a local text file and exit")
	importGit := flags.String("import-git", "", "Import a corpus from a git repository URL and exit")
	gitFile := flags.String("git-file", "", "Corpus file inside the repository (with --import-git)")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Open the database
	db, err := storage.Open(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DB)

	// 3. One-shot import actions
	switch {
	case *importPath != "":
		runImport(db, *importPath)
		return
	case *importGit != "":
		name := *gitFile
		if name == "" {
			name = cfg.Corpus.GitFile
		}
		if name == "" {
			log.Fatal("--import-git requires --git-file (or corpus.git_file in the config)")
		}
		path, err := gitsource.Fetch(*importGit, name, reposDir(cfg.DB))
		if err != nil {
			log.Fatalf("Failed to fetch corpus repository: %v", err)
		}
		runImport(db, path)
		return
	}

	// 4. Serve the review UI
	tracker := review.NewTracker(db)
	sess := session.New(db, tracker, cfg.TopMemoryVerses())
	server := web.NewServer(db, tracker, sess, cfg.Review.DueLimit)

	slog.Info("listening", "addr", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, server))
}

func runImport(db *storage.DB, path string) {
	report, err := importer.ImportFile(db, path)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	slog.Info("import finished", "source", path, "processed", report.Processed, "skipped", report.Skipped)
}
