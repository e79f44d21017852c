// Package gitsource fetches a corpus repository so a verse corpus can be
// imported straight from a git URL.
package gitsource

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Sync clones the repository at url into localPath, or pulls the latest
// changes if a clone already exists there.
func Sync(url, localPath string) error {
	_, err := os.Stat(localPath)
	if os.IsNotExist(err) {
		slog.Info("cloning corpus repository", "url", url, "path", localPath)
		_, err := git.PlainClone(localPath, false, &git.CloneOptions{
			URL:   url,
			Depth: 1,
		})
		if err != nil {
			return fmt.Errorf("failed to clone corpus repo %s: %w", url, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	slog.Info("pulling corpus repository", "path", localPath)
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open corpus repo at %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree at %s: %w", localPath, err)
	}
	err = worktree.Pull(&git.PullOptions{RemoteName: "origin"})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to pull corpus repo at %s: %w", localPath, err)
	}
	return nil
}

// Fetch syncs the repository into a cache directory and returns the local
// path of the corpus file inside it.
func Fetch(url, corpusFile, cacheDir string) (string, error) {
	localPath := filepath.Join(cacheDir, repoDirName(url))
	if err := Sync(url, localPath); err != nil {
		return "", err
	}
	return filepath.Join(localPath, corpusFile), nil
}

// repoDirName derives a stable directory name from a repository URL.
func repoDirName(url string) string {
	base := filepath.Base(url)
	if ext := filepath.Ext(base); ext == ".git" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "corpus"
	}
	return base
}
