// Package indexer implements the project indexer: it walks a workspace
// root respecting ignore rules and feeds file paths, signatures, and
// content summaries into the hybrid search index (spec 4.C).
package indexer

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nextlevelbuilder/goclaw/internal/safety"
)

// FactIndexer is the subset of search.Index the indexer depends on, kept
// narrow so tests can fake it without spinning up SQLite.
type FactIndexer interface {
	IndexFact(ctx context.Context, id, content string) error
	RemoveFact(ctx context.Context, id string) error
}

const defaultMaxFileBytes = 256 * 1024

// Config controls a walk.
type Config struct {
	Root          string
	IgnoreGlobs   []string // matched with safety.MatchGlob against the path relative to Root
	MaxFileBytes  int64
	SummaryLines  int
}

// DefaultConfig returns sensible defaults: common VCS/build directories
// ignored, 256KB file cap, 40-line summaries.
func DefaultConfig(root string) Config {
	return Config{
		Root: root,
		IgnoreGlobs: []string{
			"**/.git/**", "**/node_modules/**", "**/vendor/**",
			"**/.rustant/**", "**/*.png", "**/*.jpg", "**/*.exe", "**/*.bin",
		},
		MaxFileBytes: defaultMaxFileBytes,
		SummaryLines: 40,
	}
}

// Indexer walks a workspace and keeps a FactIndexer in sync with its files.
type Indexer struct {
	cfg   Config
	facts FactIndexer
	// indexed tracks fact IDs (relative paths) we've pushed, so a later
	// re-walk can detect and remove files that disappeared.
	indexed map[string]bool
}

// New creates an Indexer over facts with cfg.
func New(cfg Config, facts FactIndexer) *Indexer {
	return &Indexer{cfg: cfg, facts: facts, indexed: make(map[string]bool)}
}

func (ix *Indexer) ignored(relPath string) bool {
	return safety.MatchAny(ix.cfg.IgnoreGlobs, relPath)
}

// Walk indexes every non-ignored file under cfg.Root, and removes any
// previously-indexed fact whose file disappeared since the last Walk.
func (ix *Indexer) Walk(ctx context.Context) error {
	seen := make(map[string]bool)

	err := filepath.WalkDir(ix.cfg.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(ix.cfg.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if ix.ignored(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if ix.ignored(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > ix.cfg.MaxFileBytes {
			return nil
		}

		summary, err := summarize(path, ix.cfg.SummaryLines)
		if err != nil {
			slog.Warn("indexer: skipping unreadable file", "path", path, "error", err)
			return nil
		}

		content := fmt.Sprintf("%s\n%s", rel, summary)
		if err := ix.facts.IndexFact(ctx, rel, content); err != nil {
			return fmt.Errorf("index %s: %w", rel, err)
		}
		seen[rel] = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk workspace: %w", err)
	}

	for id := range ix.indexed {
		if !seen[id] {
			if err := ix.facts.RemoveFact(ctx, id); err != nil {
				slog.Warn("indexer: failed to remove stale fact", "id", id, "error", err)
			}
		}
	}
	ix.indexed = seen
	return nil
}

// IndexFile re-indexes a single file, relative to cfg.Root, used by the
// live fsnotify watcher on individual create/write events.
func (ix *Indexer) IndexFile(ctx context.Context, absPath string) error {
	rel, err := filepath.Rel(ix.cfg.Root, absPath)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	if ix.ignored(rel) {
		return nil
	}
	summary, err := summarize(absPath, ix.cfg.SummaryLines)
	if err != nil {
		return nil
	}
	content := fmt.Sprintf("%s\n%s", rel, summary)
	if err := ix.facts.IndexFact(ctx, rel, content); err != nil {
		return err
	}
	ix.indexed[rel] = true
	return nil
}

// RemoveFile drops a single file (relative to cfg.Root) from the index,
// used on fsnotify remove/rename events.
func (ix *Indexer) RemoveFile(ctx context.Context, absPath string) error {
	rel, err := filepath.Rel(ix.cfg.Root, absPath)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	delete(ix.indexed, rel)
	return ix.facts.RemoveFact(ctx, rel)
}

func summarize(path string, maxLines int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lines := 0
	for scanner.Scan() && lines < maxLines {
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
		lines++
	}
	return b.String(), nil
}
