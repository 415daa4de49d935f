// Package search implements the hybrid keyword + vector index over
// workspace artifacts and conversational facts (spec 4.B). The text side is
// a SQLite FTS5 virtual table (modernc.org/sqlite, pure Go, no cgo); the
// vector side is an in-memory map of hashed-bag-of-words embeddings,
// upsertable the same way a hosted embedding API would be.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"
)

// Config configures an Index.
type Config struct {
	// TextIndexPath is the SQLite database file backing the FTS5 text
	// index. ":memory:" is accepted for ephemeral/test use.
	TextIndexPath string
	Dimension     int
	TextWeight    float64
	VectorWeight  float64
	MaxResults    int
	EmbedCacheSize int
}

// DefaultConfig returns the spec's defaults: dimension 128, weights 0.5/0.5.
func DefaultConfig(path string) Config {
	return Config{
		TextIndexPath:  path,
		Dimension:      DefaultDimension,
		TextWeight:     0.5,
		VectorWeight:   0.5,
		MaxResults:     10,
		EmbedCacheSize: 512,
	}
}

// Result is a single ranked hit.
type Result struct {
	FactID  string
	Score   float64
	Content string
}

// Index is the hybrid text+vector store.
type Index struct {
	cfg Config
	db  *sql.DB

	mu         sync.RWMutex
	embeddings map[string][]float64
	content    map[string]string
	cache      *lru.Cache[string, []float64]
}

// Open creates or opens the persistent text index at cfg.TextIndexPath and
// an in-memory vector store fronted by an embedding cache.
func Open(cfg Config) (*Index, error) {
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	if cfg.TextWeight == 0 && cfg.VectorWeight == 0 {
		cfg.TextWeight, cfg.VectorWeight = 0.5, 0.5
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.EmbedCacheSize <= 0 {
		cfg.EmbedCacheSize = 512
	}

	db, err := sql.Open("sqlite", cfg.TextIndexPath)
	if err != nil {
		return nil, fmt.Errorf("open text index: %w", err)
	}
	if _, err := db.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS facts_fts USING fts5(fact_id UNINDEXED, content)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create fts5 table: %w", err)
	}

	cache, err := lru.New[string, []float64](cfg.EmbedCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Index{
		cfg:        cfg,
		db:         db,
		embeddings: make(map[string][]float64),
		content:    make(map[string]string),
		cache:      cache,
	}, nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// IndexFact adds content to the text index, commits, and upserts its
// embedding into the vector store.
func (idx *Index) IndexFact(ctx context.Context, id, content string) error {
	if _, err := idx.db.ExecContext(ctx, `DELETE FROM facts_fts WHERE fact_id = ?`, id); err != nil {
		return fmt.Errorf("clear stale fts row: %w", err)
	}
	if _, err := idx.db.ExecContext(ctx, `INSERT INTO facts_fts (fact_id, content) VALUES (?, ?)`, id, content); err != nil {
		return fmt.Errorf("insert fts row: %w", err)
	}

	vec := idx.embed(content)

	idx.mu.Lock()
	idx.embeddings[id] = vec
	idx.content[id] = content
	idx.mu.Unlock()
	return nil
}

// RemoveFact deletes id from both the text index and the vector store.
// Both removals happen under the same lock acquisition so a reader started
// afterward never observes a partial deletion.
func (idx *Index) RemoveFact(ctx context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, err := idx.db.ExecContext(ctx, `DELETE FROM facts_fts WHERE fact_id = ?`, id); err != nil {
		return fmt.Errorf("remove fts row: %w", err)
	}
	delete(idx.embeddings, id)
	delete(idx.content, id)
	idx.cache.Remove(id)
	return nil
}

func (idx *Index) embed(content string) []float64 {
	if v, ok := idx.cache.Get(content); ok {
		return v
	}
	v := Embed(content, idx.cfg.Dimension)
	idx.cache.Add(content, v)
	return v
}

// SearchText runs a keyword query against the FTS5 index. Scores are
// derived from SQLite's bm25() ranking, which returns more-negative values
// for better matches; this negates it so higher is better, matching the
// vector side's convention.
func (idx *Index) SearchText(ctx context.Context, query string, limit int) ([]Result, error) {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT fact_id, content, bm25(facts_fts) FROM facts_fts WHERE facts_fts MATCH ? ORDER BY bm25(facts_fts) LIMIT ?`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var id, content string
		var bm25 float64
		if err := rows.Scan(&id, &content, &bm25); err != nil {
			return nil, fmt.Errorf("scan text search row: %w", err)
		}
		out = append(out, Result{FactID: id, Content: content, Score: -bm25})
	}
	return out, rows.Err()
}

// SearchVector ranks every indexed fact by cosine similarity to query's
// embedding.
func (idx *Index) SearchVector(query string, limit int) []Result {
	qv := idx.embed(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]Result, 0, len(idx.embeddings))
	for id, vec := range idx.embeddings {
		out = append(out, Result{FactID: id, Content: idx.content[id], Score: CosineSimilarity(qv, vec)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Search combines text and vector results with the configured weights,
// merges by fact_id, sorts descending by combined score, and truncates to
// max_results.
func (idx *Index) Search(ctx context.Context, query string) ([]Result, error) {
	textResults, err := idx.SearchText(ctx, query, idx.cfg.MaxResults*4)
	if err != nil {
		// A malformed FTS5 query (e.g. bare punctuation) degrades to
		// vector-only rather than failing the whole hybrid search.
		textResults = nil
	}
	vectorResults := idx.SearchVector(query, idx.cfg.MaxResults*4)

	combined := make(map[string]*Result)
	for _, r := range textResults {
		combined[r.FactID] = &Result{FactID: r.FactID, Content: r.Content, Score: idx.cfg.TextWeight * r.Score}
	}
	for _, r := range vectorResults {
		if existing, ok := combined[r.FactID]; ok {
			existing.Score += idx.cfg.VectorWeight * r.Score
		} else {
			combined[r.FactID] = &Result{FactID: r.FactID, Content: r.Content, Score: idx.cfg.VectorWeight * r.Score}
		}
	}

	out := make([]Result, 0, len(combined))
	for _, r := range combined {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > idx.cfg.MaxResults {
		out = out[:idx.cfg.MaxResults]
	}
	return out, nil
}
