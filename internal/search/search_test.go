package search

import (
	"context"
	"testing"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestEmbedDeterministicAndNormalized(t *testing.T) {
	a := Embed("The Quick Brown Fox", DefaultDimension)
	b := Embed("the quick brown fox", DefaultDimension)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical input (modulo case) to embed identically at index %d: %v vs %v", i, a[i], b[i])
		}
	}
	var sumSq float64
	for _, v := range a {
		sumSq += v * v
	}
	if sumSq < 0.999 || sumSq > 1.001 {
		t.Fatalf("expected unit-L2 normalized vector, got sum-of-squares %v", sumSq)
	}
}

// Property 16 — hybrid search ranking.
func TestSearchRanksUniqueTermDocumentFirst(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	must(t, idx.IndexFact(ctx, "doc1", "the quarterly report covers revenue and expenses"))
	must(t, idx.IndexFact(ctx, "doc2", "zorblatt is a unique codename for the new project"))
	must(t, idx.IndexFact(ctx, "doc3", "weekly standup notes about team velocity"))

	results, err := idx.Search(ctx, "zorblatt")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 || results[0].FactID != "doc2" {
		t.Fatalf("expected doc2 ranked first for unique term, got %+v", results)
	}
}

func TestRemoveFactRemovesFromBothStores(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	must(t, idx.IndexFact(ctx, "doc1", "hello world"))

	if err := idx.RemoveFact(ctx, "doc1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	results, err := idx.Search(ctx, "hello")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, r := range results {
		if r.FactID == "doc1" {
			t.Fatalf("expected doc1 to be fully removed, found in results: %+v", results)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
