package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type fakeFacts struct {
	indexed map[string]string
	removed map[string]bool
}

func newFakeFacts() *fakeFacts {
	return &fakeFacts{indexed: map[string]string{}, removed: map[string]bool{}}
}

func (f *fakeFacts) IndexFact(ctx context.Context, id, content string) error {
	f.indexed[id] = content
	delete(f.removed, id)
	return nil
}

func (f *fakeFacts) RemoveFact(ctx context.Context, id string) error {
	delete(f.indexed, id)
	f.removed[id] = true
	return nil
}

func TestWalkIndexesFilesAndRespectsIgnores(t *testing.T) {
	root := t.TempDir()
	must(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\nfunc main() {}\n"), 0o644))
	must(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	must(t, os.WriteFile(filepath.Join(root, "node_modules", "x.js"), []byte("junk"), 0o644))
	must(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	must(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref: refs/heads/main"), 0o644))

	facts := newFakeFacts()
	ix := New(DefaultConfig(root), facts)
	if err := ix.Walk(context.Background()); err != nil {
		t.Fatalf("walk: %v", err)
	}

	if _, ok := facts.indexed["main.go"]; !ok {
		t.Fatalf("expected main.go indexed, got %+v", facts.indexed)
	}
	if _, ok := facts.indexed["node_modules/x.js"]; ok {
		t.Fatalf("expected node_modules ignored")
	}
	if _, ok := facts.indexed[".git/HEAD"]; ok {
		t.Fatalf("expected .git ignored")
	}
}

func TestWalkRemovesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "a.go")
	must(t, os.WriteFile(p, []byte("package a"), 0o644))

	facts := newFakeFacts()
	ix := New(DefaultConfig(root), facts)
	must(t, ix.Walk(context.Background()))
	if _, ok := facts.indexed["a.go"]; !ok {
		t.Fatalf("expected a.go indexed first pass")
	}

	must(t, os.Remove(p))
	must(t, ix.Walk(context.Background()))
	if _, ok := facts.indexed["a.go"]; ok {
		t.Fatalf("expected a.go removed after deletion")
	}
	if !facts.removed["a.go"] {
		t.Fatalf("expected RemoveFact called for a.go")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
