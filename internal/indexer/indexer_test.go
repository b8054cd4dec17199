package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/karrick/godirwalk"

	"github.com/VioletCranberry/cocosearch/internal/chunker"
	"github.com/VioletCranberry/cocosearch/internal/embed"
	"github.com/VioletCranberry/cocosearch/internal/language"
	"github.com/VioletCranberry/cocosearch/internal/symbols"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// MockStore implements ChunkStore in memory.
type MockStore struct {
	mu           sync.Mutex
	chunks       map[string][]models.Chunk // filename -> chunks
	parseResults []models.ParseResult
	status       string
	ensured      bool
	migrated     bool
}

func NewMockStore() *MockStore {
	return &MockStore{chunks: make(map[string][]models.Chunk)}
}

func (m *MockStore) Ping(ctx context.Context) error { return nil }

func (m *MockStore) EnsureIndex(ctx context.Context, name, canonicalPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured = true
	m.status = models.IndexStatusIndexing
	return nil
}

func (m *MockStore) Migrate(ctx context.Context, index string, embedDim int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.migrated = true
	return nil
}

func (m *MockStore) SetIndexStatus(ctx context.Context, name, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	return nil
}

func (m *MockStore) ReplaceFileChunks(ctx context.Context, index, filename string, chunks []models.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[filename] = chunks
	return nil
}

func (m *MockStore) DeleteFileChunks(ctx context.Context, index, filename string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.chunks[filename])
	delete(m.chunks, filename)
	return n, nil
}

func (m *MockStore) CountFileChunks(ctx context.Context, index, filename string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks[filename]), nil
}

func (m *MockStore) ListIndexedFiles(ctx context.Context, index string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for f, cs := range m.chunks {
		if len(cs) > 0 {
			out[f] = cs[0].Metadata.LanguageID
		}
	}
	return out, nil
}

func (m *MockStore) RebuildParseResults(ctx context.Context, index string, results []models.ParseResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parseResults = results
	return nil
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestIndexer(store ChunkStore, root string) *Indexer {
	registry := language.NewRegistry()
	return &Indexer{
		Store:      store,
		Client:     embed.NewStubClient(8),
		Registry:   registry,
		Splitter:   chunker.NewSplitter(registry, 1500, 200),
		Extractor:  symbols.NewExtractor(root),
		Walker:     &DefaultFileSystemWalker{},
		FileReader: &DefaultFileReader{},
		RepoRoot:   root,
		IndexName:  "testindex",
		Workers:    2,
	}
}

func TestRunIndexesFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.go":    "package main\n\nfunc main() {}\n",
		"Dockerfile": "FROM golang:1.21 AS builder\nRUN go build -o app .\n",
		"deploy.sh":  "#!/bin/bash\nfunction deploy_app {\n  echo deploying\n}\n",
	})

	store := NewMockStore()
	ix := newTestIndexer(store, root)

	stats, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Insertions != 3 {
		t.Errorf("insertions = %d, want 3", stats.Insertions)
	}
	if stats.Updates != 0 || stats.Deletions != 0 {
		t.Errorf("unexpected updates/deletions: %+v", stats)
	}
	if store.status != models.IndexStatusIndexed {
		t.Errorf("final status = %q", store.status)
	}
	if !store.ensured || !store.migrated {
		t.Error("index metadata or migration skipped")
	}

	chunks := store.chunks["Dockerfile"]
	if len(chunks) == 0 {
		t.Fatal("Dockerfile produced no chunks")
	}
	if chunks[0].Metadata.BlockType != "FROM" || chunks[0].Metadata.Hierarchy != "stage:builder" {
		t.Errorf("Dockerfile metadata = %+v", chunks[0].Metadata)
	}
	for _, c := range chunks {
		if len(c.Embedding) != 8 {
			t.Errorf("chunk embedding dim = %d, want 8", len(c.Embedding))
		}
		if c.ContentTSVInput == "" {
			t.Error("chunk missing keyword stream")
		}
	}
}

func TestRunIncrementalSkipsUnchanged(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
	})

	store := NewMockStore()
	ix := newTestIndexer(store, root)

	if _, err := ix.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// second run with one changed file
	writeFiles(t, root, map[string]string{"b.go": "package b\n\nfunc B() {}\n"})
	stats, err := ix.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Insertions != 0 {
		t.Errorf("insertions = %d, want 0", stats.Insertions)
	}
	if stats.Updates != 1 {
		t.Errorf("updates = %d, want 1 (only the changed file)", stats.Updates)
	}
}

func TestRunDeletesRemovedFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"keep.go": "package keep\n",
		"gone.go": "package gone\n",
	})

	store := NewMockStore()
	ix := newTestIndexer(store, root)
	if _, err := ix.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(root, "gone.go")); err != nil {
		t.Fatal(err)
	}
	stats, err := ix.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Deletions != 1 {
		t.Errorf("deletions = %d, want 1", stats.Deletions)
	}
	if _, ok := store.chunks["gone.go"]; ok {
		t.Error("removed file's chunks survived")
	}
}

func TestRunRecordsParseHealth(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"ok.go":     "package ok\n\nfunc Fine() {}\n",
		"broken.go": "package broken\n\nfunc Broken( {\n",
		"notes.txt": "just some text\n",
	})

	store := NewMockStore()
	ix := newTestIndexer(store, root)
	if _, err := ix.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	byFile := make(map[string]models.ParseResult)
	for _, r := range store.parseResults {
		byFile[r.FilePath] = r
	}
	if byFile["ok.go"].ParseStatus != models.ParseOK {
		t.Errorf("ok.go status = %q", byFile["ok.go"].ParseStatus)
	}
	if byFile["broken.go"].ParseStatus != models.ParsePartial {
		t.Errorf("broken.go status = %q", byFile["broken.go"].ParseStatus)
	}
	if byFile["notes.txt"].ParseStatus != models.ParseUnsupported {
		t.Errorf("notes.txt status = %q", byFile["notes.txt"].ParseStatus)
	}
}

// Rebuilding with unchanged files must produce the same row set.
func TestParseHealthRebuildStable(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"x.go": "package x\n"})

	store := NewMockStore()
	ix := newTestIndexer(store, root)
	if _, err := ix.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := append([]models.ParseResult(nil), store.parseResults...)

	ix.trackParseHealth(context.Background())
	if len(first) != len(store.parseResults) {
		t.Fatalf("row count changed: %d -> %d", len(first), len(store.parseResults))
	}
	for i := range first {
		if first[i] != store.parseResults[i] {
			t.Errorf("row %d changed: %+v -> %+v", i, first[i], store.parseResults[i])
		}
	}
}

func TestRunInvalidatesCacheBeforeWrites(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.go": "package a\n"})

	store := NewMockStore()
	ix := newTestIndexer(store, root)

	invalidated := false
	ix.InvalidateCache = func(index string) {
		invalidated = true
		if len(store.chunks) != 0 {
			t.Error("cache invalidated after writes began")
		}
	}
	if _, err := ix.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !invalidated {
		t.Error("cache invalidation hook never ran")
	}
}

func TestShouldSkip(t *testing.T) {
	skip := []string{
		"repo/node_modules/pkg/index.js",
		"repo/.git/config",
		"repo/vendor/lib.go",
		"img/logo.png",
		"repo/.cocosearch/cache/hashes.json",
	}
	for _, p := range skip {
		if !shouldSkip(p) {
			t.Errorf("shouldSkip(%q) = false, want true", p)
		}
	}
	keep := []string{"cmd/api/main.go", "deploy/chart/values.yaml", "Dockerfile"}
	for _, p := range keep {
		if shouldSkip(p) {
			t.Errorf("shouldSkip(%q) = true, want false", p)
		}
	}
}

// Walker interface stays mockable for tests that need synthetic trees.
type MockWalker struct {
	paths []string
}

func (m *MockWalker) Walk(root string, options *godirwalk.Options) error {
	for _, p := range m.paths {
		if err := options.Callback(p, nil); err != nil {
			return err
		}
	}
	return nil
}

func TestRunWithMockWalker(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"only.go": "package only\n"})

	store := NewMockStore()
	ix := newTestIndexer(store, root)
	ix.Walker = &MockWalker{paths: []string{filepath.Join(root, "only.go")}}

	stats, err := ix.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Insertions != 1 {
		t.Errorf("insertions = %d, want 1", stats.Insertions)
	}
}
