package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"

	"github.com/VioletCranberry/cocosearch/internal/chunker"
	"github.com/VioletCranberry/cocosearch/internal/core"
	"github.com/VioletCranberry/cocosearch/internal/embed"
	"github.com/VioletCranberry/cocosearch/internal/keyword"
	"github.com/VioletCranberry/cocosearch/internal/language"
	"github.com/VioletCranberry/cocosearch/internal/symbols"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// FileSystemWalker defines the interface for walking directories
type FileSystemWalker interface {
	Walk(root string, options *godirwalk.Options) error
}

// FileReader defines the interface for reading files
type FileReader interface {
	ReadFile(filename string) ([]byte, error)
}

// DefaultFileSystemWalker implements FileSystemWalker using godirwalk
type DefaultFileSystemWalker struct{}

func (d *DefaultFileSystemWalker) Walk(root string, options *godirwalk.Options) error {
	return godirwalk.Walk(root, options)
}

// DefaultFileReader implements FileReader using os
type DefaultFileReader struct{}

func (d *DefaultFileReader) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

// ChunkStore is the slice of the store the indexer depends on.
type ChunkStore interface {
	Ping(ctx context.Context) error
	EnsureIndex(ctx context.Context, name, canonicalPath string) error
	Migrate(ctx context.Context, index string, embedDim int) error
	SetIndexStatus(ctx context.Context, name, status string) error
	ReplaceFileChunks(ctx context.Context, index, filename string, chunks []models.Chunk) error
	DeleteFileChunks(ctx context.Context, index, filename string) (int, error)
	CountFileChunks(ctx context.Context, index, filename string) (int, error)
	ListIndexedFiles(ctx context.Context, index string) (map[string]string, error)
	RebuildParseResults(ctx context.Context, index string, results []models.ParseResult) error
}

// Indexer runs one indexing pass over a repository: walk, route, chunk,
// extract, embed, and write.
type Indexer struct {
	Store      ChunkStore
	Client     embed.Client
	Registry   *language.Registry
	Splitter   *chunker.Splitter
	Extractor  *symbols.Extractor
	Walker     FileSystemWalker
	FileReader FileReader

	RepoRoot  string
	IndexName string
	Workers   int

	// InvalidateCache is called before the first write so stale search
	// results are never served mid-index.
	InvalidateCache func(index string)
}

// New creates an Indexer with default dependencies.
func New(s ChunkStore, client embed.Client, repoRoot, indexName string, chunkSize, chunkOverlap int) *Indexer {
	registry := language.Default()
	return &Indexer{
		Store:      s,
		Client:     client,
		Registry:   registry,
		Splitter:   chunker.NewSplitter(registry, chunkSize, chunkOverlap),
		Extractor:  symbols.NewExtractor(repoRoot),
		Walker:     &DefaultFileSystemWalker{},
		FileReader: &DefaultFileReader{},
		RepoRoot:   repoRoot,
		IndexName:  indexName,
	}
}

// errAborted stops the walk once a worker has reported a fatal error.
var errAborted = errors.New("indexing aborted")

// workItem represents a file to be processed
type workItem struct {
	relPath string
	content []byte
}

// fileResult is a fully processed file ready for the writer.
type fileResult struct {
	relPath string
	hash    string
	chunks  []models.Chunk
}

// Run executes the pass and reports write counts. Validation and
// infrastructure errors surface; per-file content failures degrade to
// empty metadata and keep the pass going.
func (ix *Indexer) Run(ctx context.Context) (models.IndexStats, error) {
	var stats models.IndexStats

	// preflight: both collaborators must be reachable before any write
	if err := ix.Store.Ping(ctx); err != nil {
		return stats, core.Infrastructure("database unreachable", err)
	}
	if _, err := ix.Client.EmbedBatch(ctx, []string{"preflight"}); err != nil {
		return stats, core.Infrastructure("embedding service unreachable", err)
	}

	canonical, err := filepath.Abs(ix.RepoRoot)
	if err != nil {
		canonical = ix.RepoRoot
	}
	if err := ix.Store.EnsureIndex(ctx, ix.IndexName, canonical); err != nil {
		return stats, err
	}
	if err := ix.Store.Migrate(ctx, ix.IndexName, ix.Client.Dim()); err != nil {
		ix.failIndex(ctx)
		return stats, err
	}

	if ix.InvalidateCache != nil {
		ix.InvalidateCache(ix.IndexName)
	}

	cache := LoadHashCache(ix.RepoRoot)

	if err := ix.pipeline(ctx, cache, &stats); err != nil {
		ix.failIndex(ctx)
		return stats, err
	}

	if err := cache.Save(ix.RepoRoot); err != nil {
		log.Warn().Err(err).Msg("failed to persist hash cache")
	}

	// parse-health rebuild runs strictly after all chunk writes commit
	// and never fails the pass
	ix.trackParseHealth(ctx)

	if err := ix.Store.SetIndexStatus(ctx, ix.IndexName, models.IndexStatusIndexed); err != nil {
		return stats, err
	}
	return stats, nil
}

func (ix *Indexer) failIndex(ctx context.Context) {
	if err := ix.Store.SetIndexStatus(ctx, ix.IndexName, models.IndexStatusError); err != nil {
		log.Warn().Err(err).Str("index", ix.IndexName).Msg("failed to record error status")
	}
}

// pipeline fans files out to workers and funnels results through a single
// writer goroutine, so chunk-table writes are serialised per pass.
func (ix *Indexer) pipeline(ctx context.Context, cache *HashCache, stats *models.IndexStats) error {
	numWorkers := ix.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > 8 {
		numWorkers = 8
	}
	log.Info().Int("workers", numWorkers).Str("index", ix.IndexName).Msg("starting indexing pass")

	workChan := make(chan workItem, numWorkers*2)
	writeChan := make(chan fileResult, numWorkers)
	errChan := make(chan error, 1)
	seen := make(map[string]bool)
	var seenMu sync.Mutex
	var aborted atomic.Bool

	fail := func(err error) {
		aborted.Store(true)
		select {
		case errChan <- err:
		default:
		}
	}

	var workers sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for item := range workChan {
				if aborted.Load() {
					continue // keep draining so the walker never blocks
				}
				res, err := ix.processFile(ctx, item)
				if err != nil {
					fail(err)
					continue
				}
				if res == nil {
					continue
				}
				select {
				case writeChan <- *res:
				case <-ctx.Done():
					fail(ctx.Err())
				}
			}
		}()
	}

	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		failed := false
		for res := range writeChan {
			if failed {
				continue // keep draining so workers never block
			}
			existing, err := ix.Store.CountFileChunks(ctx, ix.IndexName, res.relPath)
			if err != nil {
				fail(err)
				failed = true
				continue
			}
			if err := ix.Store.ReplaceFileChunks(ctx, ix.IndexName, res.relPath, res.chunks); err != nil {
				fail(err)
				failed = true
				continue
			}
			cache.Set(res.relPath, res.hash)
			if existing > 0 {
				stats.Updates++
			} else {
				stats.Insertions++
			}
		}
	}()

	walkErr := ix.Walker.Walk(ix.RepoRoot, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if aborted.Load() {
				return errAborted
			}
			if de != nil && de.IsDir() {
				return nil
			}
			if shouldSkip(path) {
				return nil
			}
			rel := relPath(ix.RepoRoot, path)

			seenMu.Lock()
			seen[rel] = true
			seenMu.Unlock()

			b, err := ix.FileReader.ReadFile(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to read file")
				return nil
			}
			if prev, ok := cache.Get(rel); ok && prev == hashContent(b) {
				return nil
			}

			select {
			case workChan <- workItem{relPath: rel, content: b}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})

	close(workChan)
	workers.Wait()
	close(writeChan)
	writer.Wait()

	select {
	case err := <-errChan:
		return err
	default:
	}
	if walkErr != nil && !errors.Is(walkErr, errAborted) {
		return walkErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// files remembered from earlier runs but gone now lose their chunks
	for _, rel := range cache.Files() {
		if seen[rel] {
			continue
		}
		n, err := ix.Store.DeleteFileChunks(ctx, ix.IndexName, rel)
		if err != nil {
			return err
		}
		cache.Delete(rel)
		if n > 0 {
			stats.Deletions++
		}
	}
	return nil
}

// processFile routes, chunks, and enriches one file. The language decided
// here is the one used for chunking, metadata, and parse tracking alike.
func (ix *Indexer) processFile(ctx context.Context, item workItem) (*fileResult, error) {
	langID := ix.Registry.Detect(item.relPath, item.content)

	chunks := ix.Splitter.Split(string(item.content), langID)
	if len(chunks) == 0 {
		return nil, nil
	}

	handler, hasHandler := ix.Registry.HandlerFor(langID)

	recs := make([]models.Chunk, 0, len(chunks))
	inputs := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := models.Chunk{
			Filename:        item.relPath,
			Location:        ch.Location,
			ContentText:     ch.Text,
			ContentTSVInput: keyword.Preprocess(ch.Text, item.relPath),
		}
		if hasHandler {
			rec.Metadata = handler.ExtractMetadata(ch.Text)
		} else {
			rec.Metadata = models.ChunkMetadata{LanguageID: langID}
		}
		rec.Symbol = ix.Extractor.Extract(ctx, []byte(ch.Text), langID)
		recs = append(recs, rec)
		inputs = append(inputs, embed.IndexInput(item.relPath, ch.Text))
	}

	vectors, err := ix.Client.EmbedBatch(ctx, inputs)
	if err != nil {
		return nil, core.Infrastructure("embed chunks for "+item.relPath, err)
	}
	for i := range recs {
		recs[i].Embedding = vectors[i]
	}

	return &fileResult{
		relPath: item.relPath,
		hash:    hashContent(item.content),
		chunks:  recs,
	}, nil
}

// shouldSkip returns true if the file at path should be skipped.
func shouldSkip(path string) bool {
	p := strings.ToLower(filepath.ToSlash(path))
	for _, dir := range []string{
		"/vendor/", "/.git/", "/.terraform/", "/node_modules/", "/target/",
		"/build/", "/dist/", "/out/", "/bin/", "/obj/", "/.venv/", "/venv/",
		"/__pycache__/", "/.pytest_cache/", "/.gradle/", "/.m2/", "/.idea/",
		"/coverage/", "/.cache/", "/.cocosearch/",
	} {
		if strings.Contains(p, dir) {
			return true
		}
	}
	switch filepath.Ext(p) {
	case ".png", ".jpg", ".jpeg", ".gif", ".pdf", ".webp", ".lock", ".zip",
		".svg", ".exe", ".dll", ".sum", ".bin", ".ico", ".woff", ".woff2", ".ttf":
		return true
	}
	return false
}

func relPath(root, p string) string {
	r, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}
