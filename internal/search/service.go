package search

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/VioletCranberry/cocosearch/internal/core"
	"github.com/VioletCranberry/cocosearch/internal/embed"
	"github.com/VioletCranberry/cocosearch/internal/keyword"
	"github.com/VioletCranberry/cocosearch/internal/store"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// HybridMode is the tri-state hybrid switch.
type HybridMode string

const (
	HybridOn   HybridMode = "on"
	HybridOff  HybridMode = "off"
	HybridAuto HybridMode = "auto"
)

const (
	defaultLimit    = 10
	defaultMinScore = 0.3
	maxQueryLen     = 10000
	searchTimeout   = 10 * time.Second
)

// SearchStore is the slice of the store the service depends on.
type SearchStore interface {
	GetIndex(ctx context.Context, name string) (models.IndexMetadata, bool, error)
	HasContentColumn(ctx context.Context, index string) (bool, error)
	HasSymbolColumns(ctx context.Context, index string) (bool, error)
	VectorSearch(ctx context.Context, index string, queryVec []float32, k int, f store.SearchFilters) ([]models.SearchResult, error)
	KeywordSearch(ctx context.Context, index, normalizedQuery string, k int, f store.SearchFilters) ([]models.SearchResult, error)
}

// Params are the search inputs. Zero values take documented defaults.
type Params struct {
	Query       string
	Index       string
	Limit       int
	MinScore    *float64
	Languages   []string
	SymbolTypes []string
	SymbolName  string
	Hybrid      HybridMode
}

// Service runs hybrid searches: concurrent vector and keyword arms fused
// by reciprocal rank, filtered, boosted, cached, and context-expanded.
type Service struct {
	Store    SearchStore
	Client   embed.Client
	Cache    *QueryCache
	Expander *Expander

	schemaWarned sync.Map // index -> struct{}
}

// NewService wires a search service.
func NewService(st SearchStore, client embed.Client, cache *QueryCache, expander *Expander) *Service {
	return &Service{Store: st, Client: client, Cache: cache, Expander: expander}
}

// Search validates params, picks the execution mode, runs the arms, and
// returns the ranked, expanded result set.
func (s *Service) Search(ctx context.Context, p Params) ([]models.SearchResult, error) {
	p.Query = strings.TrimSpace(p.Query)
	if p.Query == "" {
		return nil, core.Validationf("query must not be empty")
	}
	if len(p.Query) > maxQueryLen {
		return nil, core.Validationf("query exceeds %d characters", maxQueryLen)
	}
	if err := store.ValidateIndexName(p.Index); err != nil {
		return nil, err
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	minScore := defaultMinScore
	if p.MinScore != nil {
		minScore = *p.MinScore
	}
	if p.Hybrid == "" {
		p.Hybrid = HybridAuto
	}

	meta, found, err := s.Store.GetIndex(ctx, p.Index)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.NotFoundf("index %q not found", p.Index)
	}

	key := CacheKey{
		Index: p.Index, Query: p.Query, Limit: p.Limit, MinScore: minScore,
		Languages: p.Languages, SymbolTypes: p.SymbolTypes,
		SymbolName: p.SymbolName, Hybrid: string(p.Hybrid),
	}
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(key); ok {
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	useHybrid, err := s.decideHybrid(ctx, p)
	if err != nil {
		return nil, err
	}

	filters := store.SearchFilters{
		Languages:   p.Languages,
		SymbolTypes: p.SymbolTypes,
		SymbolName:  p.SymbolName,
	}
	k := 4 * p.Limit

	var results []models.SearchResult
	if useHybrid {
		results, err = s.hybridSearch(ctx, p, k, filters)
	} else {
		results, err = s.vectorOnly(ctx, p, k, filters)
	}
	if err != nil {
		return nil, err
	}

	results = applyThreshold(results, minScore, p.Limit)
	s.expandAll(ctx, meta.CanonicalPath, results)

	if s.Cache != nil {
		s.Cache.Put(key, results)
	}
	return results, nil
}

// decideHybrid resolves the tri-state switch. Auto turns hybrid on only
// for identifier-bearing queries against tables that carry the keyword
// columns, warning once per index when the schema forces a fallback.
func (s *Service) decideHybrid(ctx context.Context, p Params) (bool, error) {
	switch p.Hybrid {
	case HybridOff:
		return false, nil
	case HybridOn:
		return true, nil
	}
	if !keyword.HasIdentifierPattern(p.Query) {
		return false, nil
	}
	hasContent, err := s.Store.HasContentColumn(ctx, p.Index)
	if err != nil {
		return false, err
	}
	if !hasContent {
		if _, warned := s.schemaWarned.LoadOrStore(p.Index, struct{}{}); !warned {
			log.Warn().Str("index", p.Index).
				Msg("chunk table has no content_text column; falling back to vector-only search")
		}
		return false, nil
	}
	return true, nil
}

// hybridSearch runs both arms concurrently and fuses them. One failed or
// timed-out arm degrades to the other's results; only a double failure is
// an error.
func (s *Service) hybridSearch(ctx context.Context, p Params, k int, filters store.SearchFilters) ([]models.SearchResult, error) {
	var (
		vecResults, kwResults []models.SearchResult
		vecErr, kwErr         error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, err := s.Client.Embed(gctx, p.Query)
		if err != nil {
			vecErr = core.Infrastructure("embed query", err)
			return nil
		}
		vecResults, vecErr = s.Store.VectorSearch(gctx, p.Index, vec, k, filters)
		return nil
	})
	g.Go(func() error {
		normalized := keyword.NormalizeQuery(p.Query)
		kwResults, kwErr = s.Store.KeywordSearch(gctx, p.Index, normalized, k, filters)
		return nil
	})
	_ = g.Wait()

	if vecErr != nil && kwErr != nil {
		return nil, core.Infrastructure("both search arms failed", vecErr)
	}
	if vecErr != nil {
		log.Warn().Err(vecErr).Str("index", p.Index).Msg("vector arm failed, using keyword results")
		vecResults = nil
	}
	if kwErr != nil {
		log.Warn().Err(kwErr).Str("index", p.Index).Msg("keyword arm failed, using vector results")
		kwResults = nil
	}

	boost := true
	if ok, err := s.Store.HasSymbolColumns(ctx, p.Index); err == nil && !ok {
		boost = false
	}

	fused := FuseResults(vecResults, kwResults, boost)
	normalizeScores(fused)
	return fused, nil
}

// vectorOnly runs just the ANN arm; scores are cosine similarities and
// need no normalisation.
func (s *Service) vectorOnly(ctx context.Context, p Params, k int, filters store.SearchFilters) ([]models.SearchResult, error) {
	vec, err := s.Client.Embed(ctx, p.Query)
	if err != nil {
		return nil, core.Infrastructure("embed query", err)
	}
	return s.Store.VectorSearch(ctx, p.Index, vec, k, filters)
}

// expandAll widens each hit to its enclosing definition. Expansion is
// best-effort; a failure keeps the stored chunk content.
func (s *Service) expandAll(ctx context.Context, canonicalPath string, results []models.SearchResult) {
	if s.Expander == nil || canonicalPath == "" {
		return
	}
	for i := range results {
		abs := filepath.Join(canonicalPath, filepath.FromSlash(results[i].FilePath))
		s.Expander.Expand(ctx, abs, results[i].LanguageID, &results[i])
	}
}
