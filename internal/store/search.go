package store

import (
	"context"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/VioletCranberry/cocosearch/internal/core"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// SearchFilters narrows both search arms with a shared WHERE clause.
type SearchFilters struct {
	// Languages matches language_id values or bare extensions.
	Languages []string
	// SymbolTypes restricts to definition kinds (function, class, ...).
	SymbolTypes []string
	// SymbolName is a glob over symbol_name; * and ? are wildcards.
	SymbolName string
}

// buildFilterClause renders the filters as " AND ..." SQL continuing the
// placeholder numbering at next.
func buildFilterClause(f SearchFilters, next int) (string, []any) {
	var sb strings.Builder
	var args []any

	if len(f.Languages) > 0 {
		patterns := make([]string, 0, len(f.Languages))
		for _, l := range f.Languages {
			patterns = append(patterns, "%."+strings.TrimPrefix(strings.ToLower(l), "."))
		}
		fmt.Fprintf(&sb, " AND (language_id = ANY($%d) OR filename ILIKE ANY($%d))", next, next+1)
		args = append(args, f.Languages, patterns)
		next += 2
	}
	if len(f.SymbolTypes) == 1 {
		fmt.Fprintf(&sb, " AND symbol_type = $%d", next)
		args = append(args, f.SymbolTypes[0])
		next++
	} else if len(f.SymbolTypes) > 1 {
		fmt.Fprintf(&sb, " AND symbol_type = ANY($%d)", next)
		args = append(args, f.SymbolTypes)
		next++
	}
	if f.SymbolName != "" {
		fmt.Fprintf(&sb, " AND symbol_name ILIKE $%d", next)
		args = append(args, GlobToLike(f.SymbolName))
	}
	return sb.String(), args
}

// GlobToLike translates a shell-style glob into a LIKE pattern: * -> %,
// ? -> _, with literal %, _ and \ escaped.
func GlobToLike(glob string) string {
	var sb strings.Builder
	for _, r := range glob {
		switch r {
		case '*':
			sb.WriteByte('%')
		case '?':
			sb.WriteByte('_')
		case '%', '_', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

const resultColumns = `
  filename, location, content_text, block_type, hierarchy, language_id,
  symbol_type, symbol_name, symbol_signature`

// VectorSearch is the ANN arm: top-k rows by cosine distance from the
// query vector, score = 1 - distance.
func (s *Store) VectorSearch(ctx context.Context, index string, queryVec []float32, k int, f SearchFilters) ([]models.SearchResult, error) {
	clause, extra := buildFilterClause(f, 2)
	q := fmt.Sprintf(`
SELECT %s, 1 - (embedding <=> $1) AS score
FROM %s
WHERE embedding IS NOT NULL%s
ORDER BY embedding <=> $1
LIMIT %d`, resultColumns, ChunkTable(index), clause, k)

	args := append([]any{pgvector.NewVector(queryVec)}, extra...)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, core.Infrastructure("vector search", err)
	}
	defer rows.Close()
	return scanResults(rows, models.MatchVector)
}

// KeywordSearch is the full-text arm: websearch_to_tsquery over the
// generated tsvector, ranked by ts_rank.
func (s *Store) KeywordSearch(ctx context.Context, index, normalizedQuery string, k int, f SearchFilters) ([]models.SearchResult, error) {
	clause, extra := buildFilterClause(f, 2)
	q := fmt.Sprintf(`
SELECT %s, ts_rank(content_tsv, websearch_to_tsquery('simple', $1)) AS score
FROM %s
WHERE content_tsv @@ websearch_to_tsquery('simple', $1)%s
ORDER BY score DESC
LIMIT %d`, resultColumns, ChunkTable(index), clause, k)

	args := append([]any{normalizedQuery}, extra...)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, core.Infrastructure("keyword search", err)
	}
	defer rows.Close()
	return scanResults(rows, models.MatchKeyword)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResults(rows pgxRows, arm models.MatchType) ([]models.SearchResult, error) {
	var out []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		var loc string
		var content *string
		var score float64
		if err := rows.Scan(
			&r.FilePath, &loc, &content, &r.BlockType, &r.Hierarchy, &r.LanguageID,
			&r.SymbolType, &r.SymbolName, &r.SymbolSignature, &score,
		); err != nil {
			return nil, err
		}
		if content != nil {
			r.Content = *content
		}
		if l, err := models.ParseLocation(loc); err == nil {
			r.Location = l
		}
		r.MatchType = arm
		r.Score = score
		switch arm {
		case models.MatchVector:
			v := score
			r.VectorScore = &v
		case models.MatchKeyword:
			v := score
			r.KeywordScore = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
