package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VioletCranberry/cocosearch/internal/core"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// indexNameRegex validates index names before they are spliced into table
// identifiers.
var indexNameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// staleIndexingAge is how old an `indexing` status may get before it is
// considered a crashed run and recovered.
const staleIndexingAge = 15 * time.Minute

// Store provides access to the chunk tables, parse-result tables, and
// index metadata.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store connected to the given database URL.
func New(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: p}, nil
}

func (s *Store) Close() { s.pool.Close() }

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// ValidateIndexName enforces the index naming contract.
func ValidateIndexName(name string) error {
	if name == "" || len(name) > 255 || !indexNameRegex.MatchString(name) {
		return core.Validationf("invalid index name %q: must match ^[a-z0-9_]+$ and be at most 255 chars", name)
	}
	return nil
}

// ChunkTable derives the chunk table name for an index. All other code
// treats the result as opaque.
func ChunkTable(index string) string { return "chunks_" + index }

// ParseResultTable derives the parse-result table name for an index.
func ParseResultTable(index string) string { return "parse_results_" + index }

// EnsureIndex registers (or refreshes) index metadata and moves the index
// into `indexing`. A previous run stuck in `indexing` for longer than 15
// minutes is auto-recovered rather than blocking the new pass.
func (s *Store) EnsureIndex(ctx context.Context, name, canonicalPath string) error {
	if err := ValidateIndexName(name); err != nil {
		return err
	}
	meta, found, err := s.GetIndex(ctx, name)
	if err != nil {
		return err
	}
	if found && meta.Status == models.IndexStatusIndexing && time.Since(meta.UpdatedAt) < staleIndexingAge {
		return core.Validationf("index %q is already being indexed", name)
	}

	const q = `
INSERT INTO index_metadata (index_name, canonical_path, created_at, updated_at, status)
VALUES ($1, $2, now(), now(), $3)
ON CONFLICT (index_name) DO UPDATE SET
  canonical_path = EXCLUDED.canonical_path,
  updated_at     = now(),
  status         = EXCLUDED.status`
	if _, err := s.pool.Exec(ctx, q, name, canonicalPath, models.IndexStatusIndexing); err != nil {
		return core.Infrastructure("update index metadata", err)
	}
	return nil
}

// SetIndexStatus transitions the index to the given status.
func (s *Store) SetIndexStatus(ctx context.Context, name, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE index_metadata SET status = $2, updated_at = now() WHERE index_name = $1`,
		name, status)
	if err != nil {
		return core.Infrastructure("update index status", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NotFoundf("index %q not found", name)
	}
	return nil
}

// GetIndex fetches index metadata.
func (s *Store) GetIndex(ctx context.Context, name string) (models.IndexMetadata, bool, error) {
	const q = `
SELECT index_name, canonical_path, created_at, updated_at, status
FROM index_metadata WHERE index_name = $1`
	var m models.IndexMetadata
	err := s.pool.QueryRow(ctx, q, name).
		Scan(&m.Name, &m.CanonicalPath, &m.CreatedAt, &m.UpdatedAt, &m.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.IndexMetadata{}, false, nil
		}
		if isUndefinedTable(err) {
			return models.IndexMetadata{}, false, nil
		}
		return models.IndexMetadata{}, false, core.Infrastructure("read index metadata", err)
	}
	return m, true, nil
}

// ListIndexes returns all registered indexes.
func (s *Store) ListIndexes(ctx context.Context) ([]models.IndexMetadata, error) {
	rows, err := s.pool.Query(ctx, `
SELECT index_name, canonical_path, created_at, updated_at, status
FROM index_metadata ORDER BY index_name`)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, core.Infrastructure("list indexes", err)
	}
	defer rows.Close()

	var out []models.IndexMetadata
	for rows.Next() {
		var m models.IndexMetadata
		if err := rows.Scan(&m.Name, &m.CanonicalPath, &m.CreatedAt, &m.UpdatedAt, &m.Status); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteIndex drops the index's chunk and parse-result tables and removes
// its metadata row.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	if err := ValidateIndexName(name); err != nil {
		return err
	}
	_, found, err := s.GetIndex(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return core.NotFoundf("index %q not found", name)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.Infrastructure("begin delete", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, ChunkTable(name))); err != nil {
		return core.Infrastructure("drop chunk table", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, ParseResultTable(name))); err != nil {
		return core.Infrastructure("drop parse-result table", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM index_metadata WHERE index_name = $1`, name); err != nil {
		return core.Infrastructure("delete index metadata", err)
	}
	return tx.Commit(ctx)
}

func isUndefinedTable(err error) bool {
	// 42P01 undefined_table; surfaced before the first migration runs
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
