package store

import (
	"context"
	"fmt"

	"github.com/VioletCranberry/cocosearch/internal/core"
)

// Migrate applies the per-index DDL: the chunk table with its generated
// tsvector column and indexes, the parse-result table, and the shared
// index_metadata table. Every statement is guarded, so repeated calls are
// no-ops.
func (s *Store) Migrate(ctx context.Context, index string, embedDim int) error {
	if err := ValidateIndexName(index); err != nil {
		return err
	}
	if embedDim <= 0 {
		return core.Validationf("embedding dimension must be positive, got %d", embedDim)
	}

	chunks := ChunkTable(index)
	parses := ParseResultTable(index)

	q := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS index_metadata (
  index_name     TEXT PRIMARY KEY,
  canonical_path TEXT NOT NULL DEFAULT '',
  created_at     TIMESTAMP WITH TIME ZONE DEFAULT now(),
  updated_at     TIMESTAMP WITH TIME ZONE DEFAULT now(),
  status         TEXT NOT NULL DEFAULT 'indexing'
);

CREATE TABLE IF NOT EXISTS %[1]s (
  filename          TEXT NOT NULL,
  location          TEXT NOT NULL,
  content_text      TEXT,
  content_tsv_input TEXT,
  embedding         vector(%[3]d),
  block_type        TEXT NOT NULL DEFAULT '',
  hierarchy         TEXT NOT NULL DEFAULT '',
  language_id       TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (filename, location)
);

ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS symbol_type TEXT;
ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS symbol_name TEXT;
ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS symbol_signature TEXT;

ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS content_tsv tsvector
  GENERATED ALWAYS AS (to_tsvector('simple', coalesce(content_tsv_input, ''))) STORED;

CREATE INDEX IF NOT EXISTS %[1]s_tsv_gin ON %[1]s USING GIN (content_tsv);

CREATE INDEX IF NOT EXISTS %[1]s_embedding_idx
  ON %[1]s USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);

CREATE INDEX IF NOT EXISTS %[1]s_language_idx ON %[1]s (language_id);

CREATE TABLE IF NOT EXISTS %[2]s (
  file_path     TEXT PRIMARY KEY,
  language      TEXT NOT NULL DEFAULT '',
  parse_status  TEXT NOT NULL,
  error_message TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS %[2]s_lang_status_idx ON %[2]s (language, parse_status);
`, chunks, parses, embedDim)

	if _, err := s.pool.Exec(ctx, q); err != nil {
		return core.Infrastructure("migrate index "+index, err)
	}
	return nil
}

// HasContentColumn reports whether the index's chunk table carries the
// keyword-search columns; pre-migration tables fall back to vector-only
// search.
func (s *Store) HasContentColumn(ctx context.Context, index string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM information_schema.columns
  WHERE table_name = $1 AND column_name = 'content_text'
)`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, ChunkTable(index)).Scan(&ok); err != nil {
		return false, core.Infrastructure("inspect chunk table schema", err)
	}
	return ok, nil
}

// HasSymbolColumns reports whether symbol columns exist; the definition
// boost is skipped on tables without them.
func (s *Store) HasSymbolColumns(ctx context.Context, index string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM information_schema.columns
  WHERE table_name = $1 AND column_name = 'symbol_type'
)`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, ChunkTable(index)).Scan(&ok); err != nil {
		return false, core.Infrastructure("inspect chunk table schema", err)
	}
	return ok, nil
}
