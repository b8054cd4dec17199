package store

import (
	"context"
	"fmt"
	"sort"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/VioletCranberry/cocosearch/internal/core"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// ReplaceFileChunks makes the given chunks the file's complete row set:
// existing rows are deleted and the new ones inserted, ordered by
// location, inside one transaction so readers never see a half-written
// file.
func (s *Store) ReplaceFileChunks(ctx context.Context, index, filename string, chunks []models.Chunk) error {
	table := ChunkTable(index)

	sorted := make([]models.Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Location.StartByte < sorted[j].Location.StartByte
	})

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.Infrastructure("begin chunk write", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE filename = $1`, table), filename); err != nil {
		return core.Infrastructure("delete stale chunks", err)
	}

	insert := fmt.Sprintf(`
INSERT INTO %s (
  filename, location, content_text, content_tsv_input, embedding,
  block_type, hierarchy, language_id, symbol_type, symbol_name, symbol_signature
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`, table)

	for _, c := range sorted {
		var vec any
		if c.Embedding != nil {
			vec = pgvector.NewVector(c.Embedding)
		} else {
			vec = (*pgvector.Vector)(nil)
		}
		if _, err := tx.Exec(ctx, insert,
			c.Filename, c.Location.String(), c.ContentText, c.ContentTSVInput, vec,
			c.Metadata.BlockType, c.Metadata.Hierarchy, c.Metadata.LanguageID,
			c.Symbol.Type, c.Symbol.Name, c.Symbol.Signature,
		); err != nil {
			return core.Infrastructure("insert chunk", err)
		}
	}
	return tx.Commit(ctx)
}

// DeleteFileChunks removes all chunks of a file, returning how many rows
// went away.
func (s *Store) DeleteFileChunks(ctx context.Context, index, filename string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE filename = $1`, ChunkTable(index)), filename)
	if err != nil {
		return 0, core.Infrastructure("delete file chunks", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListIndexedFiles enumerates distinct (filename, language_id) pairs in
// the chunk table; the parse-health tracker re-parses exactly this set.
func (s *Store) ListIndexedFiles(ctx context.Context, index string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT DISTINCT filename, language_id FROM %s`, ChunkTable(index)))
	if err != nil {
		return nil, core.Infrastructure("list indexed files", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var filename, lang string
		if err := rows.Scan(&filename, &lang); err != nil {
			return nil, err
		}
		out[filename] = lang
	}
	return out, rows.Err()
}

// CountFileChunks reports how many chunks a file currently has; the
// indexer uses it to classify a write as insert or update.
func (s *Store) CountFileChunks(ctx context.Context, index, filename string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE filename = $1`, ChunkTable(index)), filename).Scan(&n)
	if err != nil {
		return 0, core.Infrastructure("count file chunks", err)
	}
	return n, nil
}
