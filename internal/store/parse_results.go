package store

import (
	"context"
	"fmt"

	"github.com/VioletCranberry/cocosearch/internal/core"
	"github.com/VioletCranberry/cocosearch/pkg/models"
)

// RebuildParseResults replaces the index's parse-result rows with the
// given set: truncate plus bulk insert in a single transaction, so the
// table always reflects exactly the latest pass.
func (s *Store) RebuildParseResults(ctx context.Context, index string, results []models.ParseResult) error {
	table := ParseResultTable(index)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.Infrastructure("begin parse-result rebuild", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`TRUNCATE %s`, table)); err != nil {
		return core.Infrastructure("truncate parse results", err)
	}

	insert := fmt.Sprintf(`
INSERT INTO %s (file_path, language, parse_status, error_message)
VALUES ($1,$2,$3,$4)`, table)
	for _, r := range results {
		if _, err := tx.Exec(ctx, insert, r.FilePath, r.Language, r.ParseStatus, r.ErrorMessage); err != nil {
			return core.Infrastructure("insert parse result", err)
		}
	}
	return tx.Commit(ctx)
}

// GetParseResults returns the latest pass's rows, optionally filtered by
// status.
func (s *Store) GetParseResults(ctx context.Context, index, status string) ([]models.ParseResult, error) {
	q := fmt.Sprintf(`SELECT file_path, language, parse_status, error_message FROM %s`, ParseResultTable(index))
	var args []any
	if status != "" {
		q += ` WHERE parse_status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY file_path`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, core.Infrastructure("read parse results", err)
	}
	defer rows.Close()

	var out []models.ParseResult
	for rows.Next() {
		var r models.ParseResult
		if err := rows.Scan(&r.FilePath, &r.Language, &r.ParseStatus, &r.ErrorMessage); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
