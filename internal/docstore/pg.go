package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const listDocumentsSQL = `
SELECT DISTINCT relative_path
FROM doc_chunks
ORDER BY relative_path
`

const documentTextSQL = `
SELECT chunk
FROM doc_chunks
WHERE relative_path = $1
ORDER BY id
`

// PGQuerier implements Querier against the warehouse's doc_chunks table.
type PGQuerier struct {
	pool *pgxpool.Pool
}

// NewPGQuerier creates a warehouse-backed document querier.
func NewPGQuerier(pool *pgxpool.Pool) *PGQuerier {
	return &PGQuerier{pool: pool}
}

// ListDocuments implements Querier.
func (q *PGQuerier) ListDocuments(ctx context.Context) ([]string, error) {
	rows, err := q.pool.Query(ctx, listDocumentsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying document list: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning document path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading document list: %w", err)
	}
	return paths, nil
}

// DocumentText implements Querier.
func (q *PGQuerier) DocumentText(ctx context.Context, relativePath string) (string, error) {
	rows, err := q.pool.Query(ctx, documentTextSQL, relativePath)
	if err != nil {
		return "", fmt.Errorf("querying document chunks: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var chunk string
		if err := rows.Scan(&chunk); err != nil {
			return "", fmt.Errorf("scanning document chunk: %w", err)
		}
		b.WriteString(chunk)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading document chunks: %w", err)
	}
	return b.String(), nil
}
