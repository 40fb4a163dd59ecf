package rag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// searchChunksSQL ranks every stored chunk by cosine similarity to the
// question embedding and returns the top rows. The <=> operator is
// cosine distance, so similarity is its complement.
const searchChunksSQL = `
SELECT chunk, relative_path, 1 - (embedding <=> $1) AS similarity
FROM doc_chunks
ORDER BY embedding <=> $1
LIMIT $2
`

// PGQuerier implements Querier against the warehouse's doc_chunks table.
type PGQuerier struct {
	pool *pgxpool.Pool
}

// NewPGQuerier creates a warehouse-backed chunk querier.
func NewPGQuerier(pool *pgxpool.Pool) *PGQuerier {
	return &PGQuerier{pool: pool}
}

// SearchChunks implements Querier.
func (q *PGQuerier) SearchChunks(ctx context.Context, embedding pgvector.Vector, limit int32) ([]Chunk, error) {
	rows, err := q.pool.Query(ctx, searchChunksSQL, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("querying doc chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var similarity float64
		if err := rows.Scan(&c.Text, &c.RelativePath, &similarity); err != nil {
			return nil, fmt.Errorf("scanning doc chunk: %w", err)
		}
		c.Similarity = float32(similarity)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading doc chunks: %w", err)
	}
	return chunks, nil
}
