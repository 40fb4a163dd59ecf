// Package rag implements the context-retrieval half of the
// question-answering pipeline: embed the question, rank the stored
// document chunks by cosine similarity inside the warehouse, and build
// the context string handed to the prompt assembler.
package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/pgvector/pgvector-go"

	"github.com/finboard/finboard/internal/log"
)

// ErrNoChunks is returned when the document corpus is empty, i.e. the
// similarity query matched nothing at all.
var ErrNoChunks = errors.New("rag: no document chunks indexed")

// searchTimeout bounds the embed + similarity round trip so a slow
// warehouse cannot block an interaction indefinitely.
const searchTimeout = 10 * time.Second

// Chunk is one retrieved document fragment.
type Chunk struct {
	RelativePath string
	Text         string
	Similarity   float32
}

// Result is an ordered retrieval result: chunks sorted by descending
// similarity, at most top-K of them.
type Result struct {
	Chunks []Chunk
}

// Querier defines the similarity search the retriever depends on.
// The ranking and top-K selection happen inside the warehouse; the
// interface is defined by the consumer so tests can supply fakes.
type Querier interface {
	SearchChunks(ctx context.Context, embedding pgvector.Vector, limit int32) ([]Chunk, error)
}

// Retriever embeds questions and retrieves the most similar chunks.
// Safe for concurrent use.
type Retriever struct {
	q        Querier
	embedder ai.Embedder
	logger   log.Logger
}

// New creates a Retriever over the given querier and embedder.
func New(q Querier, embedder ai.Embedder, logger log.Logger) *Retriever {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Retriever{q: q, embedder: embedder, logger: logger}
}

// Retrieve returns the topK chunks most similar to the question,
// ordered by descending similarity. Returns ErrNoChunks when the corpus
// is empty.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) (Result, error) {
	if topK < 1 {
		return Result{}, fmt.Errorf("topK must be >= 1, got %d", topK)
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	embeddingResp, err := r.embedder.Embed(queryCtx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{Content: []*ai.Part{ai.NewTextPart(question)}},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("embedding generation timeout: %w", err)
		}
		return Result{}, fmt.Errorf("generating question embedding: %w", err)
	}
	if len(embeddingResp.Embeddings) == 0 || len(embeddingResp.Embeddings[0].Embedding) == 0 {
		return Result{}, fmt.Errorf("empty embedding returned for question")
	}

	embedding := pgvector.NewVector(embeddingResp.Embeddings[0].Embedding)

	chunks, err := r.q.SearchChunks(queryCtx, embedding, int32(topK)) // #nosec G115 -- topK validated above, bounded by config.MaxTopK
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("similarity search timeout: %w", err)
		}
		return Result{}, fmt.Errorf("similarity search: %w", err)
	}
	if len(chunks) == 0 {
		return Result{}, ErrNoChunks
	}

	r.logger.Debug("retrieved context chunks",
		"requested", topK,
		"returned", len(chunks),
		"top_path", chunks[0].RelativePath)

	return Result{Chunks: chunks}, nil
}
