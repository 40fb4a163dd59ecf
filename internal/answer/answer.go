// Package answer orchestrates the question-answering pipeline: optional
// context retrieval, prompt assembly, the completion round trip, and
// source link minting. It owns the control flow; the heavy lifting
// lives in the rag, prompt, completion, and docstore packages.
package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/finboard/finboard/internal/log"
	"github.com/finboard/finboard/internal/prompt"
	"github.com/finboard/finboard/internal/rag"
)

// Retriever retrieves context chunks for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) (rag.Result, error)
}

// Completer sends an assembled prompt to a completion model.
type Completer interface {
	Complete(ctx context.Context, modelID, prompt string) (string, error)
}

// Signer mints time-limited links for source documents.
type Signer interface {
	SignedURL(relativePath string, now time.Time) string
}

// Response is one answered question.
//
// SourcePath and SourceURL identify the document backing the answer.
// Both are empty when the question was answered without context; the
// link is never minted in that mode.
type Response struct {
	Text       string
	SourcePath string
	SourceURL  string
}

// Service runs the question-answering pipeline.
type Service struct {
	retriever Retriever
	completer Completer
	signer    Signer
	topK      int
	logger    log.Logger
	now       func() time.Time
}

// New creates an answer service. topK bounds how many chunks retrieval
// brings back per question.
func New(retriever Retriever, completer Completer, signer Signer, topK int, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{
		retriever: retriever,
		completer: completer,
		signer:    signer,
		topK:      topK,
		logger:    logger,
		now:       time.Now,
	}
}

// Answer answers the question with the given model. When useContext is
// true the question is grounded in retrieved document chunks and the
// response carries a signed link to the top source; otherwise the model
// sees the bare question and no link is produced.
func (s *Service) Answer(ctx context.Context, question, modelID string, useContext bool) (Response, error) {
	if !useContext {
		p := prompt.Assemble(question, "", prompt.QuestionOnly)
		text, err := s.completer.Complete(ctx, modelID, p)
		if err != nil {
			return Response{}, fmt.Errorf("answering question: %w", err)
		}
		return Response{Text: text}, nil
	}

	result, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return Response{}, fmt.Errorf("retrieving context: %w", err)
	}

	contextText, topPath := rag.BuildContext(result)
	p := prompt.Assemble(question, contextText, prompt.WithContext)

	text, err := s.completer.Complete(ctx, modelID, p)
	if err != nil {
		return Response{}, fmt.Errorf("answering question: %w", err)
	}

	s.logger.Debug("question answered",
		"model", modelID,
		"chunks", len(result.Chunks),
		"source", topPath)

	return Response{
		Text:       text,
		SourcePath: topPath,
		SourceURL:  s.signer.SignedURL(topPath, s.now()),
	}, nil
}
