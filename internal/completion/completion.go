// Package completion wraps the hosted text-completion service behind a
// single blocking call. The caller picks a model from a fixed
// enumerated list; there is no retry, no streaming, and no client-side
// timeout beyond what the underlying transport applies.
package completion

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/finboard/finboard/internal/log"
)

// ErrUnsupportedModel is returned when the requested model is not on
// the supported list.
var ErrUnsupportedModel = errors.New("completion: unsupported model")

// SupportedModels is the fixed list of selectable completion models.
// The UI's model selector is built from this list.
var SupportedModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
}

// IsSupported reports whether modelID is on the supported list.
func IsSupported(modelID string) bool {
	return slices.Contains(SupportedModels, modelID)
}

// Client sends prompts to the completion service via Genkit.
type Client struct {
	g      *genkit.Genkit
	logger log.Logger
}

// New creates a completion client bound to an initialized Genkit instance.
func New(g *genkit.Genkit, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{g: g, logger: logger}
}

// Complete sends the assembled prompt to the given model and returns
// the raw generated text. The round trip is a single blocking call; the
// result is fully materialized before return.
func (c *Client) Complete(ctx context.Context, modelID, prompt string) (string, error) {
	if !IsSupported(modelID) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedModel, modelID)
	}

	response, err := genkit.Generate(ctx, c.g,
		ai.WithModelName("googleai/"+modelID),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("completion service: %w", err)
	}

	text := strings.TrimSpace(response.Text())
	c.logger.Debug("completion returned",
		"model", modelID,
		"prompt_length", len(prompt),
		"response_length", len(text))

	return text, nil
}
