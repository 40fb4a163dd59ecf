package completion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finboard/finboard/internal/log"
)

func TestIsSupported(t *testing.T) {
	for _, m := range SupportedModels {
		assert.True(t, IsSupported(m), m)
	}
	assert.False(t, IsSupported("gpt-4o"))
	assert.False(t, IsSupported(""))
}

func TestComplete_UnsupportedModelRejectedBeforeDispatch(t *testing.T) {
	// A nil Genkit instance proves the model check happens before any
	// remote call is attempted.
	c := New(nil, log.NewNop())

	_, err := c.Complete(context.Background(), "llama2-70b-chat", "prompt")
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}
