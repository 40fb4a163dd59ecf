package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/answer"
	"github.com/finboard/finboard/internal/completion"
	"github.com/finboard/finboard/internal/log"
	"github.com/finboard/finboard/internal/rag"
)

type fakeAnswerer struct {
	resp           answer.Response
	err            error
	lastModel      string
	lastUseContext bool
}

func (f *fakeAnswerer) Answer(_ context.Context, _, modelID string, useContext bool) (answer.Response, error) {
	f.lastModel = modelID
	f.lastUseContext = useContext
	if f.err != nil {
		return answer.Response{}, f.err
	}
	return f.resp, nil
}

func postAsk(t *testing.T, h *AskHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ask(w, req)
	return w
}

func TestAskHandler_WithContext(t *testing.T) {
	fa := &fakeAnswerer{resp: answer.Response{
		Text:       "Oil it monthly.",
		SourcePath: "manuals/bike.txt",
		SourceURL:  "/docs/manuals/bike.txt?exp=1&sig=abc",
	}}
	h := NewAskHandler(fa, "gemini-2.5-flash", log.NewNop())

	w := postAsk(t, h, `{"question": "How often should I oil the chain?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Oil it monthly.", resp.Answer)
	assert.Equal(t, "gemini-2.5-flash", resp.Model)
	require.NotNil(t, resp.SourcePath)
	assert.Equal(t, "manuals/bike.txt", *resp.SourcePath)
	require.NotNil(t, resp.SourceURL)

	// Context retrieval defaults to on; the request's model falls back
	// to the configured default.
	assert.True(t, fa.lastUseContext)
	assert.Equal(t, "gemini-2.5-flash", fa.lastModel)
}

func TestAskHandler_QuestionOnly_LinkIsNull(t *testing.T) {
	fa := &fakeAnswerer{resp: answer.Response{Text: "Once a month."}}
	h := NewAskHandler(fa, "gemini-2.5-flash", log.NewNop())

	w := postAsk(t, h, `{"question": "q", "model": "gemini-2.0-flash", "use_context": false}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.False(t, fa.lastUseContext)
	assert.Equal(t, "gemini-2.0-flash", fa.lastModel)

	// The raw JSON must carry explicit nulls, not omit the fields.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["source_path"]))
	assert.Equal(t, "null", string(raw["source_url"]))
}

func TestAskHandler_EmptyQuestion(t *testing.T) {
	h := NewAskHandler(&fakeAnswerer{}, "gemini-2.5-flash", log.NewNop())

	w := postAsk(t, h, `{"question": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "empty_question")
}

func TestAskHandler_MalformedBody(t *testing.T) {
	h := NewAskHandler(&fakeAnswerer{}, "gemini-2.5-flash", log.NewNop())

	w := postAsk(t, h, `{"question": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unsupported model", completion.ErrUnsupportedModel, http.StatusBadRequest},
		{"empty corpus", rag.ErrNoChunks, http.StatusNotFound},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"upstream failure", errors.New("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAskHandler(&fakeAnswerer{err: tt.err}, "gemini-2.5-flash", log.NewNop())
			w := postAsk(t, h, `{"question": "q"}`)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAskHandler_Models(t *testing.T) {
	h := NewAskHandler(&fakeAnswerer{}, "gemini-2.5-flash", log.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	w := httptest.NewRecorder()
	h.models(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Models  []string `json:"models"`
		Default string   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, completion.SupportedModels, resp.Models)
	assert.Equal(t, "gemini-2.5-flash", resp.Default)
}
