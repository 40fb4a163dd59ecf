package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/finboard/finboard/internal/answer"
	"github.com/finboard/finboard/internal/completion"
	"github.com/finboard/finboard/internal/log"
	"github.com/finboard/finboard/internal/rag"
)

// maxQuestionBytes bounds the request body size.
const maxQuestionBytes = 64 << 10

// Answerer runs the question-answering pipeline.
// The interface is defined here so tests can supply fakes.
type Answerer interface {
	Answer(ctx context.Context, question, modelID string, useContext bool) (answer.Response, error)
}

// AskHandler handles the question-answering endpoints.
type AskHandler struct {
	answerer     Answerer
	defaultModel string
	logger       log.Logger
}

// NewAskHandler creates a new ask handler. defaultModel is used when a
// request omits the model field.
func NewAskHandler(answerer Answerer, defaultModel string, logger log.Logger) *AskHandler {
	return &AskHandler{answerer: answerer, defaultModel: defaultModel, logger: logger}
}

// RegisterRoutes registers ask routes on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/models", h.models)
	mux.HandleFunc("POST /api/ask", h.ask)
}

// models returns the fixed list of selectable completion models.
func (h *AskHandler) models(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models":  completion.SupportedModels,
		"default": h.defaultModel,
	})
}

type askRequest struct {
	Question   string `json:"question"`
	Model      string `json:"model"`
	UseContext *bool  `json:"use_context"`
}

// askResponse is one answered question. SourcePath and SourceURL are
// null when the question was answered without document context.
type askResponse struct {
	Answer     string  `json:"answer"`
	Model      string  `json:"model"`
	SourcePath *string `json:"source_path"`
	SourceURL  *string `json:"source_url"`
}

// ask answers a question. Context retrieval defaults to on; clients opt
// out with "use_context": false.
func (h *AskHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "empty_question", "question must not be empty")
		return
	}

	modelID := req.Model
	if modelID == "" {
		modelID = h.defaultModel
	}

	useContext := true
	if req.UseContext != nil {
		useContext = *req.UseContext
	}

	resp, err := h.answerer.Answer(r.Context(), question, modelID, useContext)
	if err != nil {
		h.writeAskError(w, err)
		return
	}

	out := askResponse{Answer: resp.Text, Model: modelID}
	if resp.SourcePath != "" {
		out.SourcePath = &resp.SourcePath
		out.SourceURL = &resp.SourceURL
	}
	writeJSON(w, http.StatusOK, out)
}

// writeAskError maps pipeline errors to HTTP status codes.
func (h *AskHandler) writeAskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, completion.ErrUnsupportedModel):
		writeError(w, http.StatusBadRequest, "unsupported_model", err.Error())
	case errors.Is(err, rag.ErrNoChunks):
		writeError(w, http.StatusNotFound, "no_documents", "no document chunks indexed")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", "answering timed out")
	default:
		h.logger.Error("answering question", "error", err)
		writeError(w, http.StatusBadGateway, "answer_failed", "answering failed")
	}
}
