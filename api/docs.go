package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/finboard/finboard/internal/docstore"
	"github.com/finboard/finboard/internal/log"
)

// DocsHandler handles document listing and signed-link serving.
type DocsHandler struct {
	store  *docstore.Store
	logger log.Logger
	now    func() time.Time
}

// NewDocsHandler creates a new documents handler.
func NewDocsHandler(store *docstore.Store, logger log.Logger) *DocsHandler {
	return &DocsHandler{store: store, logger: logger, now: time.Now}
}

// RegisterRoutes registers document routes on the given mux.
func (h *DocsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/documents", h.list)
	mux.HandleFunc("GET /docs/{path...}", h.serve)
}

// documentEntry is one indexed document with its signed link.
type documentEntry struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// list returns the indexed documents, each with a fresh signed link.
func (h *DocsHandler) list(w http.ResponseWriter, r *http.Request) {
	paths, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("listing documents", "error", err)
		writeError(w, http.StatusServiceUnavailable, "warehouse_unavailable", "document list unavailable")
		return
	}

	now := h.now()
	entries := make([]documentEntry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, documentEntry{Path: p, URL: h.store.SignedURL(p, now)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": entries})
}

// serve serves a document's text through its signed link. The exp and
// sig query parameters must match the signature minted by SignedURL.
func (h *DocsHandler) serve(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")
	q := r.URL.Query()

	exp, err := strconv.ParseInt(q.Get("exp"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_link", "malformed expiry")
		return
	}

	if err := h.store.Verify(path, exp, q.Get("sig"), h.now()); err != nil {
		switch {
		case errors.Is(err, docstore.ErrLinkExpired):
			writeError(w, http.StatusGone, "link_expired", "link has expired")
		default:
			writeError(w, http.StatusForbidden, "link_invalid", "link signature invalid")
		}
		return
	}

	text, err := h.store.Text(r.Context(), path)
	if err != nil {
		h.logger.Error("reading document", "path", path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "warehouse_unavailable", "document unavailable")
		return
	}
	if text == "" {
		writeError(w, http.StatusNotFound, "not_found", "document not found")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
