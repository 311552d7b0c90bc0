package handler

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/schemarev/schemarev/internal/library"
	"github.com/schemarev/schemarev/internal/pattern"
	"github.com/schemarev/schemarev/pkg/apierr"
)

// PatternStore is the slice of the library the handlers need.
type PatternStore interface {
	SearchPatterns(ctx context.Context, query string, limit int) ([]library.PatternHit, error)
	ListPairs(ctx context.Context) ([]pattern.Pair, error)
}

// SemanticStore ranks stored profiles by embedding similarity. Nil when no
// embedding endpoint is configured.
type SemanticStore interface {
	SearchSemantic(ctx context.Context, query string, limit int) ([]library.PatternHit, error)
}

// PatternHandler serves stored classification results. All endpoints return
// 503 when the pattern library is not configured.
type PatternHandler struct {
	logger   *zap.SugaredLogger
	store    PatternStore
	semantic SemanticStore
}

func NewPatternHandler(logger *zap.SugaredLogger, store PatternStore, semantic SemanticStore) *PatternHandler {
	return &PatternHandler{logger: logger, store: store, semantic: semantic}
}

// Search handles GET /api/v1/patterns/search?q=...&limit=N.
func (h *PatternHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeAPIError(w, h.logger, apierr.LibraryDisabled())
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeAPIError(w, h.logger, apierr.QueryRequired())
		return
	}
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	hits, err := h.store.SearchPatterns(r.Context(), q, limit)
	if err != nil {
		writeAPIError(w, h.logger, apierr.SearchFailed(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits, "count": len(hits)})
}

// Similar handles GET /api/v1/patterns/similar?q=...&limit=N.
func (h *PatternHandler) Similar(w http.ResponseWriter, r *http.Request) {
	if h.semantic == nil {
		writeAPIError(w, h.logger, apierr.LibraryDisabled())
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeAPIError(w, h.logger, apierr.QueryRequired())
		return
	}
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	hits, err := h.semantic.SearchSemantic(r.Context(), q, limit)
	if err != nil {
		writeAPIError(w, h.logger, apierr.SearchFailed(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits, "count": len(hits)})
}

// Pairs handles GET /api/v1/patterns/pairs.
func (h *PatternHandler) Pairs(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeAPIError(w, h.logger, apierr.LibraryDisabled())
		return
	}
	pairs, err := h.store.ListPairs(r.Context())
	if err != nil {
		writeAPIError(w, h.logger, apierr.PairListFailed(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pairs": pairs, "count": len(pairs)})
}
