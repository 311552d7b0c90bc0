package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/schemarev/schemarev/internal/library"
	"github.com/schemarev/schemarev/internal/pattern"
	"github.com/schemarev/schemarev/pkg/apierr"
)

type stubStore struct {
	hits  []library.PatternHit
	pairs []pattern.Pair
}

func (s *stubStore) SearchPatterns(_ context.Context, _ string, _ int) ([]library.PatternHit, error) {
	return s.hits, nil
}

func (s *stubStore) ListPairs(_ context.Context) ([]pattern.Pair, error) {
	return s.pairs, nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var resp apierr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestPatternHandler_Search_NoStore(t *testing.T) {
	ph := NewPatternHandler(zap.NewNop().Sugar(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patterns/search?q=unit", nil)
	w := httptest.NewRecorder()

	ph.Search(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeLibraryDisabled {
		t.Errorf("expected code %s, got %s", apierr.CodeLibraryDisabled, resp.Error.Code)
	}
}

func TestPatternHandler_Search_MissingQuery(t *testing.T) {
	ph := NewPatternHandler(zap.NewNop().Sugar(), &stubStore{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patterns/search", nil)
	w := httptest.NewRecorder()

	ph.Search(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeQueryRequired {
		t.Errorf("expected code %s, got %s", apierr.CodeQueryRequired, resp.Error.Code)
	}
}

func TestPatternHandler_Search(t *testing.T) {
	store := &stubStore{hits: []library.PatternHit{
		{EntityName: "administrative_unit", Construct: "cte", StepCount: 2, Delta: 0.15},
	}}
	ph := NewPatternHandler(zap.NewNop().Sugar(), store, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patterns/search?q=unit&limit=5", nil)
	w := httptest.NewRecorder()

	ph.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Results []library.PatternHit `json:"results"`
		Count   int                  `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Fatalf("expected 1 hit, got count=%d len=%d", resp.Count, len(resp.Results))
	}
	if resp.Results[0].EntityName != "administrative_unit" {
		t.Errorf("unexpected hit: %+v", resp.Results[0])
	}
}

func TestPatternHandler_Pairs(t *testing.T) {
	store := &stubStore{pairs: []pattern.Pair{
		{VocabularyTable: "tb_unit_info", InstanceTable: "fk_unit_info", BaseEntityName: "unit"},
	}}
	ph := NewPatternHandler(zap.NewNop().Sugar(), store, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patterns/pairs", nil)
	w := httptest.NewRecorder()

	ph.Pairs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Pairs []pattern.Pair `json:"pairs"`
		Count int            `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("expected 1 pair, got %d", resp.Count)
	}
}

type stubSemantic struct {
	hits []library.PatternHit
}

func (s *stubSemantic) SearchSemantic(_ context.Context, _ string, _ int) ([]library.PatternHit, error) {
	return s.hits, nil
}

func TestPatternHandler_Similar(t *testing.T) {
	semantic := &stubSemantic{hits: []library.PatternHit{
		{EntityName: "administrative_unit", Construct: "cte", Score: 0.93},
	}}
	ph := NewPatternHandler(zap.NewNop().Sugar(), &stubStore{}, semantic)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patterns/similar?q=hierarchy", nil)
	w := httptest.NewRecorder()

	ph.Similar(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Results []library.PatternHit `json:"results"`
		Count   int                  `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || resp.Results[0].Score != 0.93 {
		t.Errorf("unexpected results: %+v", resp)
	}
}

func TestPatternHandler_Similar_NoEmbedding(t *testing.T) {
	ph := NewPatternHandler(zap.NewNop().Sugar(), &stubStore{}, nil)
	w := httptest.NewRecorder()

	ph.Similar(w, httptest.NewRequest(http.MethodGet, "/api/v1/patterns/similar?q=x", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestPatternHandler_Pairs_NoStore(t *testing.T) {
	ph := NewPatternHandler(zap.NewNop().Sugar(), nil, nil)
	w := httptest.NewRecorder()

	ph.Pairs(w, httptest.NewRequest(http.MethodGet, "/api/v1/patterns/pairs", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	hh := NewHealthHandler(nil)

	w := httptest.NewRecorder()
	hh.Healthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from healthz, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	hh.Readyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from readyz without a pool, got %d", w.Code)
	}
}
