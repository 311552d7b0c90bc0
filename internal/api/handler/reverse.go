package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/schemarev/schemarev/internal/entity"
	"github.com/schemarev/schemarev/pkg/apierr"
)

// ReverseHandler exposes the reverse-engineering engine over HTTP.
type ReverseHandler struct {
	logger *zap.SugaredLogger
	engine *entity.Engine
}

func NewReverseHandler(logger *zap.SugaredLogger, engine *entity.Engine) *ReverseHandler {
	return &ReverseHandler{logger: logger, engine: engine}
}

type reverseRequest struct {
	SQL string `json:"sql"`
}

type reverseResponse struct {
	Entities []entity.Entity `json:"entities"`
	Dropped  []droppedEntity `json:"dropped,omitempty"`
	Skipped  int             `json:"skipped_statements"`
	Pairs    []pairSummary   `json:"pairs,omitempty"`
}

type droppedEntity struct {
	Table      string  `json:"table"`
	Confidence float64 `json:"confidence"`
}

type pairSummary struct {
	BaseEntity       string `json:"base_entity"`
	VocabularyTable  string `json:"vocabulary_table"`
	InstanceTable    string `json:"instance_table"`
	TranslationTable string `json:"translation_table,omitempty"`
}

// Reverse handles POST /api/v1/reverse. The body carries raw SQL either as
// {"sql": "..."} or as text/plain.
func (h *ReverseHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	sql, ok := readSQL(r)
	if !ok {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	if strings.TrimSpace(sql) == "" {
		writeAPIError(w, h.logger, apierr.EmptyInput())
		return
	}

	report, err := h.engine.Reverse(sql)
	if err != nil {
		writeAPIError(w, h.logger, apierr.ReverseFailed(err))
		return
	}

	resp := reverseResponse{
		Entities: report.Entities,
		Skipped:  len(report.Skipped),
	}
	for _, d := range report.Dropped {
		resp.Dropped = append(resp.Dropped, droppedEntity{Table: d.Table, Confidence: d.Confidence})
	}
	for _, p := range report.Pairs {
		resp.Pairs = append(resp.Pairs, pairSummary{
			BaseEntity:       p.BaseEntityName,
			VocabularyTable:  p.VocabularyTable,
			InstanceTable:    p.InstanceTable,
			TranslationTable: p.TranslationTable,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func readSQL(r *http.Request) (string, bool) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req reverseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", false
		}
		return req.SQL, true
	}
	var b strings.Builder
	if _, err := io.Copy(&b, r.Body); err != nil {
		return "", false
	}
	return b.String(), true
}
