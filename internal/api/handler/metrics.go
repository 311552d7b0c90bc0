package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/schemarev/schemarev/internal/entity"
)

// MetricsHandler reports per-parser attempt counters for the engine behind
// the server. It goes through the engine's synchronized accessors, never the
// coordinator itself.
type MetricsHandler struct {
	logger *zap.SugaredLogger
	engine *entity.Engine
}

func NewMetricsHandler(logger *zap.SugaredLogger, engine *entity.Engine) *MetricsHandler {
	return &MetricsHandler{logger: logger, engine: engine}
}

type parserMetrics struct {
	Attempts    int     `json:"attempts"`
	Successes   int     `json:"successes"`
	Failures    int     `json:"failures"`
	SuccessRate float64 `json:"success_rate"`
}

// Get handles GET /api/v1/metrics.
func (h *MetricsHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot := h.engine.Metrics()
	rates := h.engine.SuccessRates()

	out := make(map[string]parserMetrics, len(snapshot))
	for c, m := range snapshot {
		out[c.String()] = parserMetrics{
			Attempts:    m.Attempts,
			Successes:   m.Successes,
			Failures:    m.Failures,
			SuccessRate: rates[c],
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"parsers": out})
}

// Reset handles POST /api/v1/metrics/reset.
func (h *MetricsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.engine.ResetMetrics()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
