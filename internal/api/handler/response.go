package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/schemarev/schemarev/pkg/apierr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeAPIError writes a structured error response and logs 5xx errors.
func writeAPIError(w http.ResponseWriter, logger *zap.SugaredLogger, e *apierr.Error) {
	if e.Status() >= 500 && logger != nil {
		logger.Errorw(e.Message(),
			"code", string(e.Code()),
			"error", e.Error())
	}
	writeJSON(w, e.Status(), e.Response())
}
