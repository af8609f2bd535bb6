package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jsnanigans/rowcast/internal/logging"
)

// NewRouter registers every API route on a fresh router.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/predict", h.Predict).Methods(http.MethodPost)
	r.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/stats", h.Stats).Methods(http.MethodPost)
	r.HandleFunc("/parse", h.Parse).Methods(http.MethodPost)

	s := r.PathPrefix("/sessions/{name}").Subrouter()
	s.HandleFunc("/positions", h.ListPositions).Methods(http.MethodGet)
	s.HandleFunc("/positions", h.AddPosition).Methods(http.MethodPost)
	s.HandleFunc("/positions", h.ReplacePositions).Methods(http.MethodPut)
	s.HandleFunc("/positions", h.ClearPositions).Methods(http.MethodDelete)
	s.HandleFunc("/predict", h.PredictSession).Methods(http.MethodPost)

	return r
}

// WithAccessLog wraps next in a combined-format access log written through logger.
func WithAccessLog(next http.Handler, logger *zap.Logger) http.Handler {
	return handlers.CombinedLoggingHandler(logging.Writer(logger, "http access"), next)
}
