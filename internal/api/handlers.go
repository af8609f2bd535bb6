// Package api serves rowcast predictions over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jsnanigans/rowcast/internal/config"
	"github.com/jsnanigans/rowcast/internal/entry"
	"github.com/jsnanigans/rowcast/pkg/rowcast"
)

// Handler holds the API dependencies and the named position sessions.
type Handler struct {
	cfg    *config.Config
	logger *zap.Logger

	// mu guards sessions.
	mu       sync.RWMutex
	sessions map[string]*entry.Book
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(cfg *config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*entry.Book),
	}
}

type predictRequest struct {
	Positions  []rowcast.Position `json:"positions"`
	MaxRows    int                `json:"maxRows"`
	MaxCols    int                `json:"maxCols"`
	Iterations int                `json:"iterations"`
	Method     string             `json:"method"`
	Seed       *int64             `json:"seed,omitempty"`
}

type analyzeRequest struct {
	Positions []rowcast.Position `json:"positions"`
	MaxCols   int                `json:"maxCols"`
}

type textRequest struct {
	Text string `json:"text"`
}

type positionsResponse struct {
	Positions []rowcast.Position `json:"positions"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Predict runs a prediction over the posted positions.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.runPredictions(w, req)
}

// Analyze returns the column pattern of the posted positions.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}
	maxCols := req.MaxCols
	if maxCols == 0 {
		maxCols = h.cfg.Grid.MaxCols
	}

	result, err := rowcast.AnalyzeColumns(req.Positions, maxCols)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Stats returns row interval statistics of the posted positions.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Positions) == 0 {
		h.writeError(w, rowcast.ErrEmptyInput)
		return
	}
	maxCols := req.MaxCols
	if maxCols == 0 {
		maxCols = h.cfg.Grid.MaxCols
	}
	if err := rowcast.ValidatePositions(req.Positions, maxCols); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rowcast.RowStatsOf(req.Positions))
}

// Parse converts bulk text into positions.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !h.decode(w, r, &req) {
		return
	}
	positions, err := entry.ParseBulk(req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionsResponse{Positions: positions})
}

// ListPositions returns the positions of a session. Unknown sessions are empty.
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, positionsResponse{Positions: h.snapshot(mux.Vars(r)["name"])})
}

// AddPosition adds one entry such as "7,2" to a session.
func (h *Handler) AddPosition(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := entry.ParseEntry(req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}

	name := mux.Vars(r)["name"]
	h.mu.Lock()
	book := h.book(name)
	err = book.Add(p)
	positions := book.Positions()
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Debug("Position added", zap.String("session", name), zap.Int("row", p.Row), zap.Int("col", p.Col))
	writeJSON(w, http.StatusCreated, positionsResponse{Positions: positions})
}

// ReplacePositions imports bulk text into a session, replacing what it held.
func (h *Handler) ReplacePositions(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !h.decode(w, r, &req) {
		return
	}
	parsed, err := entry.ParseBulk(req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}

	name := mux.Vars(r)["name"]
	h.mu.Lock()
	book := h.book(name)
	err = book.Replace(parsed)
	positions := book.Positions()
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("Session imported", zap.String("session", name), zap.Int("positions", len(positions)))
	writeJSON(w, http.StatusOK, positionsResponse{Positions: positions})
}

// ClearPositions empties a session.
func (h *Handler) ClearPositions(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	h.mu.Lock()
	delete(h.sessions, name)
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// PredictSession runs a prediction over a session's positions. Positions in the body
// are ignored.
func (h *Handler) PredictSession(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	req.Positions = h.snapshot(mux.Vars(r)["name"])
	h.runPredictions(w, req)
}

func (h *Handler) runPredictions(w http.ResponseWriter, req predictRequest) {
	opts := h.cfg.Options()
	if req.MaxRows != 0 {
		opts.MaxRows = req.MaxRows
	}
	if req.MaxCols != 0 {
		opts.MaxCols = req.MaxCols
	}
	if req.Iterations != 0 {
		opts.Iterations = req.Iterations
	}
	if req.Method != "" {
		method, err := rowcast.ParseMethod(req.Method)
		if err != nil {
			h.writeError(w, err)
			return
		}
		opts.Method = method
	}
	if err := config.CheckOptions(opts); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Seed != nil {
		opts.Rand = rand.New(rand.NewSource(*req.Seed))
	}
	opts.Logger = h.logger

	report, err := rowcast.RunPredictions(req.Positions, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// book returns the named session, creating it. Callers hold mu.
func (h *Handler) book(name string) *entry.Book {
	b, ok := h.sessions[name]
	if !ok {
		b = entry.NewBook(h.cfg.Grid.MaxCols)
		h.sessions[name] = b
	}
	return b
}

func (h *Handler) snapshot(name string) []rowcast.Position {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.sessions[name]
	if !ok {
		return []rowcast.Position{}
	}
	return b.Positions()
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, rowcast.ErrEmptyInput),
		errors.Is(err, rowcast.ErrInvalidRange),
		errors.Is(err, entry.ErrMalformed),
		errors.Is(err, entry.ErrDuplicate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
