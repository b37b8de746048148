// Package api serves the best-path table and monitored-pair administration over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mtlprog/bestpath/internal/domain"
	"github.com/mtlprog/bestpath/internal/monitor"
	"github.com/mtlprog/bestpath/internal/oracle"
	"github.com/mtlprog/bestpath/internal/pathstore"
	"github.com/mtlprog/bestpath/internal/worker"
)

const maxBodyBytes = 1 << 20

// PathReader reads the stored best-path table.
type PathReader interface {
	List(ctx context.Context) ([]domain.StoredPath, error)
	Get(ctx context.Context, pair domain.Pair) (domain.StoredPath, error)
}

// PairManager lists and updates the monitored provider pairs.
type PairManager interface {
	List(ctx context.Context) ([]domain.ProviderPair, error)
	Submit(ctx context.Context, ops []domain.ProviderPairOperation) ([]domain.ProviderPairOperation, error)
}

// Recomputer runs one recomputation cycle on demand.
type Recomputer interface {
	Trigger(ctx context.Context) (oracle.Result, error)
}

// Handler provides HTTP endpoints for the best-path API.
type Handler struct {
	paths      PathReader
	pairs      PairManager
	recomputer Recomputer
}

// NewHandler creates a new API handler.
func NewHandler(paths PathReader, pairs PairManager, recomputer Recomputer) *Handler {
	return &Handler{paths: paths, pairs: pairs, recomputer: recomputer}
}

type pathResponse struct {
	Source    domain.Currency   `json:"source"`
	Target    domain.Currency   `json:"target"`
	TotalCost domain.Amount     `json:"totalCost"`
	Steps     []domain.PathStep `json:"steps"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func toPathResponse(p domain.StoredPath) pathResponse {
	steps := p.Path.Steps
	if steps == nil {
		steps = []domain.PathStep{}
	}
	return pathResponse{
		Source:    p.Pair.Source,
		Target:    p.Pair.Target,
		TotalCost: p.Path.TotalCost,
		Steps:     steps,
		UpdatedAt: p.UpdatedAt,
	}
}

// pairOperation is the wire form of a monitored pair, with an optional operation.
type pairOperation struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Provider  string `json:"provider"`
	Operation string `json:"operation,omitempty"`
}

func fromProviderPair(pp domain.ProviderPair, op domain.Operation) pairOperation {
	return pairOperation{
		Source:    string(pp.Pair.Source),
		Target:    string(pp.Pair.Target),
		Provider:  string(pp.Provider),
		Operation: string(op),
	}
}

func (p pairOperation) parse() (domain.ProviderPairOperation, error) {
	var (
		op  domain.ProviderPairOperation
		err error
	)
	if op.ProviderPair.Pair.Source, err = domain.NewCurrency(p.Source); err != nil {
		return op, err
	}
	if op.ProviderPair.Pair.Target, err = domain.NewCurrency(p.Target); err != nil {
		return op, err
	}
	if op.ProviderPair.Provider, err = domain.ParseProvider(p.Provider); err != nil {
		return op, err
	}
	if op.Operation, err = domain.ParseOperation(p.Operation); err != nil {
		return op, err
	}
	return op, nil
}

// ListPaths handles GET /api/v1/paths.
func (h *Handler) ListPaths(w http.ResponseWriter, r *http.Request) {
	stored, err := h.paths.List(r.Context())
	if err != nil {
		slog.Error("failed to list best paths", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	resp := make([]pathResponse, 0, len(stored))
	for _, p := range stored {
		resp = append(resp, toPathResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPath handles GET /api/v1/paths/{source}/{target}.
func (h *Handler) GetPath(w http.ResponseWriter, r *http.Request) {
	source, err := domain.NewCurrency(r.PathValue("source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid source currency")
		return
	}
	target, err := domain.NewCurrency(r.PathValue("target"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid target currency")
		return
	}

	p, err := h.paths.Get(r.Context(), domain.Pair{Source: source, Target: target})
	if err != nil {
		if errors.Is(err, pathstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "best path not found")
			return
		}
		slog.Error("failed to get best path", "source", source, "target", target, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toPathResponse(p))
}

// ListMonitoredPairs handles GET /api/v1/monitored-pairs.
func (h *Handler) ListMonitoredPairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.pairs.List(r.Context())
	if err != nil {
		slog.Error("failed to list monitored pairs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	resp := make([]pairOperation, 0, len(pairs))
	for _, pp := range pairs {
		resp = append(resp, fromProviderPair(pp, ""))
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitMonitoredPairs handles POST /api/v1/monitored-pairs.
func (h *Handler) SubmitMonitoredPairs(w http.ResponseWriter, r *http.Request) {
	var body []pairOperation
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ops := make([]domain.ProviderPairOperation, 0, len(body))
	for _, item := range body {
		op, err := item.parse()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ops = append(ops, op)
	}

	effective, err := h.pairs.Submit(r.Context(), ops)
	if err != nil {
		if errors.Is(err, monitor.ErrInvalidPair) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to submit monitored pairs", "applied", len(effective), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]pairOperation, 0, len(effective))
	for _, op := range effective {
		resp = append(resp, fromProviderPair(op.ProviderPair, op.Operation))
	}
	writeJSON(w, http.StatusOK, resp)
}

type recomputeResponse struct {
	Monitored int `json:"monitored"`
	Fetched   int `json:"fetched"`
	Paths     int `json:"paths"`
	Changes   int `json:"changes"`
}

// Recompute handles POST /api/v1/recompute.
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	res, err := h.recomputer.Trigger(r.Context())
	if err != nil {
		if errors.Is(err, worker.ErrBusy) {
			writeError(w, http.StatusConflict, "recomputation already in progress")
			return
		}
		slog.Error("failed to recompute best paths", "error", err)
		writeError(w, http.StatusInternalServerError, "recomputation failed")
		return
	}
	writeJSON(w, http.StatusOK, recomputeResponse{
		Monitored: res.Monitored,
		Fetched:   res.Fetched,
		Paths:     res.Paths,
		Changes:   len(res.Changes),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
