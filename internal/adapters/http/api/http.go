// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/prhealth/internal/app"
	"github.com/okian/prhealth/internal/domain/types"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Health computes the full report of an account.
	Health(ctx context.Context, accountID string) (types.HealthReport, error)
	// Metric computes one sub-score by name.
	Metric(ctx context.Context, accountID, name string) (any, error)
	// TriggerSummary queues a summary request for the account.
	TriggerSummary(ctx context.Context, accountID string) (service.TriggerResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	accountsHandler *AccountsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		accountsHandler: NewAccountsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /accounts/{id}/health", MetricsMiddleware(s.accountsHandler.HandleGetHealth, "account_health"))
	mux.HandleFunc("GET /accounts/{id}/health/{metric}", MetricsMiddleware(s.accountsHandler.HandleGetMetric, "account_metric"))
	mux.HandleFunc("POST /accounts/{id}/summary", MetricsMiddleware(s.accountsHandler.HandlePostSummary, "account_summary"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps service errors to an API kind.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return WrapKind(op, ErrNotFound, err)
	case errors.Is(err, service.ErrUnknownMetric):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, service.ErrBackpressure):
		return WrapKind(op, ErrBackpressure, err)
	case errors.Is(err, service.ErrNotStarted):
		return WrapKind(op, ErrUnavailable, err)
	default:
		return Wrap(op, err)
	}
}

// writeKindError renders err with the status of its kind.
func writeKindError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
