package api

import (
	"net/http"
	"strings"

	service "github.com/okian/prhealth/internal/app"
)

// AccountsHandler serves per-account health reports and summary requests.
type AccountsHandler struct {
	deps Dependencies
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(deps Dependencies) *AccountsHandler {
	return &AccountsHandler{deps: deps}
}

func accountID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	return id, id != ""
}

// HandleGetHealth handles GET /accounts/{id}/health.
func (h *AccountsHandler) HandleGetHealth(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_health"
	id, ok := accountID(r)
	if !ok {
		writeKindError(w, NewKind(op, ErrBadRequest))
		return
	}
	report, err := h.deps.Health(r.Context(), id)
	if err != nil {
		writeKindError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleGetMetric handles GET /accounts/{id}/health/{metric}.
func (h *AccountsHandler) HandleGetMetric(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_metric"
	id, ok := accountID(r)
	if !ok {
		writeKindError(w, NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.Metric(r.Context(), id, r.PathValue("metric"))
	if err != nil {
		writeKindError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePostSummary handles POST /accounts/{id}/summary.
// 202 when queued, 200 for a repeat request on the same UTC day, 429 when the queue is full.
func (h *AccountsHandler) HandlePostSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_summary"
	id, ok := accountID(r)
	if !ok {
		writeKindError(w, NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.TriggerSummary(r.Context(), id)
	if err != nil {
		writeKindError(w, classify(op, err))
		return
	}
	if res.Status == service.TriggerDuplicate {
		writeJSON(w, http.StatusOK, res)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}
