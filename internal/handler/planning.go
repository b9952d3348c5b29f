package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/middleware"
	"github.com/ekomarov/planfact/internal/models"
	"github.com/gorilla/mux"
)

type plannedRequest struct {
	CategoryID  int64                  `json:"category_id"`
	Amount      float64                `json:"amount"`
	Direction   models.Direction       `json:"direction"`
	AnchorDate  string                 `json:"anchor_date"`
	Description string                 `json:"description"`
	Rule        *plannedRecurrenceRule `json:"rule,omitempty"`
}

type plannedRecurrenceRule struct {
	Kind            models.RecurrenceKind `json:"kind"`
	Interval        int                   `json:"interval"`
	IntervalUnit    models.IntervalUnit   `json:"interval_unit,omitempty"`
	EndCondition    models.EndCondition   `json:"end_condition"`
	EndDate         string                `json:"end_date,omitempty"`
	OccurrenceCount int                   `json:"occurrence_count,omitempty"`
}

// CreatePlanned handles planned transaction creation.
func (h *Handler) CreatePlanned(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req plannedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, &engine.ValidationError{Field: "body", Msg: "invalid JSON"})
		return
	}
	anchor, err := parseDate(req.AnchorDate)
	if err != nil {
		h.respondError(w, err)
		return
	}

	p := &models.PlannedTransaction{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Direction:   req.Direction,
		AnchorDate:  anchor,
		Description: req.Description,
	}
	if req.Rule != nil {
		rule := &models.RecurrenceRule{
			Kind:            req.Rule.Kind,
			Interval:        req.Rule.Interval,
			IntervalUnit:    req.Rule.IntervalUnit,
			EndCondition:    req.Rule.EndCondition,
			OccurrenceCount: req.Rule.OccurrenceCount,
		}
		if req.Rule.EndDate != "" {
			end, err := parseDate(req.Rule.EndDate)
			if err != nil {
				h.respondError(w, err)
				return
			}
			rule.EndDate = &end
		}
		p.Rule = rule
	}

	created, err := h.svc.CreatePlanned(p)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListPlanned returns the user's planned transactions.
func (h *Handler) ListPlanned(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	planned, err := h.svc.ListPlanned(userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, planned)
}

// DeactivatePlanned stops a planned transaction from recurring.
func (h *Handler) DeactivatePlanned(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, &engine.ValidationError{Field: "id", Msg: "must be an integer"})
		return
	}
	if err := h.svc.DeactivatePlanned(id, userID); err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Materialize advances the rolling horizon for the user.
func (h *Handler) Materialize(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req struct {
		AsOf string `json:"as_of"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	asOf, err := parseDateOr(req.AsOf, time.Now())
	if err != nil {
		h.respondError(w, err)
		return
	}
	created, err := h.svc.MaterializeDueOccurrences(userID, asOf)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"created": created})
}

// ListPendingOccurrences returns pending occurrences, overdue first.
func (h *Handler) ListPendingOccurrences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	asOf, err := parseDateOr(r.URL.Query().Get("as_of"), time.Now())
	if err != nil {
		h.respondError(w, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, &engine.ValidationError{Field: "limit", Msg: "must be an integer"})
			return
		}
	}
	occurrences, err := h.svc.ListPendingOccurrences(userID, asOf, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, occurrences)
}

// ExecuteOccurrence settles a pending occurrence.
func (h *Handler) ExecuteOccurrence(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, &engine.ValidationError{Field: "id", Msg: "must be an integer"})
		return
	}
	var req struct {
		Date   string  `json:"date"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, &engine.ValidationError{Field: "body", Msg: "invalid JSON"})
		return
	}
	day, err := parseDateOr(req.Date, time.Now())
	if err != nil {
		h.respondError(w, err)
		return
	}
	tx, err := h.svc.ExecuteOccurrence(userID, id, day, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// SkipOccurrence resolves a pending occurrence without a transaction.
func (h *Handler) SkipOccurrence(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, &engine.ValidationError{Field: "id", Msg: "must be an integer"})
		return
	}
	var req struct {
		Reason *string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if err := h.svc.SkipOccurrence(userID, id, req.Reason); err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Forecast returns the projected balance at the target date.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	target, err := parseDate(r.URL.Query().Get("target"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	forecast, err := h.svc.ForecastBalance(userID, target)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, forecast)
}

// ForecastRange returns a day-by-day projection for charting.
func (h *Handler) ForecastRange(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	days := 30
	var err error
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, &engine.ValidationError{Field: "days", Msg: "must be an integer"})
			return
		}
	}
	forecast, err := h.svc.ForecastRange(userID, time.Now(), days)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, forecast)
}

// CashGaps returns the dates with a negative projected balance.
func (h *Handler) CashGaps(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	from, err := parseDateOr(r.URL.Query().Get("from"), time.Now())
	if err != nil {
		h.respondError(w, err)
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	gaps, err := h.svc.DetectCashGaps(userID, from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]string, 0, len(gaps))
	for _, d := range gaps {
		out = append(out, d.Format(dateLayout))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"gaps": out})
}

// PlanFact returns plan-vs-fact statistics for a date range.
func (h *Handler) PlanFact(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	var categoryID *int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(w, &engine.ValidationError{Field: "category_id", Msg: "must be an integer"})
			return
		}
		categoryID = &id
	}
	report, err := h.svc.PlanFactReport(userID, from, to, categoryID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
