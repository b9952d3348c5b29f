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

// CreateLoan stores a loan and returns it with the generated schedule.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req struct {
		LenderID     int64   `json:"lender_id"`
		Amount       float64 `json:"amount"`
		InterestRate float64 `json:"interest_rate"`
		TermMonths   int     `json:"term_months"`
		StartDate    string  `json:"start_date"`
		Description  string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, &engine.ValidationError{Field: "body", Msg: "invalid JSON"})
		return
	}
	start, err := parseDateOr(req.StartDate, time.Now())
	if err != nil {
		h.respondError(w, err)
		return
	}

	loan, schedule, err := h.svc.CreateLoan(&models.Loan{
		UserID:       userID,
		LenderID:     req.LenderID,
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		TermMonths:   req.TermMonths,
		StartDate:    start,
		Description:  req.Description,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"loan":     loan,
		"schedule": schedule,
	})
}

// LoanSchedule returns the payment schedule of the user's loan.
func (h *Handler) LoanSchedule(w http.ResponseWriter, r *http.Request) {
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
	schedule, err := h.svc.LoanSchedule(id, userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

// PayLoanPayment settles one scheduled loan payment.
func (h *Handler) PayLoanPayment(w http.ResponseWriter, r *http.Request) {
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
		CategoryID int64   `json:"category_id"`
		Amount     float64 `json:"amount"`
		Date       string  `json:"date"`
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
	tx, err := h.svc.PayLoanPayment(id, userID, req.CategoryID, req.Amount, day)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// CreateDeferredPayment stores an ad-hoc deferred obligation.
func (h *Handler) CreateDeferredPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req struct {
		Amount      float64 `json:"amount"`
		DueDate     string  `json:"due_date"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, &engine.ValidationError{Field: "body", Msg: "invalid JSON"})
		return
	}
	d := &models.DeferredPayment{
		UserID:      userID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.DueDate != "" {
		due, err := parseDate(req.DueDate)
		if err != nil {
			h.respondError(w, err)
			return
		}
		d.DueDate = &due
	}
	created, err := h.svc.CreateDeferredPayment(d)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListDeferredPayments returns the user's deferred payments.
func (h *Handler) ListDeferredPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	deferred, err := h.svc.ListDeferredPayments(userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deferred)
}

// SettleDeferredPayment resolves an active deferred payment.
func (h *Handler) SettleDeferredPayment(w http.ResponseWriter, r *http.Request) {
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
		CategoryID int64   `json:"category_id"`
		Amount     float64 `json:"amount"`
		Date       string  `json:"date"`
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
	tx, err := h.svc.SettleDeferredPayment(id, userID, req.CategoryID, day, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}
