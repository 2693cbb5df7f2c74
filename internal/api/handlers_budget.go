package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/witlab/concierge/internal/api/respond"
	"github.com/witlab/concierge/internal/api/validate"
	"github.com/witlab/concierge/internal/budget"
	"github.com/witlab/concierge/internal/model"
)

type BudgetHandler struct {
	ledger *budget.Ledger
}

func NewBudgetHandler(ledger *budget.Ledger) *BudgetHandler { return &BudgetHandler{ledger: ledger} }

// CreateEntry appends a ledger entry. Authorization is enforced by the
// ledger itself so the chat intent path and this endpoint share one gate.
func (h *BudgetHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Org      string  `json:"org"`
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
		Duration string  `json:"duration,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Org(in.Org); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Amount(in.Amount); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	id := IdentityFrom(r.Context())
	entry, err := h.ledger.Record(r.Context(), id.Role, in.Org, in.Category, in.Amount, in.Duration, time.Now().UTC())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, entry)
}

// GetSummary returns the org total, per-category subtotals, and recent entries.
func (h *BudgetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]
	if err := validate.Org(org); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if !callerIsAdmin(r) {
		respond.WriteError(w, http.StatusForbidden, "budget queries require admin role")
		return
	}

	sum, err := h.ledger.Summary(r.Context(), org)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sum)
}

// ListEntries returns entries for one org, optionally filtered by category.
func (h *BudgetHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["org"]
	if err := validate.Org(org); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if !callerIsAdmin(r) {
		respond.WriteError(w, http.StatusForbidden, "budget queries require admin role")
		return
	}

	category := r.URL.Query().Get("category")
	var (
		entries []*model.BudgetEntry
		err     error
	)
	if category != "" {
		entries, err = h.ledger.QueryByCategory(r.Context(), org, category)
	} else {
		sum, serr := h.ledger.Summary(r.Context(), org)
		if serr != nil {
			respond.WriteDomainError(w, serr)
			return
		}
		entries = sum.Recent
	}
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []*model.BudgetEntry{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

func callerIsAdmin(r *http.Request) bool {
	id := IdentityFrom(r.Context())
	return id != nil && id.Role == model.RoleAdmin
}
