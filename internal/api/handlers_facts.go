package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/witlab/concierge/internal/api/respond"
	"github.com/witlab/concierge/internal/api/validate"
	"github.com/witlab/concierge/internal/knowledge"
)

type FactHandler struct {
	knowledge *knowledge.Store
}

func NewFactHandler(ks *knowledge.Store) *FactHandler { return &FactHandler{knowledge: ks} }

// SetFact stores an admin fact directly, bypassing the chat intent path.
func (h *FactHandler) SetFact(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Fact string `json:"fact"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NonEmpty("fact", in.Fact); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	id := IdentityFrom(r.Context())
	fact, err := h.knowledge.Set(r.Context(), id.Role, in.Fact, time.Now().UTC())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, fact)
}

// LookupFact is a diagnostic surface for the override match a chat turn
// would see for a given query.
func (h *FactHandler) LookupFact(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := validate.NonEmpty("q", q); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	fact, err := h.knowledge.Lookup(r.Context(), q, time.Now().UTC())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if fact == nil {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"match": nil})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"match": fact})
}
