package api

import (
	"encoding/json"
	"net/http"

	"github.com/witlab/concierge/internal/api/respond"
	"github.com/witlab/concierge/internal/api/validate"
	"github.com/witlab/concierge/internal/assembler"
)

type ChatHandler struct {
	asm *assembler.Assembler
}

func NewChatHandler(asm *assembler.Assembler) *ChatHandler { return &ChatHandler{asm: asm} }

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message   string `json:"message"`
		NewThread bool   `json:"newThread,omitempty"`
		Org       string `json:"org,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Message(in.Message); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	id := IdentityFrom(r.Context())
	res, err := h.asm.Handle(r.Context(), assembler.Request{
		UserID:    id.UserID,
		Role:      id.Role,
		Org:       in.Org,
		Message:   in.Message,
		NewThread: in.NewThread,
	})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}
