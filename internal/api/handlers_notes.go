package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/witlab/concierge/internal/api/respond"
	"github.com/witlab/concierge/internal/api/validate"
	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/notes"
)

type NoteHandler struct {
	pad *notes.Pad
}

func NewNoteHandler(pad *notes.Pad) *NoteHandler { return &NoteHandler{pad: pad} }

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateNote stores a scratchpad note for the caller.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var in noteRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NonEmpty("content", in.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	id := IdentityFrom(r.Context())
	note, err := h.pad.Create(r.Context(), id.UserID, in.Title, in.Content, time.Now().UTC())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, note)
}

// ListNotes returns the caller's notes, most recently updated first.
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())
	items, err := h.pad.List(r.Context(), id.UserID, time.Now().UTC())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if items == nil {
		items = []*model.Note{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notes": items,
		"count": len(items),
	})
}

// UpdateNote rewrites a note's title and content.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["noteId"]
	if err := validate.NonEmpty("noteId", noteID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	var in noteRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NonEmpty("content", in.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	id := IdentityFrom(r.Context())
	if err := h.pad.Update(r.Context(), id.UserID, noteID, in.Title, in.Content, time.Now().UTC()); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteNote removes a note.
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["noteId"]
	if err := validate.NonEmpty("noteId", noteID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	id := IdentityFrom(r.Context())
	if err := h.pad.Delete(r.Context(), id.UserID, noteID); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
