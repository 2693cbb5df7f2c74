package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/witlab/concierge/internal/api/respond"
	"github.com/witlab/concierge/internal/api/validate"
	"github.com/witlab/concierge/internal/model"
	"github.com/witlab/concierge/internal/reminder"
)

type ReminderHandler struct {
	scheduler *reminder.Scheduler
}

func NewReminderHandler(scheduler *reminder.Scheduler) *ReminderHandler {
	return &ReminderHandler{scheduler: scheduler}
}

// ListReminders returns the caller's pending reminders; ?due=1 narrows the
// list to reminders whose due time has passed.
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if !callerMayAccess(r, userID) {
		respond.WriteError(w, http.StatusForbidden, "reminders belong to another user")
		return
	}

	now := time.Now().UTC()
	var (
		items []*model.Reminder
		err   error
	)
	if r.URL.Query().Get("due") == "1" {
		items, err = h.scheduler.DueReminders(r.Context(), userID, now)
	} else {
		items, err = h.scheduler.ListPending(r.Context(), userID, now)
	}
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if items == nil {
		items = []*model.Reminder{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reminders": items,
		"count":     len(items),
	})
}

// CompleteReminder acknowledges a reminder so it stops surfacing.
func (h *ReminderHandler) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, reminderID := vars["userId"], vars["reminderId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.NonEmpty("reminderId", reminderID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if !callerMayAccess(r, userID) {
		respond.WriteError(w, http.StatusForbidden, "reminders belong to another user")
		return
	}

	if err := h.scheduler.Complete(r.Context(), userID, reminderID); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// callerMayAccess allows a user to act on their own resources; admins may act
// on anyone's.
func callerMayAccess(r *http.Request, userID string) bool {
	id := IdentityFrom(r.Context())
	if id == nil {
		return false
	}
	return id.UserID == userID || id.Role == model.RoleAdmin
}
