package api

import (
	"context"
	"net/http"
	"time"

	"github.com/witlab/concierge/internal/api/respond"
)

// Pinger is implemented by store drivers that can probe their backing
// connection.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler { return &HealthHandler{store: store} }

// CheckHealth reports liveness plus the store's reachability.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	storeStatus := "healthy"
	status := http.StatusOK
	if h.store != nil {
		if err := h.store.HealthPing(ctx); err != nil {
			storeStatus = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	respond.WriteJSON(w, status, map[string]string{
		"status": http.StatusText(status),
		"store":  storeStatus,
	})
}
