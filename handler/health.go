package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/tinkoffpay/infra/response"
	"github.com/mstgnz/tinkoffpay/infra/storage"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store     *storage.SQLiteStore
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *storage.SQLiteStore) *HealthHandler {
	return &HealthHandler{
		store:     store,
		startTime: time.Now(),
	}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":     "healthy",
		"uptime":     time.Since(h.startTime).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
	}

	if h.store != nil {
		stats, err := h.store.Stats()
		if err != nil {
			status["status"] = "degraded"
			status["storage_error"] = err.Error()
			response.Success(w, http.StatusServiceUnavailable, "Health check", status)
			return
		}
		status["storage"] = stats
	}

	response.Success(w, http.StatusOK, "Health check", status)
}
