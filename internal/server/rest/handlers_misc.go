package rest

import (
	"context"
	_ "embed"
	"net/http"
	"time"
)

//go:embed openapi.json
var openAPIDocument []byte

const healthTimeout = 2 * time.Second

type healthStatus struct {
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("All okay"))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{Database: "up", Time: h.now().UTC()}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn(r.Context(), "database ping failed", "error", err)
			status.Database = "down"
			h.respondError(w, r, http.StatusServiceUnavailable, msgUnhealthy, status, err)
			return
		}
	}
	h.respond(w, http.StatusOK, msgHealthy, status)
}

func (h *Handler) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(openAPIDocument)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, msgNotFound, nil, nil)
}
