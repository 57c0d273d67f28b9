package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pizza-nz/print-routing-service/internal/cloud"
	"github.com/pizza-nz/print-routing-service/internal/service"
)

// SyncHandler exposes manual cloud sync controls. The service is nil
// when cloud sync is disabled in the configuration.
type SyncHandler struct {
	sync *service.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(sync *service.SyncService) *SyncHandler {
	return &SyncHandler{
		sync: sync,
	}
}

// HandleSync handles requests for cloud sync
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		http.Error(w, "Cloud sync is disabled", http.StatusServiceUnavailable)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/sync")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "status" && r.Method == http.MethodGet:
		h.status(w, r)
	case path == "push" && r.Method == http.MethodPost:
		h.push(w, r)
	case path == "pull" && r.Method == http.MethodPost:
		h.pull(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// status reports sync health
func (h *SyncHandler) status(w http.ResponseWriter, r *http.Request) {
	status, err := h.sync.Status(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, status)
}

// push uploads the local snapshot to the cloud
func (h *SyncHandler) push(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Push(r.Context()); err != nil {
		respondSyncError(w, err)
		return
	}

	respondJSON(w, struct {
		Success bool `json:"success"`
	}{Success: true})
}

// pull downloads the cloud snapshot and merges it into local state
func (h *SyncHandler) pull(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sync.Pull(r.Context())
	if err != nil {
		respondSyncError(w, err)
		return
	}

	respondJSON(w, summary)
}

// respondSyncError maps cloud sync errors to HTTP status codes
func respondSyncError(w http.ResponseWriter, err error) {
	var syncErr *cloud.SyncError
	if errors.As(err, &syncErr) {
		switch syncErr.Kind {
		case cloud.ErrAuthFailed:
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		case cloud.ErrConflictUnresolved:
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
