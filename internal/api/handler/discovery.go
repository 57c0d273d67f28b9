package handler

import (
	"net/http"

	"github.com/pizza-nz/print-routing-service/internal/service"
)

// DiscoveryHandler triggers network printer discovery sweeps
type DiscoveryHandler struct {
	discovery *service.DiscoveryService
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discovery *service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{
		discovery: discovery,
	}
}

// HandleScan runs a discovery sweep and merges the results into the
// registry. The sweep is synchronous; clients should use a generous
// request timeout when scanning large subnets.
func (h *DiscoveryHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.discovery.Scan(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	respondJSON(w, summary)
}
