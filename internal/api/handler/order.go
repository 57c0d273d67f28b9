package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pizza-nz/print-routing-service/internal/models"
	"github.com/pizza-nz/print-routing-service/internal/service"
)

// OrderHandler routes incoming orders to printers
type OrderHandler struct {
	dispatch *service.DispatchService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(dispatch *service.DispatchService) *OrderHandler {
	return &OrderHandler{
		dispatch: dispatch,
	}
}

// HandleOrders handles requests for order printing
func (h *OrderHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/orders")
	path = strings.TrimPrefix(path, "/")

	if r.Method != http.MethodPost || path != "print" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.printOrder(w, r)
}

// printOrder resolves an order's items to printers and dispatches the
// tickets. Routing gaps come back as warnings, not errors.
func (h *OrderHandler) printOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderPrintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Order.OrderNumber == "" {
		http.Error(w, "order_number is required", http.StatusBadRequest)
		return
	}
	if len(req.Order.Items) == 0 {
		http.Error(w, "order has no items", http.StatusBadRequest)
		return
	}

	report, err := h.dispatch.PrintOrder(r.Context(), &req.Order)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, report)
}
