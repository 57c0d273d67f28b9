package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/models"
	"github.com/pizza-nz/print-routing-service/internal/service"
)

// PrinterHandler handles printer-related requests
type PrinterHandler struct {
	registry *service.RegistryService
	dispatch *service.DispatchService
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(registry *service.RegistryService, dispatch *service.DispatchService) *PrinterHandler {
	return &PrinterHandler{
		registry: registry,
		dispatch: dispatch,
	}
}

// HandlePrinters handles requests for printers
func (h *PrinterHandler) HandlePrinters(w http.ResponseWriter, r *http.Request) {
	// Extract the ID from path
	path := strings.TrimPrefix(r.URL.Path, "/printers")
	path = strings.TrimPrefix(path, "/")

	// Check for test endpoint
	if strings.HasSuffix(path, "/test") {
		id, err := uuid.Parse(strings.TrimSuffix(path, "/test"))
		if err != nil {
			http.Error(w, "Invalid printer ID", http.StatusBadRequest)
			return
		}
		h.testPrinter(w, r, id)
		return
	}

	// Handle different HTTP methods
	switch r.Method {
	case http.MethodGet:
		if path == "" {
			h.listPrinters(w, r)
		} else {
			id, err := uuid.Parse(path)
			if err != nil {
				http.Error(w, "Invalid printer ID", http.StatusBadRequest)
				return
			}
			h.getPrinter(w, r, id)
		}

	case http.MethodPost:
		if path != "" {
			http.Error(w, "Invalid path", http.StatusBadRequest)
			return
		}
		h.createPrinter(w, r)

	case http.MethodPut:
		id, err := uuid.Parse(path)
		if err != nil {
			http.Error(w, "Invalid printer ID", http.StatusBadRequest)
			return
		}
		h.updatePrinter(w, r, id)

	case http.MethodDelete:
		id, err := uuid.Parse(path)
		if err != nil {
			http.Error(w, "Invalid printer ID", http.StatusBadRequest)
			return
		}
		h.deletePrinter(w, r, id)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// listPrinters lists all printers
func (h *PrinterHandler) listPrinters(w http.ResponseWriter, r *http.Request) {
	var (
		printers []models.PrinterConfiguration
		err      error
	)
	if r.URL.Query().Get("active") == "true" {
		printers, err = h.registry.GetActivePrinters(r.Context())
	} else {
		printers, err = h.registry.GetPrinters(r.Context())
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, printers)
}

// getPrinter gets a printer by ID
func (h *PrinterHandler) getPrinter(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	printer, err := h.registry.GetPrinter(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, printer)
}

// createPrinter creates a new printer
func (h *PrinterHandler) createPrinter(w http.ResponseWriter, r *http.Request) {
	var req models.PrinterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	printer, err := h.registry.CreatePrinter(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	respondJSON(w, printer)
}

// updatePrinter updates a printer
func (h *PrinterHandler) updatePrinter(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req models.PrinterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	printer, err := h.registry.UpdatePrinter(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, printer)
}

// deletePrinter deletes a printer and deactivates its assignments
func (h *PrinterHandler) deletePrinter(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	err := h.registry.RemovePrinter(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// testPrinter sends a test ticket to a printer
func (h *PrinterHandler) testPrinter(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	printer, err := h.registry.GetPrinter(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	ticket := service.RenderTestTicket(printer.Name)
	report := h.dispatch.Dispatch(r.Context(), ticket, []uuid.UUID{id})

	if report.Failed() {
		w.WriteHeader(http.StatusBadGateway)
	}
	respondJSON(w, report)
}
