package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/models"
	"github.com/pizza-nz/print-routing-service/internal/service"
)

// AssignmentHandler handles printer assignment requests
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
	}
}

// HandleAssignments handles requests for assignments
func (h *AssignmentHandler) HandleAssignments(w http.ResponseWriter, r *http.Request) {
	// Extract the ID from path
	path := strings.TrimPrefix(r.URL.Path, "/assignments")
	path = strings.TrimPrefix(path, "/")

	// Handle different HTTP methods
	switch r.Method {
	case http.MethodGet:
		if path == "" {
			h.listAssignments(w, r)
		} else {
			id, err := uuid.Parse(path)
			if err != nil {
				http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
				return
			}
			h.getAssignment(w, r, id)
		}

	case http.MethodPost:
		if path != "" {
			http.Error(w, "Invalid path", http.StatusBadRequest)
			return
		}
		h.createAssignment(w, r)

	case http.MethodPut:
		id, err := uuid.Parse(path)
		if err != nil {
			http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
			return
		}
		h.updateAssignment(w, r, id)

	case http.MethodDelete:
		id, err := uuid.Parse(path)
		if err != nil {
			http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
			return
		}
		h.deleteAssignment(w, r, id)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// listAssignments lists assignments, optionally filtered by printer
func (h *AssignmentHandler) listAssignments(w http.ResponseWriter, r *http.Request) {
	var (
		assignments []models.PrinterAssignment
		err         error
	)
	if raw := r.URL.Query().Get("printer_id"); raw != "" {
		printerID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			http.Error(w, "Invalid printer_id", http.StatusBadRequest)
			return
		}
		assignments, err = h.assignments.GetAssignmentsByPrinter(r.Context(), printerID)
	} else {
		assignments, err = h.assignments.GetAssignments(r.Context())
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, assignments)
}

// getAssignment gets an assignment by ID
func (h *AssignmentHandler) getAssignment(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	assignment, err := h.assignments.GetAssignment(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, assignment)
}

// createAssignment creates a new assignment, replacing any existing
// active assignment for the same printer and target
func (h *AssignmentHandler) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.AssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.assignments.AddAssignment(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	respondJSON(w, assignment)
}

// updateAssignment updates an assignment
func (h *AssignmentHandler) updateAssignment(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req models.AssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.assignments.UpdateAssignment(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, assignment)
}

// deleteAssignment deletes an assignment
func (h *AssignmentHandler) deleteAssignment(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	err := h.assignments.RemoveAssignment(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
