package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/models"
)

// AssignmentService owns the routing rules mapping catalog targets to
// printers. The assignment editor UI and cloud sync are its only writers.
type AssignmentService struct {
	assignments AssignmentStore
	printers    PrinterStore
	catalog     CatalogLookup
	syncState   SyncStateStore
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(assignments AssignmentStore, printers PrinterStore, catalog CatalogLookup, syncState SyncStateStore) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		printers:    printers,
		catalog:     catalog,
		syncState:   syncState,
	}
}

// GetAssignments retrieves all assignments
func (s *AssignmentService) GetAssignments(ctx context.Context) ([]models.PrinterAssignment, error) {
	return s.assignments.List(ctx)
}

// GetAssignmentsByPrinter retrieves all assignments targeting a printer
func (s *AssignmentService) GetAssignmentsByPrinter(ctx context.Context, printerID uuid.UUID) ([]models.PrinterAssignment, error) {
	return s.assignments.ListByPrinter(ctx, printerID)
}

// GetAssignment retrieves an assignment by ID
func (s *AssignmentService) GetAssignment(ctx context.Context, id uuid.UUID) (*models.PrinterAssignment, error) {
	return s.assignments.GetByID(ctx, id)
}

// AddAssignment creates a routing rule. Re-assigning the same printer to
// the same target replaces the existing active rule in place, so a
// repeated drop in the editor updates priority instead of erroring.
func (s *AssignmentService) AddAssignment(ctx context.Context, req models.AssignmentRequest) (*models.PrinterAssignment, error) {
	if _, err := s.printers.GetByID(ctx, req.PrinterID); err != nil {
		return nil, fmt.Errorf("printer %s: %w", req.PrinterID, ErrNotFound)
	}

	targetName := s.lookupTargetName(ctx, req.Type, req.TargetID)

	existing, err := s.assignments.FindActive(ctx, req.PrinterID, req.Type, req.TargetID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.Priority = req.Priority
		existing.IsActive = req.IsActive
		existing.TargetName = targetName
		updated, err := s.assignments.Update(ctx, *existing)
		if err != nil {
			return nil, err
		}
		s.bumpRevision(ctx)
		return updated, nil
	}

	assignment := models.PrinterAssignment{
		ID:         uuid.New(),
		PrinterID:  req.PrinterID,
		Type:       req.Type,
		TargetID:   req.TargetID,
		TargetName: targetName,
		Priority:   req.Priority,
		IsActive:   req.IsActive,
	}

	created, err := s.assignments.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}

	s.bumpRevision(ctx)
	return created, nil
}

// UpdateAssignment updates priority and active flag of an assignment
func (s *AssignmentService) UpdateAssignment(ctx context.Context, id uuid.UUID, req models.AssignmentRequest) (*models.PrinterAssignment, error) {
	existing, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Priority = req.Priority
	existing.IsActive = req.IsActive

	updated, err := s.assignments.Update(ctx, *existing)
	if err != nil {
		return nil, err
	}

	s.bumpRevision(ctx)
	return updated, nil
}

// RemoveAssignment deletes an assignment and tombstones it for sync
func (s *AssignmentService) RemoveAssignment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.assignments.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		return err
	}

	s.recordTombstone(ctx, models.Tombstone{
		Kind:      models.TombstoneAssignment,
		RecordID:  id,
		DeletedAt: time.Now(),
	})
	s.bumpRevision(ctx)

	return nil
}

// lookupTargetName snapshots the display name for a target. A failed
// lookup is not fatal; the name is informational only.
func (s *AssignmentService) lookupTargetName(ctx context.Context, t models.AssignmentType, targetID uuid.UUID) string {
	if s.catalog == nil {
		return ""
	}
	name, err := s.catalog.TargetName(ctx, t, targetID)
	if err != nil {
		log.Printf("Failed to resolve target name for %s %s: %v", t, targetID, err)
		return ""
	}
	return name
}

func (s *AssignmentService) bumpRevision(ctx context.Context) {
	if s.syncState == nil {
		return
	}
	if _, err := s.syncState.BumpRevision(ctx); err != nil {
		log.Printf("Failed to bump sync revision: %v", err)
	}
}

func (s *AssignmentService) recordTombstone(ctx context.Context, ts models.Tombstone) {
	if s.syncState == nil {
		return
	}
	if err := s.syncState.RecordTombstone(ctx, ts); err != nil {
		log.Printf("Failed to record tombstone for %s %s: %v", ts.Kind, ts.RecordID, err)
	}
}
