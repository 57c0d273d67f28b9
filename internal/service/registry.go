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

// RegistryService owns the set of known printers. Mutations are written
// through the store so every component sees them immediately, and each
// mutation bumps the local sync revision.
type RegistryService struct {
	printers    PrinterStore
	assignments AssignmentStore
	syncState   SyncStateStore
	events      EventPublisher
}

// NewRegistryService creates a new registry service
func NewRegistryService(printers PrinterStore, assignments AssignmentStore, syncState SyncStateStore, events EventPublisher) *RegistryService {
	return &RegistryService{
		printers:    printers,
		assignments: assignments,
		syncState:   syncState,
		events:      events,
	}
}

// GetPrinters retrieves all printers
func (s *RegistryService) GetPrinters(ctx context.Context) ([]models.PrinterConfiguration, error) {
	return s.printers.List(ctx)
}

// GetActivePrinters retrieves printers enabled for routing
func (s *RegistryService) GetActivePrinters(ctx context.Context) ([]models.PrinterConfiguration, error) {
	return s.printers.ListActive(ctx)
}

// GetPrinter retrieves a printer by ID
func (s *RegistryService) GetPrinter(ctx context.Context, id uuid.UUID) (*models.PrinterConfiguration, error) {
	return s.printers.GetByID(ctx, id)
}

// CreatePrinter registers a new printer
func (s *RegistryService) CreatePrinter(ctx context.Context, req models.PrinterRequest) (*models.PrinterConfiguration, error) {
	printer := models.PrinterConfiguration{
		ID:               uuid.New(),
		Name:             req.Name,
		Type:             req.Type,
		Address:          req.Address,
		Port:             req.Port,
		Model:            req.Model,
		PaperWidth:       req.PaperWidth,
		IsActive:         req.IsActive,
		ConnectionStatus: models.ConnectionStatusUnknown,
	}

	return s.AddPrinter(ctx, printer)
}

// AddPrinter registers a printer with a caller-supplied id, used when the
// id must be preserved, for example when restoring an exported fleet. It
// fails with ErrDuplicateID if the id is taken.
func (s *RegistryService) AddPrinter(ctx context.Context, printer models.PrinterConfiguration) (*models.PrinterConfiguration, error) {
	if existing, err := s.printers.GetByID(ctx, printer.ID); err == nil && existing != nil {
		return nil, fmt.Errorf("printer %s: %w", printer.ID, ErrDuplicateID)
	}

	created, err := s.printers.Create(ctx, printer)
	if err != nil {
		return nil, err
	}

	s.bumpRevision(ctx)
	s.publish(EventPrinterCreated, created)

	return created, nil
}

// UpdatePrinter updates a printer's operator-editable fields
func (s *RegistryService) UpdatePrinter(ctx context.Context, id uuid.UUID, req models.PrinterRequest) (*models.PrinterConfiguration, error) {
	existing, err := s.printers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Type = req.Type
	existing.Address = req.Address
	existing.Port = req.Port
	existing.Model = req.Model
	existing.PaperWidth = req.PaperWidth
	existing.IsActive = req.IsActive

	updated, err := s.printers.Update(ctx, *existing)
	if err != nil {
		return nil, err
	}

	s.bumpRevision(ctx)
	s.publish(EventPrinterUpdated, updated)

	return updated, nil
}

// SetConnectionStatus records a monitor probe result. It is the only
// write path for connection status.
func (s *RegistryService) SetConnectionStatus(ctx context.Context, id uuid.UUID, status models.ConnectionStatus) error {
	if err := s.printers.UpdateStatus(ctx, id, status, time.Now()); err != nil {
		return err
	}

	s.publish(EventPrinterStatus, struct {
		PrinterID uuid.UUID               `json:"printer_id"`
		Status    models.ConnectionStatus `json:"status"`
	}{PrinterID: id, Status: status})

	return nil
}

// RemovePrinter deletes a printer and deactivates its assignments. The
// assignments are kept as inactive records rather than deleted so the
// operator can see what a removed printer used to route, and tombstones
// are written so sync does not resurrect the printer on pull.
func (s *RegistryService) RemovePrinter(ctx context.Context, id uuid.UUID) error {
	if _, err := s.printers.GetByID(ctx, id); err != nil {
		return err
	}

	orphaned, err := s.assignments.DeactivateForPrinter(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate assignments: %w", err)
	}

	if err := s.printers.Delete(ctx, id); err != nil {
		return err
	}

	now := time.Now()
	s.recordTombstone(ctx, models.Tombstone{Kind: models.TombstonePrinter, RecordID: id, DeletedAt: now})

	s.bumpRevision(ctx)
	s.publish(EventPrinterDeleted, struct {
		PrinterID           uuid.UUID   `json:"printer_id"`
		OrphanedAssignments []uuid.UUID `json:"orphaned_assignments,omitempty"`
	}{PrinterID: id, OrphanedAssignments: orphaned})

	return nil
}

// MergeDiscovered folds a discovery candidate into the registry. A
// candidate whose address matches an existing entry refreshes that entry
// in place; otherwise a new, initially inactive printer is created so the
// operator decides what joins the routing fleet.
func (s *RegistryService) MergeDiscovered(ctx context.Context, candidate models.DiscoveredPrinter) (created bool, err error) {
	existing, err := s.printers.GetByAddress(ctx, candidate.Address, candidate.Port)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}

	if existing != nil {
		changed := false
		if candidate.Name != "" && candidate.Name != existing.Name {
			existing.Name = candidate.Name
			changed = true
		}
		if candidate.Model != nil && (existing.Model == nil || *existing.Model != *candidate.Model) {
			existing.Model = candidate.Model
			changed = true
		}
		if !changed {
			return false, nil
		}
		if _, err := s.printers.Update(ctx, *existing); err != nil {
			return false, err
		}
		s.bumpRevision(ctx)
		s.publish(EventPrinterUpdated, existing)
		return false, nil
	}

	name := candidate.Name
	if name == "" {
		name = fmt.Sprintf("Printer %s", candidate.Address)
	}

	printer := models.PrinterConfiguration{
		ID:               uuid.New(),
		Name:             name,
		Type:             models.PrinterTypeThermalReceipt,
		Address:          candidate.Address,
		Port:             candidate.Port,
		Model:            candidate.Model,
		IsActive:         false,
		ConnectionStatus: models.ConnectionStatusUnknown,
	}

	createdPrinter, err := s.printers.Create(ctx, printer)
	if err != nil {
		return false, err
	}

	s.bumpRevision(ctx)
	s.publish(EventPrinterCreated, createdPrinter)

	return true, nil
}

func (s *RegistryService) bumpRevision(ctx context.Context) {
	if s.syncState == nil {
		return
	}
	if _, err := s.syncState.BumpRevision(ctx); err != nil {
		log.Printf("Failed to bump sync revision: %v", err)
	}
}

func (s *RegistryService) recordTombstone(ctx context.Context, ts models.Tombstone) {
	if s.syncState == nil {
		return
	}
	if err := s.syncState.RecordTombstone(ctx, ts); err != nil {
		log.Printf("Failed to record tombstone for %s %s: %v", ts.Kind, ts.RecordID, err)
	}
}

func (s *RegistryService) publish(eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.PublishEvent(eventType, payload)
}
