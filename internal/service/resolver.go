package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/models"
)

// ResolverService computes, for one order item, the ordered set of
// printers that must receive its ticket.
type ResolverService struct {
	assignments AssignmentStore
	printers    PrinterStore
}

// NewResolverService creates a new resolver service
func NewResolverService(assignments AssignmentStore, printers PrinterStore) *ResolverService {
	return &ResolverService{
		assignments: assignments,
		printers:    printers,
	}
}

// Resolve returns the deduplicated, priority-ordered printers for an
// order item. Item-level assignments suppress category-level assignments
// targeting the same printer. Printers that are disabled, disconnected or
// deleted are excluded but reported as warnings, never silently dropped.
func (s *ResolverService) Resolve(ctx context.Context, item models.OrderItem) (*models.Resolution, error) {
	itemLevel, err := s.assignments.ListActiveForTarget(ctx, models.AssignmentTypeMenuItem, item.MenuItemID)
	if err != nil {
		return nil, err
	}

	categoryLevel, err := s.assignments.ListActiveForTarget(ctx, models.AssignmentTypeCategory, item.CategoryID)
	if err != nil {
		return nil, err
	}

	// Union with item-level precedence: a category rule for a printer that
	// already has an item rule is suppressed, not duplicated.
	byPrinter := make(map[uuid.UUID]models.PrinterAssignment, len(itemLevel)+len(categoryLevel))
	for _, a := range itemLevel {
		byPrinter[a.PrinterID] = a
	}
	for _, a := range categoryLevel {
		if _, taken := byPrinter[a.PrinterID]; !taken {
			byPrinter[a.PrinterID] = a
		}
	}

	candidates := make([]models.PrinterAssignment, 0, len(byPrinter))
	for _, a := range byPrinter {
		candidates = append(candidates, a)
	}

	// Priority ascending, creation order breaking ties, so identical store
	// state always resolves to the same printer order.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})

	resolution := &models.Resolution{}
	for _, a := range candidates {
		printer, err := s.printers.GetByID(ctx, a.PrinterID)
		if err != nil || printer == nil {
			// Dangling reference: the printer was deleted out from under
			// the assignment.
			resolution.Warnings = append(resolution.Warnings, models.RoutingWarning{
				PrinterID:    a.PrinterID,
				AssignmentID: a.ID,
				Reason:       models.WarnPrinterMissing,
			})
			continue
		}
		if !printer.IsActive {
			resolution.Warnings = append(resolution.Warnings, models.RoutingWarning{
				PrinterID:    a.PrinterID,
				AssignmentID: a.ID,
				Reason:       models.WarnPrinterInactive,
			})
			continue
		}
		if printer.ConnectionStatus != models.ConnectionStatusConnected {
			resolution.Warnings = append(resolution.Warnings, models.RoutingWarning{
				PrinterID:    a.PrinterID,
				AssignmentID: a.ID,
				Reason:       models.WarnPrinterDisconnected,
			})
			continue
		}
		resolution.PrinterIDs = append(resolution.PrinterIDs, a.PrinterID)
	}

	resolution.Unrouted = len(resolution.PrinterIDs) == 0

	return resolution, nil
}
