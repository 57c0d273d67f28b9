package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/models"
)

func TestAddAssignmentReplacesActiveDuplicate(t *testing.T) {
	printer := connectedPrinter("kitchen")
	target := uuid.New()

	printers := newFakePrinterStore(printer)
	assignments := newFakeAssignmentStore()
	svc := NewAssignmentService(assignments, printers, nil, &fakeSyncState{})

	first, err := svc.AddAssignment(context.Background(), models.AssignmentRequest{
		PrinterID: printer.ID, Type: models.AssignmentTypeCategory, TargetID: target,
		Priority: 5, IsActive: true,
	})
	if err != nil {
		t.Fatalf("AddAssignment failed: %v", err)
	}

	// Re-assigning the same printer/target updates the rule in place
	second, err := svc.AddAssignment(context.Background(), models.AssignmentRequest{
		PrinterID: printer.ID, Type: models.AssignmentTypeCategory, TargetID: target,
		Priority: 1, IsActive: true,
	})
	if err != nil {
		t.Fatalf("second AddAssignment failed: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("duplicate triple must update in place, got new id %s", second.ID)
	}
	if second.Priority != 1 {
		t.Fatalf("priority not updated, got %d", second.Priority)
	}

	all, _ := assignments.List(context.Background())
	if len(all) != 1 {
		t.Fatalf("expected one assignment, got %d", len(all))
	}
}

func TestAddAssignmentUnknownPrinter(t *testing.T) {
	svc := NewAssignmentService(newFakeAssignmentStore(), newFakePrinterStore(), nil, nil)

	_, err := svc.AddAssignment(context.Background(), models.AssignmentRequest{
		PrinterID: uuid.New(), Type: models.AssignmentTypeCategory, TargetID: uuid.New(), IsActive: true,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddAssignmentSnapshotsTargetName(t *testing.T) {
	printer := connectedPrinter("kitchen")
	target := uuid.New()
	catalog := &fakeCatalog{names: map[uuid.UUID]string{target: "Mains"}}

	svc := NewAssignmentService(newFakeAssignmentStore(), newFakePrinterStore(printer), catalog, nil)

	created, err := svc.AddAssignment(context.Background(), models.AssignmentRequest{
		PrinterID: printer.ID, Type: models.AssignmentTypeCategory, TargetID: target, IsActive: true,
	})
	if err != nil {
		t.Fatalf("AddAssignment failed: %v", err)
	}
	if created.TargetName != "Mains" {
		t.Fatalf("expected snapshotted target name, got %q", created.TargetName)
	}
}

func TestAddAssignmentCatalogFailureNotFatal(t *testing.T) {
	printer := connectedPrinter("kitchen")
	catalog := &fakeCatalog{err: errors.New("catalog offline")}

	svc := NewAssignmentService(newFakeAssignmentStore(), newFakePrinterStore(printer), catalog, nil)

	created, err := svc.AddAssignment(context.Background(), models.AssignmentRequest{
		PrinterID: printer.ID, Type: models.AssignmentTypeMenuItem, TargetID: uuid.New(), IsActive: true,
	})
	if err != nil {
		t.Fatalf("catalog failure must not block assignment: %v", err)
	}
	if created.TargetName != "" {
		t.Fatalf("expected empty target name, got %q", created.TargetName)
	}
}

func TestRemoveAssignmentTombstones(t *testing.T) {
	printer := connectedPrinter("kitchen")
	assignment := models.PrinterAssignment{
		ID: uuid.New(), PrinterID: printer.ID,
		Type: models.AssignmentTypeCategory, TargetID: uuid.New(), IsActive: true,
	}

	assignments := newFakeAssignmentStore(assignment)
	syncState := &fakeSyncState{}
	svc := NewAssignmentService(assignments, newFakePrinterStore(printer), nil, syncState)

	if err := svc.RemoveAssignment(context.Background(), assignment.ID); err != nil {
		t.Fatalf("RemoveAssignment failed: %v", err)
	}

	if _, err := assignments.GetByID(context.Background(), assignment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("assignment should be deleted, got %v", err)
	}
	if len(syncState.tombstones) != 1 || syncState.tombstones[0].Kind != models.TombstoneAssignment {
		t.Fatalf("expected an assignment tombstone, got %v", syncState.tombstones)
	}
	if syncState.revision == 0 {
		t.Fatalf("removal must bump the revision")
	}
}
