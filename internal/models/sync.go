package models

import (
	"time"

	"github.com/google/uuid"
)

// Tombstone kinds
const (
	TombstonePrinter    = "printer"
	TombstoneAssignment = "assignment"
)

// Tombstone marks a locally deleted record so a later pull does not
// resurrect it on another device
type Tombstone struct {
	Kind      string    `db:"kind" json:"kind"`
	RecordID  uuid.UUID `db:"record_id" json:"record_id"`
	DeletedAt time.Time `db:"deleted_at" json:"deleted_at"`
}

// Snapshot is the full registry and assignment state for one tenant,
// tagged with the local revision at the time it was taken
type Snapshot struct {
	TenantID    string                 `json:"tenant_id"`
	Revision    int64                  `json:"revision"`
	GeneratedAt time.Time              `json:"generated_at"`
	Printers    []PrinterConfiguration `json:"printers"`
	Assignments []PrinterAssignment    `json:"assignments"`
	Tombstones  []Tombstone            `json:"tombstones"`
}

// MergeSummary reports what a pull changed locally
type MergeSummary struct {
	RemoteRevision     int64 `json:"remote_revision"`
	PrintersAdded      int   `json:"printers_added"`
	PrintersUpdated    int   `json:"printers_updated"`
	PrintersRemoved    int   `json:"printers_removed"`
	AssignmentsAdded   int   `json:"assignments_added"`
	AssignmentsUpdated int   `json:"assignments_updated"`
	AssignmentsRemoved int   `json:"assignments_removed"`
}

// SyncStatus is the operator-facing sync health surface
type SyncStatus struct {
	TenantID      string     `json:"tenant_id"`
	LocalRevision int64      `json:"local_revision"`
	LastSyncAt    *time.Time `json:"last_sync_at"`
	LastSyncError string     `json:"last_sync_error,omitempty"`
}
