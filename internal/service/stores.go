package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/models"
)

// CRUD validation errors, surfaced to callers synchronously and never
// retried
var (
	ErrDuplicateID = models.ErrDuplicateID
	ErrNotFound    = models.ErrNotFound
)

// PrinterStore is the persistence surface the registry needs. The
// production implementation is the postgres repository; tests inject
// in-memory fakes.
type PrinterStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PrinterConfiguration, error)
	GetByAddress(ctx context.Context, address string, port int) (*models.PrinterConfiguration, error)
	List(ctx context.Context) ([]models.PrinterConfiguration, error)
	ListActive(ctx context.Context) ([]models.PrinterConfiguration, error)
	Create(ctx context.Context, p models.PrinterConfiguration) (*models.PrinterConfiguration, error)
	Update(ctx context.Context, p models.PrinterConfiguration) (*models.PrinterConfiguration, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ConnectionStatus, checkedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AssignmentStore is the persistence surface for routing rules
type AssignmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PrinterAssignment, error)
	List(ctx context.Context) ([]models.PrinterAssignment, error)
	ListByPrinter(ctx context.Context, printerID uuid.UUID) ([]models.PrinterAssignment, error)
	ListActiveForTarget(ctx context.Context, t models.AssignmentType, targetID uuid.UUID) ([]models.PrinterAssignment, error)
	FindActive(ctx context.Context, printerID uuid.UUID, t models.AssignmentType, targetID uuid.UUID) (*models.PrinterAssignment, error)
	Create(ctx context.Context, a models.PrinterAssignment) (*models.PrinterAssignment, error)
	Update(ctx context.Context, a models.PrinterAssignment) (*models.PrinterAssignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeactivateForPrinter(ctx context.Context, printerID uuid.UUID) ([]uuid.UUID, error)
}

// SyncStateStore tracks the local revision counter and tombstones for
// cloud reconciliation
type SyncStateStore interface {
	BumpRevision(ctx context.Context) (int64, error)
	Revision(ctx context.Context) (int64, error)
	RecordTombstone(ctx context.Context, ts models.Tombstone) error
	ListTombstones(ctx context.Context) ([]models.Tombstone, error)
}

// CatalogLookup resolves category and menu-item ids to display names.
// It is used only to snapshot target names at assignment time, never for
// routing decisions.
type CatalogLookup interface {
	TargetName(ctx context.Context, t models.AssignmentType, targetID uuid.UUID) (string, error)
}

// EventPublisher pushes engine events to connected UI clients. The
// websocket hub implements it; services treat a nil publisher as a no-op.
type EventPublisher interface {
	PublishEvent(eventType string, payload interface{})
}

// Event types published on the hub
const (
	EventPrinterStatus  = "printer.status"
	EventPrinterCreated = "printer.created"
	EventPrinterUpdated = "printer.updated"
	EventPrinterDeleted = "printer.deleted"
	EventDispatchReport = "dispatch.report"
	EventSyncCompleted  = "sync.completed"
)
