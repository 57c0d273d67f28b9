package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pizza-nz/print-routing-service/internal/models"
)

// PrinterRepository handles printer configuration data access
type PrinterRepository struct {
	db *sqlx.DB
}

// NewPrinterRepository creates a new printer repository
func NewPrinterRepository(db *sqlx.DB) *PrinterRepository {
	return &PrinterRepository{db: db}
}

const printerColumns = `id, name, type, address, port, model, paper_width, is_active,
		connection_status, last_connected_at, last_health_check_at, created_at, updated_at`

// GetByID retrieves a printer by ID
func (r *PrinterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PrinterConfiguration, error) {
	query := `
		SELECT ` + printerColumns + `
		FROM printers
		WHERE id = $1
	`

	var printer models.PrinterConfiguration
	err := r.db.GetContext(ctx, &printer, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("printer %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get printer: %w", err)
	}

	return &printer, nil
}

// GetByAddress retrieves a printer by its transport address
func (r *PrinterRepository) GetByAddress(ctx context.Context, address string, port int) (*models.PrinterConfiguration, error) {
	query := `
		SELECT ` + printerColumns + `
		FROM printers
		WHERE address = $1 AND port = $2
	`

	var printer models.PrinterConfiguration
	err := r.db.GetContext(ctx, &printer, query, address, port)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("printer at %s:%d: %w", address, port, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get printer by address: %w", err)
	}

	return &printer, nil
}

// List retrieves all printers
func (r *PrinterRepository) List(ctx context.Context) ([]models.PrinterConfiguration, error) {
	query := `
		SELECT ` + printerColumns + `
		FROM printers
		ORDER BY name ASC
	`

	var printers []models.PrinterConfiguration
	err := r.db.SelectContext(ctx, &printers, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list printers: %w", err)
	}

	return printers, nil
}

// ListActive retrieves printers enabled for routing
func (r *PrinterRepository) ListActive(ctx context.Context) ([]models.PrinterConfiguration, error) {
	query := `
		SELECT ` + printerColumns + `
		FROM printers
		WHERE is_active = true
		ORDER BY name ASC
	`

	var printers []models.PrinterConfiguration
	err := r.db.SelectContext(ctx, &printers, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active printers: %w", err)
	}

	return printers, nil
}

// Create inserts a printer. Timestamps supplied by the caller (cloud
// sync preserving remote state) are kept; otherwise the database fills
// them in.
func (r *PrinterRepository) Create(ctx context.Context, printer models.PrinterConfiguration) (*models.PrinterConfiguration, error) {
	now := time.Now()
	if printer.CreatedAt.IsZero() {
		printer.CreatedAt = now
	}
	if printer.UpdatedAt.IsZero() {
		printer.UpdatedAt = now
	}
	if printer.ConnectionStatus == "" {
		printer.ConnectionStatus = models.ConnectionStatusUnknown
	}

	query := `
		INSERT INTO printers (id, name, type, address, port, model, paper_width, is_active,
			connection_status, last_connected_at, last_health_check_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + printerColumns + `
	`

	var created models.PrinterConfiguration
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		printer.ID,
		printer.Name,
		printer.Type,
		printer.Address,
		printer.Port,
		printer.Model,
		printer.PaperWidth,
		printer.IsActive,
		printer.ConnectionStatus,
		printer.LastConnectedAt,
		printer.LastHealthCheckAt,
		printer.CreatedAt,
		printer.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("printer %s: %w", printer.ID, models.ErrDuplicateID)
		}
		return nil, fmt.Errorf("failed to create printer: %w", err)
	}

	return &created, nil
}

// Update updates a printer's configuration fields
func (r *PrinterRepository) Update(ctx context.Context, printer models.PrinterConfiguration) (*models.PrinterConfiguration, error) {
	updatedAt := printer.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `
		UPDATE printers
		SET name = $1, type = $2, address = $3, port = $4, model = $5, paper_width = $6,
			is_active = $7, updated_at = $8
		WHERE id = $9
		RETURNING ` + printerColumns + `
	`

	var updated models.PrinterConfiguration
	err := r.db.GetContext(
		ctx,
		&updated,
		query,
		printer.Name,
		printer.Type,
		printer.Address,
		printer.Port,
		printer.Model,
		printer.PaperWidth,
		printer.IsActive,
		updatedAt,
		printer.ID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("printer %s: %w", printer.ID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update printer: %w", err)
	}

	return &updated, nil
}

// UpdateStatus records a connection monitor probe result without
// touching updated_at, so status probes never win last-writer-wins
// merges against real configuration edits
func (r *PrinterRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ConnectionStatus, checkedAt time.Time) error {
	query := `
		UPDATE printers
		SET connection_status = $1,
			last_health_check_at = $2,
			last_connected_at = CASE WHEN $1 = 'connected' THEN $2 ELSE last_connected_at END
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, checkedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update printer status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("printer %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// Delete removes a printer
func (r *PrinterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM printers WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete printer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("printer %s: %w", id, models.ErrNotFound)
	}

	return nil
}
