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

// AssignmentRepository handles printer assignment data access
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, printer_id, type, target_id, target_name, priority, is_active,
		created_at, updated_at`

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PrinterAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM printer_assignments
		WHERE id = $1
	`

	var assignment models.PrinterAssignment
	err := r.db.GetContext(ctx, &assignment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return &assignment, nil
}

// List retrieves all assignments
func (r *AssignmentRepository) List(ctx context.Context) ([]models.PrinterAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM printer_assignments
		ORDER BY priority ASC, created_at ASC
	`

	var assignments []models.PrinterAssignment
	err := r.db.SelectContext(ctx, &assignments, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	return assignments, nil
}

// ListByPrinter retrieves all assignments referencing a printer
func (r *AssignmentRepository) ListByPrinter(ctx context.Context, printerID uuid.UUID) ([]models.PrinterAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM printer_assignments
		WHERE printer_id = $1
		ORDER BY priority ASC, created_at ASC
	`

	var assignments []models.PrinterAssignment
	err := r.db.SelectContext(ctx, &assignments, query, printerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments by printer: %w", err)
	}

	return assignments, nil
}

// ListActiveForTarget retrieves the active assignments routing one target
func (r *AssignmentRepository) ListActiveForTarget(ctx context.Context, t models.AssignmentType, targetID uuid.UUID) ([]models.PrinterAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM printer_assignments
		WHERE type = $1 AND target_id = $2 AND is_active = true
		ORDER BY priority ASC, created_at ASC
	`

	var assignments []models.PrinterAssignment
	err := r.db.SelectContext(ctx, &assignments, query, t, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for target: %w", err)
	}

	return assignments, nil
}

// FindActive retrieves the active assignment for one (printer, type,
// target) triple, if any
func (r *AssignmentRepository) FindActive(ctx context.Context, printerID uuid.UUID, t models.AssignmentType, targetID uuid.UUID) (*models.PrinterAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM printer_assignments
		WHERE printer_id = $1 AND type = $2 AND target_id = $3 AND is_active = true
		LIMIT 1
	`

	var assignment models.PrinterAssignment
	err := r.db.GetContext(ctx, &assignment, query, printerID, t, targetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment for printer %s: %w", printerID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	return &assignment, nil
}

// Create inserts an assignment, keeping caller-supplied timestamps for
// cloud sync
func (r *AssignmentRepository) Create(ctx context.Context, assignment models.PrinterAssignment) (*models.PrinterAssignment, error) {
	now := time.Now()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	if assignment.UpdatedAt.IsZero() {
		assignment.UpdatedAt = now
	}

	query := `
		INSERT INTO printer_assignments (id, printer_id, type, target_id, target_name, priority,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + assignmentColumns + `
	`

	var created models.PrinterAssignment
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		assignment.ID,
		assignment.PrinterID,
		assignment.Type,
		assignment.TargetID,
		assignment.TargetName,
		assignment.Priority,
		assignment.IsActive,
		assignment.CreatedAt,
		assignment.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("assignment %s: %w", assignment.ID, models.ErrDuplicateID)
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	return &created, nil
}

// Update updates an assignment's routing fields
func (r *AssignmentRepository) Update(ctx context.Context, assignment models.PrinterAssignment) (*models.PrinterAssignment, error) {
	updatedAt := assignment.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `
		UPDATE printer_assignments
		SET printer_id = $1, type = $2, target_id = $3, target_name = $4, priority = $5,
			is_active = $6, updated_at = $7
		WHERE id = $8
		RETURNING ` + assignmentColumns + `
	`

	var updated models.PrinterAssignment
	err := r.db.GetContext(
		ctx,
		&updated,
		query,
		assignment.PrinterID,
		assignment.Type,
		assignment.TargetID,
		assignment.TargetName,
		assignment.Priority,
		assignment.IsActive,
		updatedAt,
		assignment.ID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment %s: %w", assignment.ID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	return &updated, nil
}

// Delete removes an assignment
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM printer_assignments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("assignment %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// DeactivateForPrinter soft-disables every assignment referencing a
// printer and returns the affected ids; used when the printer is removed
func (r *AssignmentRepository) DeactivateForPrinter(ctx context.Context, printerID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		UPDATE printer_assignments
		SET is_active = false, updated_at = $1
		WHERE printer_id = $2 AND is_active = true
		RETURNING id
	`

	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, query, time.Now(), printerID)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate assignments: %w", err)
	}

	return ids, nil
}
