package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pizza-nz/print-routing-service/internal/models"
)

// SyncRepository tracks the local revision counter and the tombstones
// cloud sync needs to propagate deletions
type SyncRepository struct {
	db *sqlx.DB
}

// NewSyncRepository creates a new sync state repository
func NewSyncRepository(db *sqlx.DB) *SyncRepository {
	return &SyncRepository{db: db}
}

// BumpRevision increments and returns the local revision counter
func (r *SyncRepository) BumpRevision(ctx context.Context) (int64, error) {
	query := `
		UPDATE sync_state
		SET revision = revision + 1
		RETURNING revision
	`

	var revision int64
	err := r.db.GetContext(ctx, &revision, query)
	if err != nil {
		return 0, fmt.Errorf("failed to bump revision: %w", err)
	}

	return revision, nil
}

// Revision returns the current local revision counter
func (r *SyncRepository) Revision(ctx context.Context) (int64, error) {
	query := `SELECT revision FROM sync_state`

	var revision int64
	err := r.db.GetContext(ctx, &revision, query)
	if err != nil {
		return 0, fmt.Errorf("failed to get revision: %w", err)
	}

	return revision, nil
}

// RecordTombstone marks a deleted record so pulls do not resurrect it
func (r *SyncRepository) RecordTombstone(ctx context.Context, ts models.Tombstone) error {
	query := `
		INSERT INTO sync_tombstones (kind, record_id, deleted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, record_id) DO UPDATE SET deleted_at = EXCLUDED.deleted_at
	`

	_, err := r.db.ExecContext(ctx, query, ts.Kind, ts.RecordID, ts.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to record tombstone: %w", err)
	}

	return nil
}

// ListTombstones retrieves all tombstones
func (r *SyncRepository) ListTombstones(ctx context.Context) ([]models.Tombstone, error) {
	query := `
		SELECT kind, record_id, deleted_at
		FROM sync_tombstones
		ORDER BY deleted_at ASC
	`

	var tombstones []models.Tombstone
	err := r.db.SelectContext(ctx, &tombstones, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tombstones: %w", err)
	}

	return tombstones, nil
}
