package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/cloud"
	"github.com/pizza-nz/print-routing-service/internal/models"
)

// RemoteStore is the cloud snapshot surface; cloud.Client implements it
type RemoteStore interface {
	UploadSnapshot(ctx context.Context, snap *models.Snapshot) error
	DownloadSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// SyncService reconciles the registry and assignment store with the
// cloud snapshot for this tenant. It runs on its own schedule, can be
// triggered on demand, and never blocks dispatch or routing: it works on
// listed copies of the stores and serializes only against itself.
type SyncService struct {
	tenantID    string
	printers    PrinterStore
	assignments AssignmentStore
	syncState   SyncStateStore
	remote      RemoteStore
	stats       *StatsService
	events      EventPublisher
	interval    time.Duration

	mu            sync.Mutex
	lastSyncAt    *time.Time
	lastSyncError string
}

// NewSyncService creates a new cloud sync service
func NewSyncService(tenantID string, printers PrinterStore, assignments AssignmentStore, syncState SyncStateStore, remote RemoteStore, stats *StatsService, events EventPublisher, interval time.Duration) *SyncService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncService{
		tenantID:    tenantID,
		printers:    printers,
		assignments: assignments,
		syncState:   syncState,
		remote:      remote,
		stats:       stats,
		events:      events,
		interval:    interval,
	}
}

// Run pulls then pushes on every tick until the context is canceled.
// Failures are recorded and logged, never fatal.
func (s *SyncService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Pull(ctx); err != nil {
				log.Printf("Cloud pull failed: %v", err)
			}
			if err := s.Push(ctx); err != nil {
				log.Printf("Cloud push failed: %v", err)
			}
		}
	}
}

// Push uploads the full current registry and assignment snapshot tagged
// with the local revision
func (s *SyncService) Push(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.snapshot(ctx)
	if err != nil {
		s.recordOutcome(err)
		return err
	}

	if err := s.remote.UploadSnapshot(ctx, snap); err != nil {
		s.recordOutcome(err)
		return err
	}

	s.recordOutcome(nil)
	s.publish(EventSyncCompleted, struct {
		Direction string `json:"direction"`
		Revision  int64  `json:"revision"`
	}{Direction: "push", Revision: snap.Revision})

	return nil
}

// Pull downloads the remote snapshot and merges it into local state.
// Entries present only remotely are added, unless a local tombstone
// newer than the remote copy marks them deleted here; entries present
// in both are resolved last-writer-wins on their update timestamps;
// entries present only locally survive unless the remote carries a
// tombstone for them.
func (s *SyncService) Pull(ctx context.Context) (*models.MergeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remote, err := s.remote.DownloadSnapshot(ctx)
	if err != nil {
		if errors.Is(err, cloud.ErrNoSnapshot) {
			// Nothing pushed yet for this tenant; treat as a clean no-op
			s.recordOutcome(nil)
			return &models.MergeSummary{}, nil
		}
		s.recordOutcome(err)
		return nil, err
	}

	summary := &models.MergeSummary{RemoteRevision: remote.Revision}

	tombstoned := make(map[uuid.UUID]string, len(remote.Tombstones))
	for _, ts := range remote.Tombstones {
		tombstoned[ts.RecordID] = ts.Kind
	}

	// A record deleted here but still present in the remote snapshot must
	// not come back between our delete and the push that propagates it
	localTombstones, err := s.syncState.ListTombstones(ctx)
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}
	locallyDeleted := make(map[uuid.UUID]models.Tombstone, len(localTombstones))
	for _, ts := range localTombstones {
		locallyDeleted[ts.RecordID] = ts
	}

	if err := s.mergePrinters(ctx, remote.Printers, tombstoned, locallyDeleted, summary); err != nil {
		s.recordOutcome(err)
		return nil, err
	}
	if err := s.mergeAssignments(ctx, remote.Assignments, tombstoned, locallyDeleted, summary); err != nil {
		s.recordOutcome(err)
		return nil, err
	}

	s.recordOutcome(nil)
	s.publish(EventSyncCompleted, struct {
		Direction string               `json:"direction"`
		Summary   *models.MergeSummary `json:"summary"`
	}{Direction: "pull", Summary: summary})

	return summary, nil
}

// Status reports the operator-facing sync health
func (s *SyncService) Status(ctx context.Context) (*models.SyncStatus, error) {
	revision, err := s.syncState.Revision(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.SyncStatus{
		TenantID:      s.tenantID,
		LocalRevision: revision,
		LastSyncAt:    s.lastSyncAt,
		LastSyncError: s.lastSyncError,
	}, nil
}

// snapshot copies the current local state; stores stay free for
// concurrent dispatch and routing while the upload runs
func (s *SyncService) snapshot(ctx context.Context) (*models.Snapshot, error) {
	printers, err := s.printers.List(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, err
	}
	tombstones, err := s.syncState.ListTombstones(ctx)
	if err != nil {
		return nil, err
	}
	revision, err := s.syncState.Revision(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Snapshot{
		TenantID:    s.tenantID,
		Revision:    revision,
		GeneratedAt: time.Now(),
		Printers:    printers,
		Assignments: assignments,
		Tombstones:  tombstones,
	}, nil
}

func (s *SyncService) mergePrinters(ctx context.Context, remote []models.PrinterConfiguration, tombstoned map[uuid.UUID]string, locallyDeleted map[uuid.UUID]models.Tombstone, summary *models.MergeSummary) error {
	local, err := s.printers.List(ctx)
	if err != nil {
		return err
	}
	localByID := make(map[uuid.UUID]models.PrinterConfiguration, len(local))
	for _, p := range local {
		localByID[p.ID] = p
	}

	remoteIDs := make(map[uuid.UUID]bool, len(remote))
	for _, rp := range remote {
		remoteIDs[rp.ID] = true

		if ts, ok := locallyDeleted[rp.ID]; ok && ts.Kind == models.TombstonePrinter && ts.DeletedAt.After(rp.UpdatedAt) {
			continue
		}

		existing, present := localByID[rp.ID]
		if !present {
			// Connection status is a local observation, never synced
			rp.ConnectionStatus = models.ConnectionStatusUnknown
			rp.LastConnectedAt = nil
			rp.LastHealthCheckAt = nil
			if _, err := s.printers.Create(ctx, rp); err != nil {
				return err
			}
			summary.PrintersAdded++
			continue
		}

		if rp.UpdatedAt.After(existing.UpdatedAt) {
			rp.ConnectionStatus = existing.ConnectionStatus
			rp.LastConnectedAt = existing.LastConnectedAt
			rp.LastHealthCheckAt = existing.LastHealthCheckAt
			if _, err := s.printers.Update(ctx, rp); err != nil {
				return err
			}
			summary.PrintersUpdated++
		}
	}

	// Local-only entries survive a pull unless explicitly tombstoned
	for _, lp := range local {
		if remoteIDs[lp.ID] {
			continue
		}
		if tombstoned[lp.ID] == models.TombstonePrinter {
			if err := s.printers.Delete(ctx, lp.ID); err != nil {
				return err
			}
			if _, err := s.assignments.DeactivateForPrinter(ctx, lp.ID); err != nil {
				return err
			}
			summary.PrintersRemoved++
		}
	}

	return nil
}

func (s *SyncService) mergeAssignments(ctx context.Context, remote []models.PrinterAssignment, tombstoned map[uuid.UUID]string, locallyDeleted map[uuid.UUID]models.Tombstone, summary *models.MergeSummary) error {
	local, err := s.assignments.List(ctx)
	if err != nil {
		return err
	}
	localByID := make(map[uuid.UUID]models.PrinterAssignment, len(local))
	for _, a := range local {
		localByID[a.ID] = a
	}

	remoteIDs := make(map[uuid.UUID]bool, len(remote))
	for _, ra := range remote {
		remoteIDs[ra.ID] = true

		if ts, ok := locallyDeleted[ra.ID]; ok && ts.Kind == models.TombstoneAssignment && ts.DeletedAt.After(ra.UpdatedAt) {
			continue
		}

		existing, present := localByID[ra.ID]
		if !present {
			if _, err := s.assignments.Create(ctx, ra); err != nil {
				return err
			}
			summary.AssignmentsAdded++
			continue
		}

		if ra.UpdatedAt.After(existing.UpdatedAt) {
			if _, err := s.assignments.Update(ctx, ra); err != nil {
				return err
			}
			summary.AssignmentsUpdated++
		}
	}

	for _, la := range local {
		if remoteIDs[la.ID] {
			continue
		}
		if tombstoned[la.ID] == models.TombstoneAssignment {
			if err := s.assignments.Delete(ctx, la.ID); err != nil {
				return err
			}
			summary.AssignmentsRemoved++
		}
	}

	return nil
}

func (s *SyncService) recordOutcome(err error) {
	now := time.Now()
	s.lastSyncAt = &now
	if err != nil {
		s.lastSyncError = err.Error()
	} else {
		s.lastSyncError = ""
	}
	if s.stats != nil {
		s.stats.SetLastSync(now, err)
	}
}

func (s *SyncService) publish(eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.PublishEvent(eventType, payload)
}
