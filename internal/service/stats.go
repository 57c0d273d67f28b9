package service

import (
	"context"
	"sync"
	"time"

	"github.com/pizza-nz/print-routing-service/internal/models"
)

// StatsService holds fleet and dispatch counters. Counter updates are
// atomic relative to concurrent dispatches; the derived fleet counts are
// read from the stores at snapshot time.
type StatsService struct {
	printers    PrinterStore
	assignments AssignmentStore

	mu                sync.Mutex
	ticketsDispatched int64
	attemptsSucceeded int64
	attemptsFailed    int64
	lastSyncAt        *time.Time
	lastSyncError     string
}

// NewStatsService creates a new statistics service
func NewStatsService(printers PrinterStore, assignments AssignmentStore) *StatsService {
	return &StatsService{
		printers:    printers,
		assignments: assignments,
	}
}

// IncTicketsDispatched records one dispatched ticket
func (s *StatsService) IncTicketsDispatched() {
	s.mu.Lock()
	s.ticketsDispatched++
	s.mu.Unlock()
}

// IncAttemptSucceeded records one successful send attempt
func (s *StatsService) IncAttemptSucceeded() {
	s.mu.Lock()
	s.attemptsSucceeded++
	s.mu.Unlock()
}

// IncAttemptFailed records one failed send attempt
func (s *StatsService) IncAttemptFailed() {
	s.mu.Lock()
	s.attemptsFailed++
	s.mu.Unlock()
}

// SetLastSync records the outcome of the most recent cloud sync
func (s *StatsService) SetLastSync(at time.Time, err error) {
	s.mu.Lock()
	s.lastSyncAt = &at
	if err != nil {
		s.lastSyncError = err.Error()
	} else {
		s.lastSyncError = ""
	}
	s.mu.Unlock()
}

// Snapshot assembles the fleet statistics for the analytics UI
func (s *StatsService) Snapshot(ctx context.Context) (*models.FleetStatistics, error) {
	printers, err := s.printers.List(ctx)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.FleetStatistics{
		TotalPrinters:    len(printers),
		TotalAssignments: len(assignments),
		GeneratedAt:      time.Now(),
	}
	for _, p := range printers {
		if p.IsActive {
			stats.ActivePrinters++
		}
		if p.ConnectionStatus == models.ConnectionStatusConnected {
			stats.ConnectedPrinters++
		}
	}
	for _, a := range assignments {
		if a.IsActive {
			stats.ActiveAssignments++
		}
	}

	s.mu.Lock()
	stats.TicketsDispatched = s.ticketsDispatched
	stats.AttemptsSucceeded = s.attemptsSucceeded
	stats.AttemptsFailed = s.attemptsFailed
	stats.LastSyncAt = s.lastSyncAt
	stats.LastSyncError = s.lastSyncError
	s.mu.Unlock()

	if total := stats.AttemptsSucceeded + stats.AttemptsFailed; total > 0 {
		stats.SuccessRate = float64(stats.AttemptsSucceeded) / float64(total)
	}

	return stats, nil
}
