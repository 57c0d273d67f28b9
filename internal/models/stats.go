package models

import "time"

// FleetStatistics is a point-in-time snapshot of fleet and dispatch
// counters for the statistics UI
type FleetStatistics struct {
	TotalPrinters     int `json:"total_printers"`
	ActivePrinters    int `json:"active_printers"`
	ConnectedPrinters int `json:"connected_printers"`
	TotalAssignments  int `json:"total_assignments"`
	ActiveAssignments int `json:"active_assignments"`

	TicketsDispatched int64 `json:"tickets_dispatched"`
	AttemptsSucceeded int64 `json:"attempts_succeeded"`
	AttemptsFailed    int64 `json:"attempts_failed"`

	// SuccessRate is succeeded / (succeeded + failed); zero when no
	// attempts have been made
	SuccessRate float64 `json:"success_rate"`

	LastSyncAt    *time.Time `json:"last_sync_at"`
	LastSyncError string     `json:"last_sync_error,omitempty"`
	GeneratedAt   time.Time  `json:"generated_at"`
}
