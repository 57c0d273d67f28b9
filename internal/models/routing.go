package models

import "github.com/google/uuid"

// Routing warning reasons
const (
	WarnPrinterMissing      = "printer_missing"
	WarnPrinterInactive     = "printer_inactive"
	WarnPrinterDisconnected = "printer_disconnected"
)

// RoutingWarning records a printer that matched an assignment but was
// excluded from the routing result
type RoutingWarning struct {
	PrinterID    uuid.UUID `json:"printer_id"`
	AssignmentID uuid.UUID `json:"assignment_id"`
	Reason       string    `json:"reason"`
}

// Resolution is the outcome of routing one order item. Unrouted is a
// signal, not an error: no active, connected printer matched the item and
// the caller owns the fallback policy.
type Resolution struct {
	PrinterIDs []uuid.UUID      `json:"printer_ids"`
	Warnings   []RoutingWarning `json:"warnings,omitempty"`
	Unrouted   bool             `json:"unrouted"`
}

// DispatchOutcome is the final per-printer result of a dispatch
type DispatchOutcome string

const (
	OutcomeSucceeded DispatchOutcome = "succeeded"
	OutcomeFailed    DispatchOutcome = "failed"
	OutcomeSkipped   DispatchOutcome = "skipped"
)

// PrinterOutcome reports the result of sending one ticket to one printer
type PrinterOutcome struct {
	PrinterID uuid.UUID       `json:"printer_id"`
	Outcome   DispatchOutcome `json:"outcome"`
	Attempts  int             `json:"attempts"`
	Error     string          `json:"error,omitempty"`
}

// DispatchReport aggregates per-printer outcomes for one ticket. Dispatch
// never fails as a whole; partial failure is the expected case in a
// multi-printer fleet and callers decide whether it needs an alert.
type DispatchReport struct {
	PerPrinter []PrinterOutcome `json:"per_printer"`
}

// Failed reports whether any printer outcome is a failure
func (r *DispatchReport) Failed() bool {
	for _, o := range r.PerPrinter {
		if o.Outcome != OutcomeSucceeded {
			return true
		}
	}
	return false
}

// OrderPrintReport is the result of routing and printing a whole order
type OrderPrintReport struct {
	OrderNumber   string           `json:"order_number"`
	PerPrinter    []PrinterOutcome `json:"per_printer"`
	Warnings      []RoutingWarning `json:"warnings,omitempty"`
	UnroutedItems []OrderItem      `json:"unrouted_items,omitempty"`
}
