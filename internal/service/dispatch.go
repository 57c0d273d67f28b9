package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/models"
	"github.com/pizza-nz/print-routing-service/internal/transport"
)

// DispatchConfig bounds retries and the overall dispatch deadline
type DispatchConfig struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

// DispatchService sends resolved tickets to printers. Fan-out to N
// printers runs in parallel; one slow or unreachable printer never stalls
// delivery to the rest, and retry accounting is independent per printer.
type DispatchService struct {
	printers  PrinterStore
	resolver  *ResolverService
	transport transport.Transport
	stats     *StatsService
	events    EventPublisher
	cfg       DispatchConfig
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(printers PrinterStore, resolver *ResolverService, tr transport.Transport, stats *StatsService, events EventPublisher, cfg DispatchConfig) *DispatchService {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 250 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &DispatchService{
		printers:  printers,
		resolver:  resolver,
		transport: tr,
		stats:     stats,
		events:    events,
		cfg:       cfg,
	}
}

// Dispatch sends one ticket to every listed printer in parallel. It never
// fails as a whole: the report always carries one outcome per printer and
// the caller decides whether partial failure needs an operator alert.
func (s *DispatchService) Dispatch(ctx context.Context, ticket models.Ticket, printerIDs []uuid.UUID) *models.DispatchReport {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	outcomes := make([]models.PrinterOutcome, len(printerIDs))

	var wg sync.WaitGroup
	wg.Add(len(printerIDs))
	for i, id := range printerIDs {
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			outcomes[i] = s.sendToPrinter(ctx, id, ticket)
		}(i, id)
	}
	wg.Wait()

	if len(printerIDs) > 0 {
		s.stats.IncTicketsDispatched()
	}

	report := &models.DispatchReport{PerPrinter: outcomes}
	s.publish(EventDispatchReport, report)

	return report
}

// PrintOrder resolves every item of an order, groups items per printer
// and dispatches one ticket per printer in parallel. Items no printer
// matched are returned as unrouted so the caller can apply its fallback.
func (s *DispatchService) PrintOrder(ctx context.Context, order *models.Order) (*models.OrderPrintReport, error) {
	report := &models.OrderPrintReport{OrderNumber: order.OrderNumber}

	itemsByPrinter := make(map[uuid.UUID][]models.OrderItem)
	for _, item := range order.Items {
		resolution, err := s.resolver.Resolve(ctx, item)
		if err != nil {
			return nil, err
		}
		report.Warnings = append(report.Warnings, resolution.Warnings...)
		if resolution.Unrouted {
			report.UnroutedItems = append(report.UnroutedItems, item)
			continue
		}
		for _, printerID := range resolution.PrinterIDs {
			itemsByPrinter[printerID] = append(itemsByPrinter[printerID], item)
		}
	}

	if len(itemsByPrinter) == 0 {
		return report, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	printerIDs := make([]uuid.UUID, 0, len(itemsByPrinter))
	for id := range itemsByPrinter {
		printerIDs = append(printerIDs, id)
	}
	sort.Slice(printerIDs, func(i, j int) bool {
		return printerIDs[i].String() < printerIDs[j].String()
	})

	outcomes := make([]models.PrinterOutcome, len(printerIDs))

	var wg sync.WaitGroup
	wg.Add(len(printerIDs))
	for i, id := range printerIDs {
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			ticket := RenderTicket(order, itemsByPrinter[id])
			outcomes[i] = s.sendToPrinter(ctx, id, ticket)
		}(i, id)
	}
	wg.Wait()

	s.stats.IncTicketsDispatched()

	report.PerPrinter = outcomes
	s.publish(EventDispatchReport, report)

	return report, nil
}

// sendToPrinter delivers one ticket to one printer with bounded retries.
// Every attempt, success or failure, is counted in the fleet statistics.
func (s *DispatchService) sendToPrinter(ctx context.Context, printerID uuid.UUID, ticket models.Ticket) models.PrinterOutcome {
	outcome := models.PrinterOutcome{PrinterID: printerID}

	printer, err := s.printers.GetByID(ctx, printerID)
	if err != nil || printer == nil {
		outcome.Outcome = models.OutcomeSkipped
		outcome.Error = "printer not found"
		return outcome
	}

	addr := printer.DialAddress()
	var lastErr error

	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				outcome.Outcome = models.OutcomeFailed
				outcome.Error = ctx.Err().Error()
				return outcome
			case <-time.After(s.cfg.RetryBackoff):
			}
		}

		outcome.Attempts++
		err := s.transport.Send(ctx, addr, []byte(ticket.Body))
		if err == nil {
			s.stats.IncAttemptSucceeded()
			outcome.Outcome = models.OutcomeSucceeded
			return outcome
		}

		s.stats.IncAttemptFailed()
		lastErr = err

		// Only transport errors are worth retrying; anything else
		// (cancellation, closed engine) fails immediately.
		var terr *transport.Error
		if !errors.As(err, &terr) {
			break
		}
		log.Printf("Dispatch attempt %d to %s (%s) failed: %v", attempt+1, printer.Name, addr, err)
	}

	outcome.Outcome = models.OutcomeFailed
	if lastErr != nil {
		outcome.Error = lastErr.Error()
	}
	return outcome
}

func (s *DispatchService) publish(eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.PublishEvent(eventType, payload)
}
