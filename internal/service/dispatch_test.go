package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/models"
	"github.com/pizza-nz/print-routing-service/internal/transport"
)

func testDispatchConfig() DispatchConfig {
	return DispatchConfig{
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		Timeout:      5 * time.Second,
	}
}

func transportErr(addr string) *transport.Error {
	return &transport.Error{Kind: transport.ErrTimeout, Addr: addr, Err: errors.New("i/o timeout")}
}

func TestDispatchFanOutIsolation(t *testing.T) {
	good := connectedPrinter("kitchen")
	bad := connectedPrinter("bar")
	bad.Address = "192.0.2.99"

	printers := newFakePrinterStore(good, bad)
	tr := newFakeTransport()
	badAddr := bad.DialAddress()
	tr.failNext(badAddr, transportErr(badAddr), transportErr(badAddr), transportErr(badAddr))

	stats := NewStatsService(printers, newFakeAssignmentStore())
	d := NewDispatchService(printers, nil, tr, stats, nil, testDispatchConfig())

	report := d.Dispatch(context.Background(), RenderTestTicket("x"), []uuid.UUID{good.ID, bad.ID})

	if len(report.PerPrinter) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(report.PerPrinter))
	}
	byID := make(map[uuid.UUID]models.PrinterOutcome)
	for _, o := range report.PerPrinter {
		byID[o.PrinterID] = o
	}
	if byID[good.ID].Outcome != models.OutcomeSucceeded {
		t.Fatalf("healthy printer should succeed, got %s", byID[good.ID].Outcome)
	}
	if byID[bad.ID].Outcome != models.OutcomeFailed {
		t.Fatalf("unreachable printer should fail, got %s", byID[bad.ID].Outcome)
	}
	if byID[bad.ID].Attempts != 3 {
		t.Fatalf("expected 3 attempts against unreachable printer, got %d", byID[bad.ID].Attempts)
	}
	if !report.Failed() {
		t.Fatalf("report should flag partial failure")
	}
}

func TestDispatchRetryThenSuccessAccounting(t *testing.T) {
	printer := connectedPrinter("kitchen")
	printers := newFakePrinterStore(printer)
	tr := newFakeTransport()
	addr := printer.DialAddress()
	// First two attempts time out, third succeeds
	tr.failNext(addr, transportErr(addr), transportErr(addr))

	stats := NewStatsService(printers, newFakeAssignmentStore())
	d := NewDispatchService(printers, nil, tr, stats, nil, testDispatchConfig())

	report := d.Dispatch(context.Background(), RenderTestTicket("x"), []uuid.UUID{printer.ID})

	o := report.PerPrinter[0]
	if o.Outcome != models.OutcomeSucceeded {
		t.Fatalf("expected success after retries, got %s (%s)", o.Outcome, o.Error)
	}
	if o.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", o.Attempts)
	}

	snap, err := stats.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.TicketsDispatched != 1 {
		t.Fatalf("expected 1 ticket dispatched, got %d", snap.TicketsDispatched)
	}
	if snap.AttemptsSucceeded != 1 || snap.AttemptsFailed != 2 {
		t.Fatalf("expected 1 success / 2 failures, got %d / %d", snap.AttemptsSucceeded, snap.AttemptsFailed)
	}
}

func TestDispatchNonTransportErrorNotRetried(t *testing.T) {
	printer := connectedPrinter("kitchen")
	printers := newFakePrinterStore(printer)
	tr := newFakeTransport()
	addr := printer.DialAddress()
	tr.failNext(addr, errors.New("engine closed"))

	stats := NewStatsService(printers, newFakeAssignmentStore())
	d := NewDispatchService(printers, nil, tr, stats, nil, testDispatchConfig())

	report := d.Dispatch(context.Background(), RenderTestTicket("x"), []uuid.UUID{printer.ID})

	o := report.PerPrinter[0]
	if o.Outcome != models.OutcomeFailed {
		t.Fatalf("expected failure, got %s", o.Outcome)
	}
	if o.Attempts != 1 {
		t.Fatalf("non-transport error must not be retried, got %d attempts", o.Attempts)
	}
}

func TestDispatchUnknownPrinterSkipped(t *testing.T) {
	printers := newFakePrinterStore()
	stats := NewStatsService(printers, newFakeAssignmentStore())
	d := NewDispatchService(printers, nil, newFakeTransport(), stats, nil, testDispatchConfig())

	report := d.Dispatch(context.Background(), RenderTestTicket("x"), []uuid.UUID{uuid.New()})

	if report.PerPrinter[0].Outcome != models.OutcomeSkipped {
		t.Fatalf("expected skipped outcome, got %s", report.PerPrinter[0].Outcome)
	}
}

func TestPrintOrderGroupsItemsPerPrinter(t *testing.T) {
	kitchen := connectedPrinter("kitchen")
	bar := connectedPrinter("bar")
	bar.Address = "192.0.2.20"

	foodCategory := uuid.New()
	drinksCategory := uuid.New()

	assignments := newFakeAssignmentStore(
		models.PrinterAssignment{
			ID: uuid.New(), PrinterID: kitchen.ID,
			Type: models.AssignmentTypeCategory, TargetID: foodCategory, IsActive: true,
		},
		models.PrinterAssignment{
			ID: uuid.New(), PrinterID: bar.ID,
			Type: models.AssignmentTypeCategory, TargetID: drinksCategory, IsActive: true,
		},
	)
	printers := newFakePrinterStore(kitchen, bar)
	tr := newFakeTransport()
	stats := NewStatsService(printers, assignments)
	events := &fakeEvents{}

	resolver := NewResolverService(assignments, printers)
	d := NewDispatchService(printers, resolver, tr, stats, events, testDispatchConfig())

	order := &models.Order{
		OrderNumber: "A-17",
		PlacedAt:    time.Now(),
		Items: []models.OrderItem{
			{MenuItemID: uuid.New(), CategoryID: foodCategory, Name: "Margherita", Quantity: 2},
			{MenuItemID: uuid.New(), CategoryID: foodCategory, Name: "Calzone", Quantity: 1},
			{MenuItemID: uuid.New(), CategoryID: drinksCategory, Name: "Lemonade", Quantity: 3},
			{MenuItemID: uuid.New(), CategoryID: uuid.New(), Name: "Mystery", Quantity: 1},
		},
	}

	report, err := d.PrintOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("PrintOrder failed: %v", err)
	}

	if len(report.PerPrinter) != 2 {
		t.Fatalf("expected 2 printer outcomes, got %d", len(report.PerPrinter))
	}
	for _, o := range report.PerPrinter {
		if o.Outcome != models.OutcomeSucceeded {
			t.Fatalf("printer %s: unexpected outcome %s (%s)", o.PrinterID, o.Outcome, o.Error)
		}
	}
	if len(report.UnroutedItems) != 1 || report.UnroutedItems[0].Name != "Mystery" {
		t.Fatalf("expected Mystery to be unrouted, got %v", report.UnroutedItems)
	}

	kitchenTickets := tr.sentTo(kitchen.DialAddress())
	if len(kitchenTickets) != 1 {
		t.Fatalf("expected one ticket to kitchen, got %d", len(kitchenTickets))
	}
	body := kitchenTickets[0].Body
	if !strings.Contains(body, "2x Margherita") || !strings.Contains(body, "1x Calzone") {
		t.Fatalf("kitchen ticket missing items:\n%s", body)
	}
	if strings.Contains(body, "Lemonade") {
		t.Fatalf("kitchen ticket should not carry bar items:\n%s", body)
	}

	barTickets := tr.sentTo(bar.DialAddress())
	if len(barTickets) != 1 || !strings.Contains(barTickets[0].Body, "3x Lemonade") {
		t.Fatalf("bar ticket wrong: %v", barTickets)
	}

	if got := events.byType(EventDispatchReport); len(got) != 1 {
		t.Fatalf("expected one dispatch report event, got %d", len(got))
	}
}

func TestPrintOrderAllUnrouted(t *testing.T) {
	printers := newFakePrinterStore()
	assignments := newFakeAssignmentStore()
	stats := NewStatsService(printers, assignments)
	resolver := NewResolverService(assignments, printers)
	d := NewDispatchService(printers, resolver, newFakeTransport(), stats, nil, testDispatchConfig())

	order := &models.Order{
		OrderNumber: "A-18",
		PlacedAt:    time.Now(),
		Items:       []models.OrderItem{{MenuItemID: uuid.New(), CategoryID: uuid.New(), Name: "Ghost", Quantity: 1}},
	}

	report, err := d.PrintOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("PrintOrder failed: %v", err)
	}
	if len(report.PerPrinter) != 0 {
		t.Fatalf("no printers should be addressed, got %v", report.PerPrinter)
	}
	if len(report.UnroutedItems) != 1 {
		t.Fatalf("expected 1 unrouted item, got %d", len(report.UnroutedItems))
	}

	snap, _ := stats.Snapshot(context.Background())
	if snap.TicketsDispatched != 0 {
		t.Fatalf("fully unrouted order must not count as dispatched")
	}
}
