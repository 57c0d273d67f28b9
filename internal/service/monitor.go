package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/pizza-nz/print-routing-service/internal/models"
	"github.com/pizza-nz/print-routing-service/internal/transport"
)

// MonitorConfig controls probe cadence
type MonitorConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// ConnectionMonitor probes every registered printer on a fixed interval
// and writes the observed status back through the registry. Readers see
// eventually-consistent status; staleness is bounded by the interval.
type ConnectionMonitor struct {
	registry *RegistryService
	prober   transport.Transport
	cfg      MonitorConfig
}

// NewConnectionMonitor creates a new connection monitor
func NewConnectionMonitor(registry *RegistryService, prober transport.Transport, cfg MonitorConfig) *ConnectionMonitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &ConnectionMonitor{
		registry: registry,
		prober:   prober,
		cfg:      cfg,
	}
}

// Run probes all printers immediately and then on every tick until the
// context is canceled
func (m *ConnectionMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.ProbeAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.ProbeAll(ctx)
		}
	}
}

// ProbeAll probes every registered printer, one goroutine per printer
func (m *ConnectionMonitor) ProbeAll(ctx context.Context) {
	printers, err := m.registry.GetPrinters(ctx)
	if err != nil {
		log.Printf("Connection monitor failed to list printers: %v", err)
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(printers))
	for _, p := range printers {
		go func(p models.PrinterConfiguration) {
			defer wg.Done()
			m.probeOne(ctx, p)
		}(p)
	}
	wg.Wait()
}

// probeOne runs one reachability probe and records the status transition
func (m *ConnectionMonitor) probeOne(ctx context.Context, p models.PrinterConfiguration) {
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	status := classifyProbe(m.prober.Probe(probeCtx, p.DialAddress()))

	if status == p.ConnectionStatus && p.LastHealthCheckAt != nil {
		// Still record the health check time so staleness is observable
		if err := m.registry.SetConnectionStatus(ctx, p.ID, status); err != nil {
			log.Printf("Failed to record status for %s: %v", p.Name, err)
		}
		return
	}

	if err := m.registry.SetConnectionStatus(ctx, p.ID, status); err != nil {
		log.Printf("Failed to update status for %s: %v", p.Name, err)
		return
	}

	if status != p.ConnectionStatus {
		log.Printf("Printer %s: %s -> %s", p.Name, p.ConnectionStatus, status)
	}
}

// classifyProbe maps a probe result onto the connection state machine:
// a clean probe is connected (recovering even from the error state), a
// refused or timed-out probe is disconnected, and a protocol-level
// failure is the error state.
func classifyProbe(err error) models.ConnectionStatus {
	if err == nil {
		return models.ConnectionStatusConnected
	}

	var terr *transport.Error
	if errors.As(err, &terr) && terr.Kind == transport.ErrProtocol {
		return models.ConnectionStatusError
	}

	return models.ConnectionStatusDisconnected
}
