package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pizza-nz/print-routing-service/internal/api/handler"
	"github.com/pizza-nz/print-routing-service/internal/cloud"
	"github.com/pizza-nz/print-routing-service/internal/config"
	"github.com/pizza-nz/print-routing-service/internal/db"
	"github.com/pizza-nz/print-routing-service/internal/db/repository"
	"github.com/pizza-nz/print-routing-service/internal/router"
	"github.com/pizza-nz/print-routing-service/internal/service"
	"github.com/pizza-nz/print-routing-service/internal/transport"
	"github.com/pizza-nz/print-routing-service/internal/websockets"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	database, err := db.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run database migrations
	if err := database.Migrate(cfg.Database); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	repos := repository.NewRepositories(database)

	// Initialize WebSocket hub
	hub := websockets.NewHub()
	go hub.Run()

	// Background workers stop when this context is cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	stats := service.NewStatsService(repos.Printer, repos.Assignment)
	printerTransport := transport.NewTCP()

	registry := service.NewRegistryService(repos.Printer, repos.Assignment, repos.Sync, hub)

	// The menu catalog lives in the POS; target names are supplied by
	// sync or left blank when no catalog lookup is wired
	assignments := service.NewAssignmentService(repos.Assignment, repos.Printer, nil, repos.Sync)

	resolver := service.NewResolverService(repos.Assignment, repos.Printer)

	dispatch := service.NewDispatchService(repos.Printer, resolver, printerTransport, stats, hub, service.DispatchConfig{
		MaxRetries:   cfg.Dispatch.MaxRetries,
		RetryBackoff: cfg.Dispatch.RetryBackoffDuration(),
		Timeout:      cfg.Dispatch.TimeoutDuration(),
	})

	discovery := service.NewDiscoveryService(registry, service.DiscoveryConfig{
		Subnets:       cfg.Discovery.Subnets,
		Ports:         cfg.Discovery.Ports,
		Workers:       cfg.Discovery.Workers,
		ProbeTimeout:  cfg.Discovery.ProbeTimeoutDuration(),
		ScanTimeout:   cfg.Discovery.ScanTimeoutDuration(),
		EnableMDNS:    cfg.Discovery.MDNS,
		SNMPEnabled:   cfg.Discovery.SNMP.Enabled,
		SNMPCommunity: cfg.Discovery.SNMP.Community,
		SNMPTimeout:   time.Duration(cfg.Discovery.SNMP.Timeout) * time.Second,
	})

	monitor := service.NewConnectionMonitor(registry, printerTransport, service.MonitorConfig{
		Interval: cfg.Monitor.IntervalDuration(),
		Timeout:  cfg.Monitor.TimeoutDuration(),
	})
	go monitor.Run(ctx)

	var syncService *service.SyncService
	if cfg.Cloud.Enabled {
		remote := cloud.NewClient(cfg.Cloud.BaseURL, cfg.Cloud.APIKey, cfg.Tenant.ID, cfg.Cloud.TimeoutDuration())
		syncService = service.NewSyncService(cfg.Tenant.ID, repos.Printer, repos.Assignment, repos.Sync,
			remote, stats, hub, cfg.Cloud.SyncIntervalDuration())
		go syncService.Run(ctx)
	}

	auth := service.NewAuthService(cfg.Auth)

	// Initialize router
	r := router.New(router.Handlers{
		Printer:    handler.NewPrinterHandler(registry, dispatch),
		Assignment: handler.NewAssignmentHandler(assignments),
		Order:      handler.NewOrderHandler(dispatch),
		Discovery:  handler.NewDiscoveryHandler(discovery),
		Sync:       handler.NewSyncHandler(syncService),
		Stats:      handler.NewStatsHandler(stats),
	}, auth, hub)

	// Create HTTP server
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop background workers before draining requests
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
