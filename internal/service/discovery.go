package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/pizza-nz/print-routing-service/internal/models"
)

// DiscoveryConfig controls the discovery sweep
type DiscoveryConfig struct {
	// Subnets to sweep with TCP probes, in CIDR notation
	Subnets []string

	// Ports probed on each host; raw-socket, LPD and IPP by default
	Ports []int

	Workers      int
	ProbeTimeout time.Duration

	// ScanTimeout bounds a whole sweep; the mDNS browse in particular
	// runs until its context expires
	ScanTimeout time.Duration

	EnableMDNS bool

	SNMPEnabled   bool
	SNMPCommunity string
	SNMPTimeout   time.Duration
}

// DiscoveryService sweeps the local network for printers and merges the
// candidates into the registry. Individual transport failures are logged
// and swallowed; a scan fails outright only when every transport errors.
type DiscoveryService struct {
	registry *RegistryService
	cfg      DiscoveryConfig

	// Overridable for tests
	probeFunc    func(ip string, ports []int, timeout time.Duration) []int
	browseFunc   func(ctx context.Context, out chan<- models.DiscoveredPrinter) error
	identifyFunc func(ctx context.Context, ip string) (name string, model string, err error)
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(registry *RegistryService, cfg DiscoveryConfig) *DiscoveryService {
	if len(cfg.Ports) == 0 {
		cfg.Ports = []int{9100, 515, 631}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 32
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 750 * time.Millisecond
	}
	if cfg.SNMPTimeout <= 0 {
		cfg.SNMPTimeout = 2 * time.Second
	}
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 30 * time.Second
	}

	s := &DiscoveryService{
		registry:  registry,
		cfg:       cfg,
		probeFunc: probeTCP,
	}
	s.browseFunc = s.browseMDNS
	s.identifyFunc = s.snmpIdentify
	return s
}

// Scan runs a bounded-time sweep over all enabled transports and merges
// the candidates into the registry. The configured scan timeout bounds
// the sweep; a caller deadline can shorten it further. Partial results
// gathered before cancellation are still merged.
func (s *DiscoveryService) Scan(ctx context.Context) (*models.ScanSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ScanTimeout)
	defer cancel()

	started := time.Now()
	summary := &models.ScanSummary{StartedAt: started}

	candidates := make(chan models.DiscoveredPrinter, 64)

	var transports int
	var failures int
	var mu sync.Mutex
	var wg sync.WaitGroup

	runTransport := func(name string, fn func() error) {
		transports++
		summary.Transports = append(summary.Transports, name)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				log.Printf("Discovery transport %s failed: %v", name, err)
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}()
	}

	if len(s.cfg.Subnets) > 0 {
		runTransport("tcp", func() error { return s.sweepTCP(ctx, candidates) })
	}
	if s.cfg.EnableMDNS {
		runTransport("mdns", func() error { return s.browseFunc(ctx, candidates) })
	}

	if transports == 0 {
		return nil, fmt.Errorf("no discovery transports configured")
	}

	go func() {
		wg.Wait()
		close(candidates)
	}()

	// Merge as candidates arrive so a canceled scan still keeps what it
	// found. Dedupe within the sweep by dial address.
	seen := make(map[string]bool)
	for candidate := range candidates {
		key := net.JoinHostPort(candidate.Address, strconv.Itoa(candidate.Port))
		if seen[key] {
			continue
		}
		seen[key] = true
		summary.Candidates++

		if s.cfg.SNMPEnabled && candidate.Model == nil {
			if name, model, err := s.identifyFunc(ctx, candidate.Address); err == nil {
				if candidate.Name == "" {
					candidate.Name = name
				}
				if model != "" {
					candidate.Model = &model
				}
			}
		}

		created, err := s.registry.MergeDiscovered(ctx, candidate)
		if err != nil {
			log.Printf("Failed to merge discovered printer %s: %v", key, err)
			continue
		}
		if created {
			summary.Added++
		} else {
			summary.Updated++
		}
	}

	if failures == transports {
		return nil, fmt.Errorf("all %d discovery transports failed", transports)
	}

	summary.Duration = time.Since(started).String()
	return summary, nil
}

// sweepTCP expands the configured subnets and probes each host with a
// bounded worker pool
func (s *DiscoveryService) sweepTCP(ctx context.Context, out chan<- models.DiscoveredPrinter) error {
	hosts, err := expandSubnets(s.cfg.Subnets)
	if err != nil {
		return err
	}

	jobs := make(chan string)
	go func() {
		defer close(jobs)
		for _, h := range hosts {
			select {
			case <-ctx.Done():
				return
			case jobs <- h:
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(s.cfg.Workers)
	for i := 0; i < s.cfg.Workers; i++ {
		go func() {
			defer wg.Done()
			for ip := range jobs {
				open := s.probeFunc(ip, s.cfg.Ports, s.cfg.ProbeTimeout)
				if len(open) == 0 {
					continue
				}
				candidate := models.DiscoveredPrinter{
					Address: ip,
					Port:    open[0],
					Source:  "tcp",
				}
				select {
				case <-ctx.Done():
					return
				case out <- candidate:
				}
			}
		}()
	}
	wg.Wait()

	return nil
}

// probeTCP tries to connect to the given ports and returns those that
// accepted a connection
func probeTCP(ip string, ports []int, timeout time.Duration) []int {
	var open []int
	for _, p := range ports {
		addr := net.JoinHostPort(ip, strconv.Itoa(p))
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			// closed or filtered
			continue
		}
		conn.Close()
		open = append(open, p)
	}
	return open
}

// expandSubnets turns CIDR blocks into host addresses, skipping network
// and broadcast addresses. Blocks wider than /16 are rejected to keep a
// sweep bounded.
func expandSubnets(subnets []string) ([]string, error) {
	var hosts []string
	for _, cidr := range subnets {
		ip, ipnet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid subnet %q: %w", cidr, err)
		}
		ones, bits := ipnet.Mask.Size()
		if bits-ones > 16 {
			return nil, fmt.Errorf("subnet %q too large to sweep", cidr)
		}

		var block []string
		for addr := ip.Mask(ipnet.Mask); ipnet.Contains(addr); addr = nextIP(addr) {
			block = append(block, addr.String())
		}
		if len(block) > 2 {
			// drop network and broadcast addresses
			block = block[1 : len(block)-1]
		}
		hosts = append(hosts, block...)
	}
	return hosts, nil
}

func nextIP(ip net.IP) net.IP {
	next := make(net.IP, len(ip))
	copy(next, ip)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	return next
}
