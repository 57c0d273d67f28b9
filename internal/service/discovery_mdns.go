package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/pizza-nz/print-routing-service/internal/models"
)

// mDNS/DNS-SD service types advertised by network printers
var mdnsServiceTypes = []string{"_ipp._tcp", "_printer._tcp", "_pdl-datastream._tcp"}

// browseMDNS browses the common printer service types and emits one
// candidate per advertised IPv4 address. It returns only after every
// browse has delivered its answers, so the caller can treat its return
// as end-of-transport; the scan consumer de-duplicates addresses.
func (s *DiscoveryService) browseMDNS(ctx context.Context, out chan<- models.DiscoveredPrinter) error {
	var wg sync.WaitGroup
	errs := make(chan error, len(mdnsServiceTypes))

	for _, svcType := range mdnsServiceTypes {
		wg.Add(1)
		go func(svcType string) {
			defer wg.Done()

			resolver, err := zeroconf.NewResolver(nil)
			if err != nil {
				errs <- fmt.Errorf("mdns resolver: %w", err)
				return
			}

			// Browse returns as soon as the query is sent; answers keep
			// arriving on entries until the resolver closes it at context
			// deadline. Consume to the end of the channel so this
			// goroutine is only done once every delivery happened.
			entries := make(chan *zeroconf.ServiceEntry)
			if err := resolver.Browse(ctx, svcType, "local.", entries); err != nil {
				errs <- fmt.Errorf("mdns browse %s: %w", svcType, err)
				return
			}
			forwardMDNSEntries(ctx, entries, out)
		}(svcType)
	}

	wg.Wait()
	close(errs)

	// The sweep succeeds if any service type browsed cleanly
	var lastErr error
	var failed int
	for err := range errs {
		failed++
		lastErr = err
	}
	if failed == len(mdnsServiceTypes) {
		return lastErr
	}
	return nil
}

// forwardMDNSEntries converts service entries into discovery candidates.
// It returns only when entries is closed; after the context is done it
// keeps draining entries without emitting, so the resolver can shut down.
func forwardMDNSEntries(ctx context.Context, entries <-chan *zeroconf.ServiceEntry, out chan<- models.DiscoveredPrinter) {
	for e := range entries {
		for _, ip := range e.AddrIPv4 {
			candidate := models.DiscoveredPrinter{
				Name:    e.Instance,
				Address: ip.String(),
				Port:    e.Port,
				Source:  "mdns",
			}
			select {
			case <-ctx.Done():
			case out <- candidate:
			}
		}
	}
}
