package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pizza-nz/print-routing-service/internal/models"
)

// In-memory store fakes backing the service tests. They mirror the
// postgres repositories' contract: sentinel errors on misses and
// duplicates, Go-side timestamp defaults, status writes not touching
// updated_at.

type fakePrinterStore struct {
	mu       sync.Mutex
	printers map[uuid.UUID]models.PrinterConfiguration
}

func newFakePrinterStore(printers ...models.PrinterConfiguration) *fakePrinterStore {
	s := &fakePrinterStore{printers: make(map[uuid.UUID]models.PrinterConfiguration)}
	for _, p := range printers {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		s.printers[p.ID] = p
	}
	return s
}

func (s *fakePrinterStore) GetByID(ctx context.Context, id uuid.UUID) (*models.PrinterConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.printers[id]
	if !ok {
		return nil, fmt.Errorf("printer %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (s *fakePrinterStore) GetByAddress(ctx context.Context, address string, port int) (*models.PrinterConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.printers {
		if p.Address == address && p.Port == port {
			p := p
			return &p, nil
		}
	}
	return nil, fmt.Errorf("printer at %s:%d: %w", address, port, models.ErrNotFound)
}

func (s *fakePrinterStore) List(ctx context.Context) ([]models.PrinterConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PrinterConfiguration, 0, len(s.printers))
	for _, p := range s.printers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *fakePrinterStore) ListActive(ctx context.Context) ([]models.PrinterConfiguration, error) {
	all, _ := s.List(ctx)
	out := all[:0]
	for _, p := range all {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePrinterStore) Create(ctx context.Context, p models.PrinterConfiguration) (*models.PrinterConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.printers[p.ID]; exists {
		return nil, fmt.Errorf("printer %s: %w", p.ID, models.ErrDuplicateID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	s.printers[p.ID] = p
	return &p, nil
}

func (s *fakePrinterStore) Update(ctx context.Context, p models.PrinterConfiguration) (*models.PrinterConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.printers[p.ID]
	if !ok {
		return nil, fmt.Errorf("printer %s: %w", p.ID, models.ErrNotFound)
	}
	p.CreatedAt = existing.CreatedAt
	if p.UpdatedAt.Equal(existing.UpdatedAt) || p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	s.printers[p.ID] = p
	return &p, nil
}

func (s *fakePrinterStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ConnectionStatus, checkedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.printers[id]
	if !ok {
		return fmt.Errorf("printer %s: %w", id, models.ErrNotFound)
	}
	p.ConnectionStatus = status
	p.LastHealthCheckAt = &checkedAt
	if status == models.ConnectionStatusConnected {
		p.LastConnectedAt = &checkedAt
	}
	s.printers[id] = p
	return nil
}

func (s *fakePrinterStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.printers[id]; !ok {
		return fmt.Errorf("printer %s: %w", id, models.ErrNotFound)
	}
	delete(s.printers, id)
	return nil
}

type fakeAssignmentStore struct {
	mu          sync.Mutex
	assignments map[uuid.UUID]models.PrinterAssignment
}

func newFakeAssignmentStore(assignments ...models.PrinterAssignment) *fakeAssignmentStore {
	s := &fakeAssignmentStore{assignments: make(map[uuid.UUID]models.PrinterAssignment)}
	for _, a := range assignments {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = a.CreatedAt
		}
		s.assignments[a.ID] = a
	}
	return s
}

func (s *fakeAssignmentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.PrinterAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", id, models.ErrNotFound)
	}
	return &a, nil
}

func (s *fakeAssignmentStore) List(ctx context.Context) ([]models.PrinterAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PrinterAssignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *fakeAssignmentStore) ListByPrinter(ctx context.Context, printerID uuid.UUID) ([]models.PrinterAssignment, error) {
	all, _ := s.List(ctx)
	var out []models.PrinterAssignment
	for _, a := range all {
		if a.PrinterID == printerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAssignmentStore) ListActiveForTarget(ctx context.Context, t models.AssignmentType, targetID uuid.UUID) ([]models.PrinterAssignment, error) {
	all, _ := s.List(ctx)
	var out []models.PrinterAssignment
	for _, a := range all {
		if a.IsActive && a.Type == t && a.TargetID == targetID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAssignmentStore) FindActive(ctx context.Context, printerID uuid.UUID, t models.AssignmentType, targetID uuid.UUID) (*models.PrinterAssignment, error) {
	all, _ := s.List(ctx)
	for _, a := range all {
		if a.IsActive && a.PrinterID == printerID && a.Type == t && a.TargetID == targetID {
			a := a
			return &a, nil
		}
	}
	return nil, fmt.Errorf("active assignment: %w", models.ErrNotFound)
}

func (s *fakeAssignmentStore) Create(ctx context.Context, a models.PrinterAssignment) (*models.PrinterAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assignments[a.ID]; exists {
		return nil, fmt.Errorf("assignment %s: %w", a.ID, models.ErrDuplicateID)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	s.assignments[a.ID] = a
	return &a, nil
}

func (s *fakeAssignmentStore) Update(ctx context.Context, a models.PrinterAssignment) (*models.PrinterAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.assignments[a.ID]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", a.ID, models.ErrNotFound)
	}
	a.CreatedAt = existing.CreatedAt
	if a.UpdatedAt.Equal(existing.UpdatedAt) || a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now()
	}
	s.assignments[a.ID] = a
	return &a, nil
}

func (s *fakeAssignmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[id]; !ok {
		return fmt.Errorf("assignment %s: %w", id, models.ErrNotFound)
	}
	delete(s.assignments, id)
	return nil
}

func (s *fakeAssignmentStore) DeactivateForPrinter(ctx context.Context, printerID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, a := range s.assignments {
		if a.PrinterID == printerID && a.IsActive {
			a.IsActive = false
			s.assignments[id] = a
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeSyncState struct {
	mu         sync.Mutex
	revision   int64
	tombstones []models.Tombstone
}

func (s *fakeSyncState) BumpRevision(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revision++
	return s.revision, nil
}

func (s *fakeSyncState) Revision(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision, nil
}

func (s *fakeSyncState) RecordTombstone(ctx context.Context, ts models.Tombstone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tombstones = append(s.tombstones, ts)
	return nil
}

func (s *fakeSyncState) ListTombstones(ctx context.Context) ([]models.Tombstone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Tombstone(nil), s.tombstones...), nil
}

type fakeCatalog struct {
	names map[uuid.UUID]string
	err   error
}

func (c *fakeCatalog) TargetName(ctx context.Context, t models.AssignmentType, targetID uuid.UUID) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.names[targetID], nil
}

type publishedEvent struct {
	Type    string
	Payload interface{}
}

type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (e *fakeEvents) PublishEvent(eventType string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, publishedEvent{Type: eventType, Payload: payload})
}

func (e *fakeEvents) byType(eventType string) []publishedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []publishedEvent
	for _, ev := range e.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type sentTicket struct {
	Addr string
	Body string
}

// fakeTransport scripts per-address failures: each Send pops the next
// error for its address, succeeding once the script runs out.
type fakeTransport struct {
	mu        sync.Mutex
	sendErrs  map[string][]error
	probeErrs map[string]error
	sent      []sentTicket
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sendErrs:  make(map[string][]error),
		probeErrs: make(map[string]error),
	}
}

func (t *fakeTransport) failNext(addr string, errs ...error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErrs[addr] = append(t.sendErrs[addr], errs...)
}

func (t *fakeTransport) Send(ctx context.Context, addr string, body []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if queue := t.sendErrs[addr]; len(queue) > 0 {
		err := queue[0]
		t.sendErrs[addr] = queue[1:]
		return err
	}
	t.sent = append(t.sent, sentTicket{Addr: addr, Body: string(body)})
	return nil
}

func (t *fakeTransport) Probe(ctx context.Context, addr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.probeErrs[addr]
}

func (t *fakeTransport) sentTo(addr string) []sentTicket {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []sentTicket
	for _, s := range t.sent {
		if s.Addr == addr {
			out = append(out, s)
		}
	}
	return out
}

type fakeRemote struct {
	mu          sync.Mutex
	snapshot    *models.Snapshot
	downloadErr error
	uploaded    []*models.Snapshot
}

func (r *fakeRemote) UploadSnapshot(ctx context.Context, snap *models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploaded = append(r.uploaded, snap)
	return nil
}

func (r *fakeRemote) DownloadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.downloadErr != nil {
		return nil, r.downloadErr
	}
	return r.snapshot, nil
}
