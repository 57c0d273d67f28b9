package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pizza-nz/print-routing-service/internal/models"
)

// ErrorKind classifies sync failures for the operator status surface
type ErrorKind string

const (
	ErrAuthFailed         ErrorKind = "auth_failed"
	ErrNetworkUnavailable ErrorKind = "network_unavailable"
	ErrConflictUnresolved ErrorKind = "conflict_unresolved"
)

// SyncError is a cloud store failure. Sync errors are reported and
// logged; the engine keeps operating on local state.
type SyncError struct {
	Kind ErrorKind
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("cloud sync %s: %v", e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// ErrNoSnapshot is returned by DownloadSnapshot when the tenant has not
// pushed yet
var ErrNoSnapshot = errors.New("no remote snapshot")

// Client talks to the cloud document store. Snapshots are addressed by
// tenant id and tagged with revision metadata.
type Client struct {
	baseURL  string
	apiKey   string
	tenantID string
	http     *http.Client
}

// NewClient creates a cloud store client
func NewClient(baseURL, apiKey, tenantID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		tenantID: tenantID,
		http:     &http.Client{Timeout: timeout},
	}
}

// UploadSnapshot pushes the full local snapshot for this tenant
func (c *Client) UploadSnapshot(ctx context.Context, snap *models.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return &SyncError{Kind: ErrConflictUnresolved, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.snapshotURL(), bytes.NewReader(body))
	if err != nil {
		return &SyncError{Kind: ErrNetworkUnavailable, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &SyncError{Kind: ErrNetworkUnavailable, Err: err}
	}
	defer resp.Body.Close()

	return c.checkStatus(resp.StatusCode, "upload")
}

// DownloadSnapshot pulls the remote snapshot for this tenant
func (c *Client) DownloadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.snapshotURL(), nil)
	if err != nil {
		return nil, &SyncError{Kind: ErrNetworkUnavailable, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SyncError{Kind: ErrNetworkUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoSnapshot
	}
	if err := c.checkStatus(resp.StatusCode, "download"); err != nil {
		return nil, err
	}

	var snap models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, &SyncError{Kind: ErrConflictUnresolved, Err: fmt.Errorf("malformed snapshot: %w", err)}
	}

	return &snap, nil
}

func (c *Client) snapshotURL() string {
	return fmt.Sprintf("%s/v1/tenants/%s/snapshot", c.baseURL, c.tenantID)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func (c *Client) checkStatus(code int, op string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &SyncError{Kind: ErrAuthFailed, Err: fmt.Errorf("%s rejected with status %d", op, code)}
	case code == http.StatusConflict:
		return &SyncError{Kind: ErrConflictUnresolved, Err: fmt.Errorf("%s conflict, status %d", op, code)}
	default:
		return &SyncError{Kind: ErrNetworkUnavailable, Err: fmt.Errorf("%s failed with status %d", op, code)}
	}
}
