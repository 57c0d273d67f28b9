package models

import (
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// PrinterType represents a printer type
type PrinterType string

const (
	PrinterTypeThermalReceipt PrinterType = "thermal_receipt"
	PrinterTypeKitchenImpact  PrinterType = "kitchen_impact"
	PrinterTypeLabel          PrinterType = "label"
	PrinterTypeOther          PrinterType = "other"
)

// ConnectionStatus represents the reachability of a printer as last
// observed by the connection monitor
type ConnectionStatus string

const (
	ConnectionStatusUnknown      ConnectionStatus = "unknown"
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusError        ConnectionStatus = "error"
)

// PrinterConfiguration represents a physical receipt or kitchen printer
type PrinterConfiguration struct {
	ID      uuid.UUID   `db:"id" json:"id"`
	Name    string      `db:"name" json:"name"`
	Type    PrinterType `db:"type" json:"type"`
	Address string      `db:"address" json:"address"`
	Port    int         `db:"port" json:"port"`
	Model   *string     `db:"model" json:"model"`

	// PaperWidth is the paper width in millimeters, informational only
	PaperWidth int `db:"paper_width" json:"paper_width"`

	// IsActive enables the printer for routing; operators can disable a
	// printer without deleting it
	IsActive bool `db:"is_active" json:"is_active"`

	// ConnectionStatus is written only by the connection monitor
	ConnectionStatus  ConnectionStatus `db:"connection_status" json:"connection_status"`
	LastConnectedAt   *time.Time       `db:"last_connected_at" json:"last_connected_at"`
	LastHealthCheckAt *time.Time       `db:"last_health_check_at" json:"last_health_check_at"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DialAddress returns the host:port string used by the printer transport
func (p *PrinterConfiguration) DialAddress() string {
	if p.Port == 0 {
		return p.Address
	}
	return net.JoinHostPort(p.Address, strconv.Itoa(p.Port))
}

// PrinterRequest is used for printer creation/update
type PrinterRequest struct {
	Name       string      `json:"name" validate:"required,min=1,max=100"`
	Type       PrinterType `json:"type" validate:"required,oneof=thermal_receipt kitchen_impact label other"`
	Address    string      `json:"address" validate:"required"`
	Port       int         `json:"port" validate:"omitempty,min=1,max=65535"`
	Model      *string     `json:"model"`
	PaperWidth int         `json:"paper_width"`
	IsActive   bool        `json:"is_active"`
}

// DiscoveredPrinter is a discovery candidate before it is merged into
// the registry
type DiscoveredPrinter struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Port    int     `json:"port"`
	Model   *string `json:"model"`
	Source  string  `json:"source"`
}

// ScanSummary reports the outcome of a discovery sweep
type ScanSummary struct {
	Candidates int       `json:"candidates"`
	Added      int       `json:"added"`
	Updated    int       `json:"updated"`
	Transports []string  `json:"transports"`
	StartedAt  time.Time `json:"started_at"`
	Duration   string    `json:"duration"`
}
