package models

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentType distinguishes category-level from item-level routing rules
type AssignmentType string

const (
	AssignmentTypeCategory AssignmentType = "category"
	AssignmentTypeMenuItem AssignmentType = "menu_item"
)

// PrinterAssignment is a routing rule binding a catalog target (a menu
// category or a single menu item) to a printer. The printer reference is
// by id only; the printer may have been deleted since the assignment was
// created and lookups must tolerate the miss.
type PrinterAssignment struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	PrinterID uuid.UUID      `db:"printer_id" json:"printer_id"`
	Type      AssignmentType `db:"type" json:"type"`
	TargetID  uuid.UUID      `db:"target_id" json:"target_id"`

	// TargetName is a display snapshot taken at assignment time; it can go
	// stale and is never used for routing decisions
	TargetName string `db:"target_name" json:"target_name"`

	// Priority orders printers for the same target; lower prints first
	Priority int  `db:"priority" json:"priority"`
	IsActive bool `db:"is_active" json:"is_active"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentRequest is used for assignment creation/update
type AssignmentRequest struct {
	PrinterID uuid.UUID      `json:"printer_id" validate:"required"`
	Type      AssignmentType `json:"type" validate:"required,oneof=category menu_item"`
	TargetID  uuid.UUID      `json:"target_id" validate:"required"`
	Priority  int            `json:"priority"`
	IsActive  bool           `json:"is_active"`
}
