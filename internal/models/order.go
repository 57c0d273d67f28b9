package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is the slice of an order the routing engine consumes. Orders are
// owned by the order subsystem; this engine only routes and prints them.
type Order struct {
	OrderNumber string      `json:"order_number"`
	TableNumber *string     `json:"table_number"`
	PlacedAt    time.Time   `json:"placed_at"`
	Items       []OrderItem `json:"items"`
}

// OrderItem is one order line to be routed to printers
type OrderItem struct {
	MenuItemID          uuid.UUID `json:"menu_item_id"`
	CategoryID          uuid.UUID `json:"category_id"`
	Name                string    `json:"name"`
	Quantity            int       `json:"quantity"`
	SpecialInstructions *string   `json:"special_instructions"`
	Modifiers           []string  `json:"modifiers"`
}

// OrderPrintRequest is the payload for routing and printing one order
type OrderPrintRequest struct {
	Order Order `json:"order" validate:"required"`
}
