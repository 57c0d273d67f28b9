package models

import "time"

// Ticket is the rendered representation of an order (or the portion of it
// destined for one printer) ready to be handed to the printer transport
type Ticket struct {
	OrderNumber string    `json:"order_number"`
	Body        string    `json:"body"`
	RenderedAt  time.Time `json:"rendered_at"`
}
