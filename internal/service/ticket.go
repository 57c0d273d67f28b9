package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/pizza-nz/print-routing-service/internal/models"
)

// RenderTicket generates the plain-text kitchen ticket for the given
// items of an order. Byte-level printer formatting (ESC/POS etc.) is the
// transport's concern; this is the human-readable body.
func RenderTicket(order *models.Order, items []models.OrderItem) models.Ticket {
	var sb strings.Builder

	// Add header
	sb.WriteString("===============================\n")
	sb.WriteString("         ORDER TICKET         \n")
	sb.WriteString("===============================\n\n")

	// Add order info
	sb.WriteString(fmt.Sprintf("Order #: %s\n", order.OrderNumber))
	if order.TableNumber != nil && *order.TableNumber != "" {
		sb.WriteString(fmt.Sprintf("Table: %s\n", *order.TableNumber))
	}
	sb.WriteString(fmt.Sprintf("Date: %s\n", order.PlacedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString("\n")

	// Add items
	sb.WriteString("Items:\n")
	sb.WriteString("-------------------------------\n")

	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%dx %s\n", item.Quantity, item.Name))

		// Add modifiers
		for _, mod := range item.Modifiers {
			sb.WriteString(fmt.Sprintf("  + %s\n", mod))
		}

		// Add special instructions
		if item.SpecialInstructions != nil && *item.SpecialInstructions != "" {
			sb.WriteString(fmt.Sprintf("  * %s\n", *item.SpecialInstructions))
		}

		sb.WriteString("\n")
	}

	// Add footer with print time
	now := time.Now()
	sb.WriteString("-------------------------------\n")
	sb.WriteString(fmt.Sprintf("Printed: %s\n", now.Format("15:04:05")))

	return models.Ticket{
		OrderNumber: order.OrderNumber,
		Body:        sb.String(),
		RenderedAt:  now,
	}
}

// RenderTestTicket generates the test page sent by the printer test
// endpoint
func RenderTestTicket(printerName string) models.Ticket {
	now := time.Now()

	body := "===============================\n" +
		"          TEST PAGE            \n" +
		"===============================\n\n" +
		"This is a test page.\n" +
		"If you can read this, the printer is working.\n\n" +
		fmt.Sprintf("Printer: %s\n", printerName) +
		fmt.Sprintf("Time: %s\n", now.Format("2006-01-02 15:04:05")) +
		"\n===============================\n"

	return models.Ticket{
		OrderNumber: "TEST",
		Body:        body,
		RenderedAt:  now,
	}
}
