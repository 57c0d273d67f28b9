package repository

import (
	"github.com/pizza-nz/print-routing-service/internal/db"
)

// Repositories holds all repository instances
type Repositories struct {
	Printer    *PrinterRepository
	Assignment *AssignmentRepository
	Sync       *SyncRepository
}

// NewRepositories creates all repositories
func NewRepositories(database *db.Postgres) *Repositories {
	return &Repositories{
		Printer:    NewPrinterRepository(database.DB),
		Assignment: NewAssignmentRepository(database.DB),
		Sync:       NewSyncRepository(database.DB),
	}
}
