package repositories

import (
	"context"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
)

// CaisseReader defines read operations for cash registers
type CaisseReader interface {
	// FindCaisseByID retrieves a register by id. Returns apperrors.ErrNotFound when absent.
	FindCaisseByID(ctx context.Context, caisseID int64) (*domain.CashRegister, error)

	// ListCaisses retrieves every register ordered by name.
	ListCaisses(ctx context.Context) ([]domain.CashRegister, error)
}

// CaisseWriter defines write operations for cash registers
type CaisseWriter interface {
	// SaveCaisse persists a new register with a zero balance and returns it with its assigned id.
	SaveCaisse(ctx context.Context, caisse domain.CashRegister) (*domain.CashRegister, error)
}

// CaisseRepositoryFacade combines all register repository interfaces
type CaisseRepositoryFacade interface {
	CaisseReader
	CaisseWriter
}
