package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
)

// LedgerWriter appends operations and moves balances.
type LedgerWriter interface {
	// ApplyOperation adds op.Amount to the register balance and appends op in a single
	// atomic step. The stored operation carries the resulting balance_after, its id and
	// its timestamp. Unless allowNegative is set the step fails with
	// apperrors.ErrInsufficientFunds when the balance would drop below zero, and nothing
	// is written. A missing register yields apperrors.ErrNotFound.
	ApplyOperation(ctx context.Context, op domain.Operation, allowNegative bool) (*domain.MutationResult, error)
}

// OperationReader defines read operations for the ledger
type OperationReader interface {
	// ListOperations returns one window of matching operations ordered by timestamp
	// descending then id descending, and the total number of matches.
	ListOperations(ctx context.Context, filter domain.OperationFilter, limit int, offset int) ([]domain.Operation, int64, error)
}

// LedgerReportReader aggregates the ledger.
type LedgerReportReader interface {
	// SumOperationsByType groups a register's operations by type within [from, to].
	SumOperationsByType(ctx context.Context, caisseID int64, from, to *time.Time) ([]domain.TypeTotal, error)
}

// OperationRepositoryFacade combines all ledger repository interfaces
type OperationRepositoryFacade interface {
	LedgerWriter
	OperationReader
	LedgerReportReader
}
