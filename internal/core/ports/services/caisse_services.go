package services

import (
	"context"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
)

// CaisseReaderSvc defines read operations for registers
type CaisseReaderSvc interface {
	// ListCaisses returns every register ordered by id.
	ListCaisses(ctx context.Context) ([]domain.CashRegister, error)

	// GetCaisse returns a register and its most recent operations.
	GetCaisse(ctx context.Context, caisseID int64) (*domain.RegisterDetail, error)
}

// CaisseWriterSvc defines write operations for registers
type CaisseWriterSvc interface {
	// CreateCaisse opens a register with a zero balance.
	CreateCaisse(ctx context.Context, req dto.CreateCaisseRequest, actor domain.Actor) (*domain.CashRegister, error)
}

// LedgerMutatorSvc moves register balances. Every method appends exactly one operation.
type LedgerMutatorSvc interface {
	Deposit(ctx context.Context, caisseID int64, req dto.MovementRequest, actor domain.Actor) (*domain.MutationResult, error)
	Withdraw(ctx context.Context, caisseID int64, req dto.MovementRequest, actor domain.Actor) (*domain.MutationResult, error)
	RecordSale(ctx context.Context, caisseID int64, req dto.ReferencedMovementRequest, actor domain.Actor) (*domain.MutationResult, error)
	RecordPurchasePayment(ctx context.Context, caisseID int64, req dto.ReferencedMovementRequest, actor domain.Actor) (*domain.MutationResult, error)

	// Adjust applies a signed correction. Admins only; may leave the balance negative.
	Adjust(ctx context.Context, caisseID int64, req dto.AdjustmentRequest, actor domain.Actor) (*domain.MutationResult, error)
}

// CaisseSvcFacade combines all register service interfaces
type CaisseSvcFacade interface {
	CaisseReaderSvc
	CaisseWriterSvc
	LedgerMutatorSvc
}

// OperationSvcFacade reads and exports the ledger.
type OperationSvcFacade interface {
	// ListOperations returns the requested page of matching operations.
	// A page past the last one yields apperrors.ErrNotFound; page 1 always succeeds.
	ListOperations(ctx context.Context, filter domain.OperationFilter, page int, pageSize int) (*domain.OperationPage, error)

	// ExportOperations returns matching operations up to the configured export cap,
	// along with how many operations matched in total.
	ExportOperations(ctx context.Context, filter domain.OperationFilter) ([]domain.Operation, int64, error)
}

// ReportingService aggregates a register's ledger.
type ReportingService interface {
	Summary(ctx context.Context, caisseID int64, from, to *time.Time) (*domain.LedgerSummary, error)
}
