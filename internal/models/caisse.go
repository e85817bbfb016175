package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Caisse is a row of the caisses table.
type Caisse struct {
	CaisseID       int64           `db:"caisse_id"`
	Name           string          `db:"name"`
	CurrentBalance decimal.Decimal `db:"current_balance"`
	LastUpdated    time.Time       `db:"last_updated"`
	CreatedAt      time.Time       `db:"created_at"`
}

// CaisseOperation is a row of the caisse_operations table, joined with the
// performer's username when listed.
type CaisseOperation struct {
	OperationID   int64           `db:"operation_id"`
	CaisseID      int64           `db:"caisse_id"`
	OperationType string          `db:"operation_type"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Description   string          `db:"description"`
	ReferenceID   *string         `db:"reference_id"`
	PerformedBy   *string         `db:"performed_by"`
	Username      *string         `db:"username"`
	OccurredAt    time.Time       `db:"occurred_at"`
}
