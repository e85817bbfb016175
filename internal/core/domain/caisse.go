package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashRegister is a named pool of cash (a "caisse") whose balance only moves through operations.
type CashRegister struct {
	CaisseID       int64           `json:"id"`
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	LastUpdated    time.Time       `json:"last_updated"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RegisterDetail bundles a register with its most recent operations, newest first.
type RegisterDetail struct {
	CashRegister
	RecentOperations []Operation `json:"recent_operations"`
}

// MutationResult is what a successful balance mutation hands back.
type MutationResult struct {
	Caisse    CashRegister `json:"caisse"`
	Operation Operation    `json:"operation"`
}
