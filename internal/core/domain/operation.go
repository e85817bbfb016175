package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType classifies a ledger entry.
type OperationType string

const (
	Deposit         OperationType = "DEPOSIT"
	Withdrawal      OperationType = "WITHDRAWAL"
	Sale            OperationType = "SALE"
	PurchasePayment OperationType = "PURCHASE_PAYMENT"
	Adjustment      OperationType = "ADJUSTMENT"
)

// OperationTypes lists every known operation type in display order.
var OperationTypes = []OperationType{Deposit, Withdrawal, Sale, PurchasePayment, Adjustment}

// IsValid reports whether t is one of the known operation types.
func (t OperationType) IsValid() bool {
	for _, known := range OperationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Operation is one immutable ledger entry against a register.
// Amount is signed: inflows are positive, outflows negative.
type Operation struct {
	OperationID         int64           `json:"id"`
	CaisseID            int64           `json:"caisse"`
	OperationType       OperationType   `json:"operation_type"`
	Amount              decimal.Decimal `json:"amount"`
	BalanceAfter        decimal.Decimal `json:"balance_after"`
	Description         string          `json:"description"`
	ReferenceID         *string         `json:"reference_id"`
	PerformedBy         *string         `json:"performed_by"`
	PerformedByUsername string          `json:"performed_by_username"`
	Timestamp           time.Time       `json:"timestamp"`
}

// OperationFilter narrows an operation listing. Nil or empty fields do not filter.
type OperationFilter struct {
	CaisseID      *int64
	OperationType *OperationType
	StartDate     *time.Time // inclusive lower bound on Timestamp
	EndDate       *time.Time // upper bound on Timestamp, inclusive unless EndExclusive
	EndExclusive  bool
	Search        string // matched against performer username and description
}

// BeforeEnd reports whether t falls on the near side of the upper bound.
func (f OperationFilter) BeforeEnd(t time.Time) bool {
	if f.EndDate == nil {
		return true
	}
	if f.EndExclusive {
		return t.Before(*f.EndDate)
	}
	return !t.After(*f.EndDate)
}

// OperationPage is one page of a filtered operation listing.
type OperationPage struct {
	Count      int64
	Page       int
	PageSize   int
	TotalPages int
	Results    []Operation
}

// IsOutflow reports whether operations of type t take money out of the register.
// Adjustments carry their own sign and are never treated as outflows here.
func (t OperationType) IsOutflow() bool {
	return t == Withdrawal || t == PurchasePayment
}

// SignedAmount turns a positive magnitude into the signed ledger amount for t.
func (t OperationType) SignedAmount(magnitude decimal.Decimal) decimal.Decimal {
	if t.IsOutflow() {
		return magnitude.Abs().Neg()
	}
	if t == Adjustment {
		return magnitude
	}
	return magnitude.Abs()
}
