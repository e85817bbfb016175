package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TypeTotal aggregates the operations of one type.
type TypeTotal struct {
	OperationType OperationType   `json:"operation_type"`
	Count         int64           `json:"count"`
	Inflow        decimal.Decimal `json:"inflow"`
	Outflow       decimal.Decimal `json:"outflow"` // positive magnitude
}

// Net is inflow minus outflow.
func (t TypeTotal) Net() decimal.Decimal {
	return t.Inflow.Sub(t.Outflow)
}

// LedgerSummary is the aggregate movement of one register over an optional window.
type LedgerSummary struct {
	CaisseID       int64           `json:"caisse"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	From           *time.Time      `json:"from,omitempty"`
	To             *time.Time      `json:"to,omitempty"`
	OperationCount int64           `json:"operation_count"`
	TotalInflow    decimal.Decimal `json:"total_inflow"`
	TotalOutflow   decimal.Decimal `json:"total_outflow"`
	NetChange      decimal.Decimal `json:"net_change"`
	ByType         []TypeTotal     `json:"by_type"`
}
