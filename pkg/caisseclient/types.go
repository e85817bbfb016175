package caisseclient

import (
	"net/url"
	"strconv"
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

// CashRegister is a caisse as reported by the ledger store.
type CashRegister struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	LastUpdated    time.Time       `json:"last_updated"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Operation is one immutable ledger entry. Amount is signed.
type Operation struct {
	ID                  int64           `json:"id"`
	Caisse              int64           `json:"caisse"`
	OperationType       OperationType   `json:"operation_type"`
	Amount              decimal.Decimal `json:"amount"`
	BalanceAfter        decimal.Decimal `json:"balance_after"`
	Description         string          `json:"description"`
	ReferenceID         *string         `json:"reference_id"`
	PerformedBy         *string         `json:"performed_by"`
	PerformedByUsername string          `json:"performed_by_username"`
	Timestamp           time.Time       `json:"timestamp"`
}

// RegisterDetail is a register with its most recent operations.
type RegisterDetail struct {
	CashRegister
	Operations []Operation `json:"operations"`
}

// MutationResult is returned by every balance mutation.
type MutationResult struct {
	Caisse    CashRegister `json:"caisse"`
	Operation Operation    `json:"operation"`
}

// Page is the pagination envelope of the operations listing.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []Operation `json:"results"`
}

// TypeTotal is one row of a store-side summary.
type TypeTotal struct {
	OperationType OperationType   `json:"operation_type"`
	Count         int64           `json:"count"`
	Inflow        decimal.Decimal `json:"inflow"`
	Outflow       decimal.Decimal `json:"outflow"`
	Net           decimal.Decimal `json:"net"`
}

// Summary is the whole-ledger aggregate computed by the store.
type Summary struct {
	Caisse         int64           `json:"caisse"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	StartDate      *time.Time      `json:"start_date"`
	EndDate        *time.Time      `json:"end_date"`
	OperationCount int64           `json:"operation_count"`
	TotalInflow    decimal.Decimal `json:"total_inflow"`
	TotalOutflow   decimal.Decimal `json:"total_outflow"`
	NetChange      decimal.Decimal `json:"net_change"`
	ByType         []TypeTotal     `json:"by_type"`
}

// OperationFilters are the query parameters of the operations listing, as sent.
// Empty fields are omitted.
type OperationFilters struct {
	Caisse        *int64
	OperationType string
	StartDate     string
	EndDate       string
	Search        string
	PageSize      int
}

func (f OperationFilters) values(page int) url.Values {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	if f.Caisse != nil {
		q.Set("caisse", strconv.FormatInt(*f.Caisse, 10))
	}
	if f.OperationType != "" {
		q.Set("operation_type", f.OperationType)
	}
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}
