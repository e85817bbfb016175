package dto

import (
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCaisseRequest defines the data needed to open a new register.
type CreateCaisseRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// MovementRequest is the body of a deposit or withdrawal.
type MovementRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"gt=0"`
	Description string          `json:"description" binding:"max=500"`
}

// ReferencedMovementRequest is the body of a sale or a purchase payment.
type ReferencedMovementRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"gt=0"`
	ReferenceID string          `json:"reference_id" binding:"required,max=64"`
	Description string          `json:"description" binding:"max=500"`
}

// AdjustmentRequest is the body of an admin correction. Amount is signed.
type AdjustmentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"ne=0"`
	Description string          `json:"description" binding:"required,max=500"`
}

// CaisseResponse defines the data returned for a register.
type CaisseResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	CurrentBalance string    `json:"current_balance"`
	LastUpdated    time.Time `json:"last_updated"`
	CreatedAt      time.Time `json:"created_at"`
}

// CaisseDetailResponse is a register together with its recent operations.
type CaisseDetailResponse struct {
	CaisseResponse
	Operations []OperationResponse `json:"operations"`
}

// ListCaissesResponse wraps the list of registers.
type ListCaissesResponse struct {
	Results []CaisseResponse `json:"results"`
}

// MutationResponse is returned by every balance mutation.
type MutationResponse struct {
	Caisse    CaisseResponse    `json:"caisse"`
	Operation OperationResponse `json:"operation"`
}

// FormatMoney renders an amount with two fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToCaisseResponse converts a domain.CashRegister to CaisseResponse DTO
func ToCaisseResponse(c *domain.CashRegister) CaisseResponse {
	return CaisseResponse{
		ID:             c.CaisseID,
		Name:           c.Name,
		CurrentBalance: FormatMoney(c.CurrentBalance),
		LastUpdated:    c.LastUpdated,
		CreatedAt:      c.CreatedAt,
	}
}

// ToListCaissesResponse converts registers to their list envelope
func ToListCaissesResponse(caisses []domain.CashRegister) ListCaissesResponse {
	res := make([]CaisseResponse, len(caisses))
	for i := range caisses {
		res[i] = ToCaisseResponse(&caisses[i])
	}
	return ListCaissesResponse{Results: res}
}

// ToCaisseDetailResponse converts a register detail view
func ToCaisseDetailResponse(d *domain.RegisterDetail) CaisseDetailResponse {
	return CaisseDetailResponse{
		CaisseResponse: ToCaisseResponse(&d.CashRegister),
		Operations:     ToOperationResponses(d.RecentOperations),
	}
}

// ToMutationResponse converts the outcome of a balance mutation
func ToMutationResponse(r *domain.MutationResult) MutationResponse {
	return MutationResponse{
		Caisse:    ToCaisseResponse(&r.Caisse),
		Operation: ToOperationResponse(&r.Operation),
	}
}
