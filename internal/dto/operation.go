package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
)

// OperationResponse defines the data returned for a ledger entry.
type OperationResponse struct {
	ID                  int64                `json:"id"`
	Caisse              int64                `json:"caisse"`
	OperationType       domain.OperationType `json:"operation_type"`
	Amount              string               `json:"amount"`
	BalanceAfter        string               `json:"balance_after"`
	Description         string               `json:"description"`
	ReferenceID         *string              `json:"reference_id"`
	PerformedBy         *string              `json:"performed_by"`
	PerformedByUsername string               `json:"performed_by_username,omitempty"`
	Timestamp           time.Time            `json:"timestamp"`
}

// ListOperationsParams defines query parameters for listing operations.
type ListOperationsParams struct {
	Page          int    `form:"page,default=1"`
	PageSize      int    `form:"page_size"`
	Caisse        *int64 `form:"caisse"`
	OperationType string `form:"operation_type"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	Search        string `form:"search"`
}

// PaginatedOperationsResponse is the page envelope of an operation listing.
type PaginatedOperationsResponse struct {
	Count    int64               `json:"count"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
	Results  []OperationResponse `json:"results"`
}

// SummaryParams defines the optional window of a register summary.
type SummaryParams struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// ToFilter validates the query parameters and builds the store filter.
func (p ListOperationsParams) ToFilter() (domain.OperationFilter, error) {
	var filter domain.OperationFilter
	filter.CaisseID = p.Caisse
	if p.OperationType != "" {
		t := domain.OperationType(strings.ToUpper(p.OperationType))
		if !t.IsValid() {
			return filter, fmt.Errorf("%w: unknown operation_type %q", apperrors.ErrValidation, p.OperationType)
		}
		filter.OperationType = &t
	}
	var err error
	if filter.StartDate, err = ParseDateParam("start_date", p.StartDate); err != nil {
		return filter, err
	}
	if filter.EndDate, err = ParseDateParam("end_date", p.EndDate); err != nil {
		return filter, err
	}
	// A bare day is the first instant past the window.
	filter.EndExclusive = filter.EndDate != nil && isDateOnly(p.EndDate)
	filter.Search = strings.TrimSpace(p.Search)
	return filter, nil
}

// Window parses the summary bounds.
func (p SummaryParams) Window() (from, to *time.Time, err error) {
	if from, err = ParseDateParam("start_date", p.StartDate); err != nil {
		return nil, nil, err
	}
	if to, err = ParseDateParam("end_date", p.EndDate); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// ParseDateParam accepts YYYY-MM-DD (midnight UTC) or RFC 3339. Empty means unset.
func ParseDateParam(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD or RFC 3339", apperrors.ErrValidation, name)
	}
	return &t, nil
}

func isDateOnly(value string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	return err == nil
}

// ToOperationResponse converts a domain.Operation to OperationResponse DTO
func ToOperationResponse(op *domain.Operation) OperationResponse {
	return OperationResponse{
		ID:                  op.OperationID,
		Caisse:              op.CaisseID,
		OperationType:       op.OperationType,
		Amount:              FormatMoney(op.Amount),
		BalanceAfter:        FormatMoney(op.BalanceAfter),
		Description:         op.Description,
		ReferenceID:         op.ReferenceID,
		PerformedBy:         op.PerformedBy,
		PerformedByUsername: op.PerformedByUsername,
		Timestamp:           op.Timestamp,
	}
}

// ToOperationResponses converts a slice of operations, never returning nil
func ToOperationResponses(ops []domain.Operation) []OperationResponse {
	res := make([]OperationResponse, len(ops))
	for i := range ops {
		res[i] = ToOperationResponse(&ops[i])
	}
	return res
}
