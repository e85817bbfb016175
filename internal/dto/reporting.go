package dto

import (
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
)

// TypeTotalResponse is one row of a register summary.
type TypeTotalResponse struct {
	OperationType domain.OperationType `json:"operation_type"`
	Count         int64                `json:"count"`
	Inflow        string               `json:"inflow"`
	Outflow       string               `json:"outflow"`
	Net           string               `json:"net"`
}

// SummaryResponse is the aggregate movement of a register.
type SummaryResponse struct {
	Caisse         int64               `json:"caisse"`
	CurrentBalance string              `json:"current_balance"`
	StartDate      *time.Time          `json:"start_date"`
	EndDate        *time.Time          `json:"end_date"`
	OperationCount int64               `json:"operation_count"`
	TotalInflow    string              `json:"total_inflow"`
	TotalOutflow   string              `json:"total_outflow"`
	NetChange      string              `json:"net_change"`
	ByType         []TypeTotalResponse `json:"by_type"`
}

// ToSummaryResponse converts a domain.LedgerSummary
func ToSummaryResponse(s *domain.LedgerSummary) SummaryResponse {
	rows := make([]TypeTotalResponse, len(s.ByType))
	for i, t := range s.ByType {
		rows[i] = TypeTotalResponse{
			OperationType: t.OperationType,
			Count:         t.Count,
			Inflow:        FormatMoney(t.Inflow),
			Outflow:       FormatMoney(t.Outflow),
			Net:           FormatMoney(t.Net()),
		}
	}
	return SummaryResponse{
		Caisse:         s.CaisseID,
		CurrentBalance: FormatMoney(s.CurrentBalance),
		StartDate:      s.From,
		EndDate:        s.To,
		OperationCount: s.OperationCount,
		TotalInflow:    FormatMoney(s.TotalInflow),
		TotalOutflow:   FormatMoney(s.TotalOutflow),
		NetChange:      FormatMoney(s.NetChange),
		ByType:         rows,
	}
}
