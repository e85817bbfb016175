package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	caisseRepo portsrepo.CaisseReader
	reportRepo portsrepo.LedgerReportReader
}

// NewReportingService creates a new reporting service
func NewReportingService(caisseRepo portsrepo.CaisseReader, reportRepo portsrepo.LedgerReportReader) portssvc.ReportingService {
	return &reportingService{
		caisseRepo: caisseRepo,
		reportRepo: reportRepo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// Summary aggregates a register's ledger within the optional window.
func (s *reportingService) Summary(ctx context.Context, caisseID int64, from, to *time.Time) (*domain.LedgerSummary, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: start_date is after end_date", apperrors.ErrValidation)
	}

	caisse, err := s.caisseRepo.FindCaisseByID(ctx, caisseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load caisse for summary", slog.Int64("caisse_id", caisseID))
		}
		return nil, err
	}

	totals, err := s.reportRepo.SumOperationsByType(ctx, caisseID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve summary data", slog.Int64("caisse_id", caisseID))
		return nil, fmt.Errorf("failed to retrieve summary data: %w", err)
	}

	summary := &domain.LedgerSummary{
		CaisseID:       caisseID,
		CurrentBalance: caisse.CurrentBalance,
		From:           from,
		To:             to,
		TotalInflow:    decimal.Zero,
		TotalOutflow:   decimal.Zero,
		ByType:         totals,
	}
	for _, t := range totals {
		summary.OperationCount += t.Count
		summary.TotalInflow = summary.TotalInflow.Add(t.Inflow)
		summary.TotalOutflow = summary.TotalOutflow.Add(t.Outflow)
	}
	summary.NetChange = summary.TotalInflow.Sub(summary.TotalOutflow)

	s.LogInfo(ctx, "Caisse summary generated",
		slog.Int64("caisse_id", caisseID),
		slog.Int64("operation_count", summary.OperationCount))
	return summary, nil
}
