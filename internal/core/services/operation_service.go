package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/SscSPs/phone_store_caisse/internal/utils/pagination"
)

const defaultExportMaxRows = 10000

// operationService implements the OperationSvcFacade interface
type operationService struct {
	BaseService
	operationRepo portsrepo.OperationReader
	exportMaxRows int
}

// OperationServiceOption is a functional option for configuring the operation service
type OperationServiceOption func(*operationService)

// WithExportMaxRows caps how many rows one export returns.
func WithExportMaxRows(n int) OperationServiceOption {
	return func(s *operationService) {
		if n > 0 {
			s.exportMaxRows = n
		}
	}
}

// NewOperationService creates a new operation service with the provided options
func NewOperationService(repo portsrepo.OperationReader, options ...OperationServiceOption) portssvc.OperationSvcFacade {
	svc := &operationService{
		operationRepo: repo,
		exportMaxRows: defaultExportMaxRows,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.OperationSvcFacade = (*operationService)(nil)

func validateFilter(filter domain.OperationFilter) error {
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return fmt.Errorf("%w: start_date is after end_date", apperrors.ErrValidation)
	}
	if filter.OperationType != nil && !filter.OperationType.IsValid() {
		return fmt.Errorf("%w: unknown operation_type %q", apperrors.ErrValidation, *filter.OperationType)
	}
	return nil
}

func (s *operationService) ListOperations(ctx context.Context, filter domain.OperationFilter, page int, pageSize int) (*domain.OperationPage, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("%w: page and page_size must be positive", apperrors.ErrValidation)
	}
	params := pagination.Params{Page: page, PageSize: pageSize}

	ops, count, err := s.operationRepo.ListOperations(ctx, filter, params.PageSize, params.Offset())
	if err != nil {
		s.LogError(ctx, err, "Failed to list operations", slog.Int("page", page))
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	if !pagination.InRange(page, count, pageSize) {
		return nil, fmt.Errorf("%w: invalid page", apperrors.ErrNotFound)
	}

	s.LogDebug(ctx, "Listed operations",
		slog.Int("page", page),
		slog.Int("page_size", pageSize),
		slog.Int64("count", count))
	return &domain.OperationPage{
		Count:      count,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pagination.TotalPages(count, pageSize),
		Results:    ops,
	}, nil
}

func (s *operationService) ExportOperations(ctx context.Context, filter domain.OperationFilter) ([]domain.Operation, int64, error) {
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}
	ops, count, err := s.operationRepo.ListOperations(ctx, filter, s.exportMaxRows, 0)
	if err != nil {
		s.LogError(ctx, err, "Failed to load operations for export")
		return nil, 0, fmt.Errorf("failed to export operations: %w", err)
	}
	if count > int64(len(ops)) {
		s.LogWarn(ctx, "Export truncated",
			slog.Int64("matching", count),
			slog.Int("exported", len(ops)))
	}
	return ops, count, nil
}
