package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
	"github.com/SscSPs/phone_store_caisse/internal/platform/lock"
	"github.com/shopspring/decimal"
)

const defaultRecentOperations = 50

// caisseService implements the CaisseSvcFacade interface
type caisseService struct {
	BaseService
	caisseRepo    portsrepo.CaisseRepositoryFacade
	operationRepo portsrepo.OperationRepositoryFacade
	locker        lock.Locker
	recentLimit   int
}

// CaisseServiceOption is a functional option for configuring the caisse service
type CaisseServiceOption func(*caisseService)

// WithMutationLocker serialises mutations of one register through l.
func WithMutationLocker(l lock.Locker) CaisseServiceOption {
	return func(s *caisseService) {
		s.locker = l
	}
}

// WithRecentOperationsLimit sets how many operations the detail view carries.
func WithRecentOperationsLimit(n int) CaisseServiceOption {
	return func(s *caisseService) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

// NewCaisseService creates a new caisse service with the provided options
func NewCaisseService(caisseRepo portsrepo.CaisseRepositoryFacade, operationRepo portsrepo.OperationRepositoryFacade, options ...CaisseServiceOption) portssvc.CaisseSvcFacade {
	svc := &caisseService{
		caisseRepo:    caisseRepo,
		operationRepo: operationRepo,
		locker:        lock.Noop(),
		recentLimit:   defaultRecentOperations,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure caisseService implements the CaisseSvcFacade interface
var _ portssvc.CaisseSvcFacade = (*caisseService)(nil)

func (s *caisseService) CreateCaisse(ctx context.Context, req dto.CreateCaisseRequest, actor domain.Actor) (*domain.CashRegister, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
	}

	caisse, err := s.caisseRepo.SaveCaisse(ctx, domain.CashRegister{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create caisse", slog.String("name", name))
		return nil, fmt.Errorf("failed to create caisse: %w", err)
	}

	s.LogInfo(ctx, "Caisse created",
		slog.Int64("caisse_id", caisse.CaisseID),
		slog.String("name", caisse.Name),
		slog.String("user_id", actor.UserID))
	return caisse, nil
}

func (s *caisseService) ListCaisses(ctx context.Context) ([]domain.CashRegister, error) {
	caisses, err := s.caisseRepo.ListCaisses(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list caisses")
		return nil, fmt.Errorf("failed to list caisses: %w", err)
	}
	return caisses, nil
}

func (s *caisseService) GetCaisse(ctx context.Context, caisseID int64) (*domain.RegisterDetail, error) {
	caisse, err := s.caisseRepo.FindCaisseByID(ctx, caisseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get caisse", slog.Int64("caisse_id", caisseID))
		}
		return nil, err
	}

	recent, _, err := s.operationRepo.ListOperations(ctx, domain.OperationFilter{CaisseID: &caisseID}, s.recentLimit, 0)
	if err != nil {
		s.LogError(ctx, err, "Failed to load recent operations", slog.Int64("caisse_id", caisseID))
		return nil, fmt.Errorf("failed to load recent operations: %w", err)
	}

	return &domain.RegisterDetail{CashRegister: *caisse, RecentOperations: recent}, nil
}

func (s *caisseService) Deposit(ctx context.Context, caisseID int64, req dto.MovementRequest, actor domain.Actor) (*domain.MutationResult, error) {
	return s.apply(ctx, mutation{
		caisseID:    caisseID,
		opType:      domain.Deposit,
		amount:      req.Amount,
		description: req.Description,
		actor:       actor,
	})
}

func (s *caisseService) Withdraw(ctx context.Context, caisseID int64, req dto.MovementRequest, actor domain.Actor) (*domain.MutationResult, error) {
	return s.apply(ctx, mutation{
		caisseID:    caisseID,
		opType:      domain.Withdrawal,
		amount:      req.Amount,
		description: req.Description,
		actor:       actor,
	})
}

func (s *caisseService) RecordSale(ctx context.Context, caisseID int64, req dto.ReferencedMovementRequest, actor domain.Actor) (*domain.MutationResult, error) {
	return s.apply(ctx, mutation{
		caisseID:    caisseID,
		opType:      domain.Sale,
		amount:      req.Amount,
		description: req.Description,
		reference:   req.ReferenceID,
		actor:       actor,
	})
}

func (s *caisseService) RecordPurchasePayment(ctx context.Context, caisseID int64, req dto.ReferencedMovementRequest, actor domain.Actor) (*domain.MutationResult, error) {
	return s.apply(ctx, mutation{
		caisseID:    caisseID,
		opType:      domain.PurchasePayment,
		amount:      req.Amount,
		description: req.Description,
		reference:   req.ReferenceID,
		actor:       actor,
	})
}

func (s *caisseService) Adjust(ctx context.Context, caisseID int64, req dto.AdjustmentRequest, actor domain.Actor) (*domain.MutationResult, error) {
	if !actor.IsAdmin() {
		s.LogWarn(ctx, "Adjustment refused for non-admin",
			slog.Int64("caisse_id", caisseID),
			slog.String("role", string(actor.Role)))
		return nil, fmt.Errorf("%w: only admins can adjust a caisse", apperrors.ErrForbidden)
	}
	return s.apply(ctx, mutation{
		caisseID:      caisseID,
		opType:        domain.Adjustment,
		amount:        req.Amount,
		description:   req.Description,
		actor:         actor,
		allowNegative: true,
	})
}

type mutation struct {
	caisseID      int64
	opType        domain.OperationType
	amount        decimal.Decimal
	description   string
	reference     string
	actor         domain.Actor
	allowNegative bool
}

func (m mutation) validate() error {
	if m.opType == domain.Adjustment {
		if m.amount.IsZero() {
			return fmt.Errorf("%w: adjustment amount must not be zero", apperrors.ErrValidation)
		}
		if strings.TrimSpace(m.description) == "" {
			return fmt.Errorf("%w: adjustments need a description", apperrors.ErrValidation)
		}
	} else if !m.amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if !m.amount.Equal(m.amount.Round(2)) {
		return fmt.Errorf("%w: amount has more than two decimal places", apperrors.ErrValidation)
	}
	if (m.opType == domain.Sale || m.opType == domain.PurchasePayment) && strings.TrimSpace(m.reference) == "" {
		return fmt.Errorf("%w: reference_id is required", apperrors.ErrValidation)
	}
	return nil
}

// apply validates m, then hands the signed operation to the ledger under the register lock.
func (s *caisseService) apply(ctx context.Context, m mutation) (*domain.MutationResult, error) {
	logAttrs := []any{
		slog.Int64("caisse_id", m.caisseID),
		slog.String("operation_type", string(m.opType)),
		slog.String("amount", m.amount.String()),
	}
	if err := m.validate(); err != nil {
		s.LogWarn(ctx, "Rejected caisse mutation", append(logAttrs, slog.String("reason", err.Error()))...)
		return nil, err
	}

	release, err := s.locker.Lock(ctx, strconv.FormatInt(m.caisseID, 10))
	if err != nil {
		s.LogError(ctx, err, "Failed to lock caisse for mutation", logAttrs...)
		return nil, err
	}
	defer release()

	op := domain.Operation{
		CaisseID:      m.caisseID,
		OperationType: m.opType,
		Amount:        m.opType.SignedAmount(m.amount),
		Description:   strings.TrimSpace(m.description),
	}
	if ref := strings.TrimSpace(m.reference); ref != "" {
		op.ReferenceID = &ref
	}
	if m.actor.UserID != "" {
		userID := m.actor.UserID
		op.PerformedBy = &userID
	}

	result, err := s.operationRepo.ApplyOperation(ctx, op, m.allowNegative)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Caisse mutation refused by ledger", append(logAttrs, slog.String("reason", err.Error()))...)
			return nil, err
		}
		s.LogError(ctx, err, "Failed to apply caisse mutation", logAttrs...)
		return nil, fmt.Errorf("failed to apply %s: %w", strings.ToLower(string(m.opType)), err)
	}

	s.LogInfo(ctx, "Caisse mutation applied", append(logAttrs,
		slog.Int64("operation_id", result.Operation.OperationID),
		slog.String("balance_after", result.Operation.BalanceAfter.String()))...)
	return result, nil
}
