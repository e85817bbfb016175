package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockCaisseRepository is a mock type for the CaisseRepositoryFacade interface
type MockCaisseRepository struct {
	mock.Mock
}

func (m *MockCaisseRepository) FindCaisseByID(ctx context.Context, caisseID int64) (*domain.CashRegister, error) {
	args := m.Called(ctx, caisseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashRegister), args.Error(1)
}

func (m *MockCaisseRepository) ListCaisses(ctx context.Context) ([]domain.CashRegister, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashRegister), args.Error(1)
}

func (m *MockCaisseRepository) SaveCaisse(ctx context.Context, caisse domain.CashRegister) (*domain.CashRegister, error) {
	args := m.Called(ctx, caisse)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashRegister), args.Error(1)
}

// MockOperationRepository is a mock type for the OperationRepositoryFacade interface
type MockOperationRepository struct {
	mock.Mock
}

func (m *MockOperationRepository) ApplyOperation(ctx context.Context, op domain.Operation, allowNegative bool) (*domain.MutationResult, error) {
	args := m.Called(ctx, op, allowNegative)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MutationResult), args.Error(1)
}

func (m *MockOperationRepository) ListOperations(ctx context.Context, filter domain.OperationFilter, limit int, offset int) ([]domain.Operation, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Operation), args.Get(1).(int64), args.Error(2)
}

func (m *MockOperationRepository) SumOperationsByType(ctx context.Context, caisseID int64, from, to *time.Time) ([]domain.TypeTotal, error) {
	args := m.Called(ctx, caisseID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TypeTotal), args.Error(1)
}

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateUserPassword(ctx context.Context, userID string, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

// MockLocker records which keys were locked and released.
type MockLocker struct {
	mock.Mock
	released []string
}

func (m *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() { m.released = append(m.released, key) }, nil
}
