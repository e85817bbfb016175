package caisseclient

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMover struct {
	mock.Mock
}

func (m *MockMover) Deposit(ctx context.Context, caisseID int64, amount decimal.Decimal, description string) (*MutationResult, error) {
	args := m.Called(ctx, caisseID, amount, description)
	res, _ := args.Get(0).(*MutationResult)
	return res, args.Error(1)
}

func (m *MockMover) Withdraw(ctx context.Context, caisseID int64, amount decimal.Decimal, description string) (*MutationResult, error) {
	args := m.Called(ctx, caisseID, amount, description)
	res, _ := args.Get(0).(*MutationResult)
	return res, args.Error(1)
}

func TestParseAmount(t *testing.T) {
	for _, ok := range []string{"1", "0.01", " 250.00 ", "1.500"} {
		_, err := ParseAmount(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "0", "-5", "abc", "1.005", "0.00"} {
		_, err := ParseAmount(bad)
		assert.True(t, IsKind(err, ValidationError), bad)
	}
}

func TestBalanceMutator_RejectsNonPositiveWithoutNetwork(t *testing.T) {
	mover := new(MockMover)
	m := NewBalanceMutator(mover, nil, nil, nil)
	register := CashRegister{ID: 1, CurrentBalance: dec("100")}

	_, err := m.SubmitDeposit(t.Context(), 1, "0", "")
	assert.True(t, IsKind(err, ValidationError))
	_, err = m.SubmitDeposit(t.Context(), 1, "-5", "")
	assert.True(t, IsKind(err, ValidationError))
	_, err = m.SubmitWithdrawal(t.Context(), register, "0", "")
	assert.True(t, IsKind(err, ValidationError))
	_, err = m.SubmitDeposit(t.Context(), 1, "ten", "")
	assert.True(t, IsKind(err, ValidationError))

	mover.AssertNumberOfCalls(t, "Deposit", 0)
	mover.AssertNumberOfCalls(t, "Withdraw", 0)
}

func TestBalanceMutator_AdvisoryBalanceCheck(t *testing.T) {
	mover := new(MockMover)
	m := NewBalanceMutator(mover, nil, nil, nil)

	_, err := m.SubmitWithdrawal(t.Context(), CashRegister{ID: 1, CurrentBalance: dec("50")}, "80", "")
	assert.True(t, IsKind(err, ValidationError))
	mover.AssertNumberOfCalls(t, "Withdraw", 0)
}

func TestBalanceMutator_StoreHasFinalSay(t *testing.T) {
	mover := new(MockMover)
	rejected := &Error{Kind: ServerError, Status: 400, Message: "insufficient funds"}
	mover.On("Withdraw", mock.Anything, int64(1), dec("40"), "").Return(nil, rejected).Once()
	m := NewBalanceMutator(mover, nil, nil, nil)

	// The held balance is stale: the client thinks 50 is available.
	_, err := m.SubmitWithdrawal(t.Context(), CashRegister{ID: 1, CurrentBalance: dec("50")}, "40", "")
	assert.ErrorIs(t, err, rejected)
	mover.AssertExpectations(t)
}

func TestBalanceMutator_RefreshesViewsAfterSuccess(t *testing.T) {
	_, client := newLedgerServer(t)
	ctx := t.Context()

	till, err := client.CreateCaisse(ctx, "Main Till")
	require.NoError(t, err)

	book := NewRegisterBook(client)
	require.NoError(t, book.Refresh(ctx))
	query := NewOperationsQuery(client)
	require.NoError(t, query.SelectCaisse(ctx, &till.ID))
	m := NewBalanceMutator(client, book, query, nil)

	res, err := m.SubmitDeposit(ctx, till.ID, "250.00", "opening float")
	require.NoError(t, err)
	assert.True(t, res.Caisse.CurrentBalance.Equal(dec("250")))

	held, ok := book.Find(till.ID)
	require.True(t, ok)
	assert.True(t, held.CurrentBalance.Equal(dec("250")))
	require.Len(t, query.Snapshot().Operations, 1)

	_, err = m.SubmitWithdrawal(ctx, held, "300", "")
	assert.True(t, IsKind(err, ValidationError))

	_, err = m.SubmitWithdrawal(ctx, held, "100", "")
	require.NoError(t, err)
	held, _ = book.Find(till.ID)
	assert.True(t, held.CurrentBalance.Equal(dec("150")))

	state := query.Snapshot()
	require.Len(t, state.Operations, 2)
	assert.Equal(t, Withdrawal, state.Operations[0].OperationType)
	assert.True(t, state.Operations[0].Amount.Equal(dec("-100")))

	report := query.Report(state.Operations[0].Timestamp)
	assert.True(t, report.TotalDeposits.Equal(dec("250")))
	assert.True(t, report.TotalWithdrawals.Equal(dec("100")))
}
