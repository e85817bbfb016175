package caisseclient

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestClient_MainTillScenario(t *testing.T) {
	_, client := newLedgerServer(t)
	ctx := t.Context()

	till, err := client.CreateCaisse(ctx, "Main Till")
	require.NoError(t, err)
	assert.True(t, till.CurrentBalance.IsZero())

	dep, err := client.Deposit(ctx, till.ID, dec("250.00"), "")
	require.NoError(t, err)
	assert.True(t, dep.Caisse.CurrentBalance.Equal(dec("250")))
	assert.Equal(t, Deposit, dep.Operation.OperationType)
	assert.True(t, dep.Operation.BalanceAfter.Equal(dec("250")))

	_, err = client.Withdraw(ctx, till.ID, dec("300.00"), "")
	require.Error(t, err)
	assert.True(t, IsKind(err, ServerError))
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)

	detail, err := client.GetCaisse(ctx, till.ID)
	require.NoError(t, err)
	assert.True(t, detail.CurrentBalance.Equal(dec("250")))
	assert.Len(t, detail.Operations, 1, "a rejected withdrawal leaves no operation")

	wd, err := client.Withdraw(ctx, till.ID, dec("100.00"), "")
	require.NoError(t, err)
	assert.Equal(t, Withdrawal, wd.Operation.OperationType)
	assert.True(t, wd.Operation.Amount.Equal(dec("-100")))
	assert.True(t, wd.Operation.BalanceAfter.Equal(dec("150")))
	assert.True(t, wd.Caisse.CurrentBalance.Equal(dec("150")))
}

func TestClient_BalanceInvariant(t *testing.T) {
	_, client := newLedgerServer(t)
	ctx := t.Context()

	till, err := client.CreateCaisse(ctx, "Back Office")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		amount := decimal.New(int64(rng.Intn(10000)+1), -2)
		if rng.Intn(3) == 0 {
			_, _ = client.Withdraw(ctx, till.ID, amount, "")
		} else {
			_, err := client.Deposit(ctx, till.ID, amount, "")
			require.NoError(t, err)
		}
	}

	page, err := client.ListOperations(ctx, 1, OperationFilters{Caisse: &till.ID, PageSize: 100})
	require.NoError(t, err)
	sum := decimal.Zero
	for _, op := range page.Results {
		sum = sum.Add(op.Amount)
	}
	detail, err := client.GetCaisse(ctx, till.ID)
	require.NoError(t, err)
	assert.True(t, detail.CurrentBalance.Equal(sum), "balance %s, sum %s", detail.CurrentBalance, sum)
	assert.False(t, detail.CurrentBalance.IsNegative())

	for i := 0; i+1 < len(page.Results); i++ {
		newer, older := page.Results[i], page.Results[i+1]
		assert.True(t, newer.BalanceAfter.Equal(older.BalanceAfter.Add(newer.Amount)))
	}
}

func TestClient_PaginationMath(t *testing.T) {
	_, client := newLedgerServer(t)
	ctx := t.Context()

	till, err := client.CreateCaisse(ctx, "Main Till")
	require.NoError(t, err)
	for i := 0; i < 47; i++ {
		_, err := client.Deposit(ctx, till.ID, dec("1"), fmt.Sprintf("deposit %d", i))
		require.NoError(t, err)
	}

	q := NewOperationsQuery(client)
	require.NoError(t, q.SelectCaisse(ctx, &till.ID))
	assert.Equal(t, 5, q.TotalPages())
	assert.Len(t, q.Snapshot().Operations, 10)

	require.NoError(t, q.GoToPage(ctx, 5))
	state := q.Snapshot()
	assert.Equal(t, 5, state.Page)
	assert.Len(t, state.Operations, 7)

	err = q.GoToPage(ctx, 6)
	require.Error(t, err)
	assert.Empty(t, q.Snapshot().Operations)
}

func TestClient_ErrorKinds(t *testing.T) {
	srv, client := newLedgerServer(t)
	ctx := t.Context()

	_, err := New(srv.URL + "/api/v1").ListCaisses(ctx)
	assert.True(t, IsKind(err, AuthError))

	_, err = client.GetCaisse(ctx, 12345)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ServerError, apiErr.Kind)
	assert.Equal(t, 404, apiErr.Status)

	_, err = client.CreateCaisse(ctx, "  ")
	assert.True(t, IsKind(err, ValidationError))

	srv.Close()
	_, err = client.ListCaisses(ctx)
	assert.True(t, IsKind(err, NetworkError))
}

func TestClient_Summary(t *testing.T) {
	_, client := newLedgerServer(t)
	ctx := t.Context()

	till, err := client.CreateCaisse(ctx, "Main Till")
	require.NoError(t, err)
	_, err = client.Deposit(ctx, till.ID, dec("100"), "")
	require.NoError(t, err)
	_, err = client.Withdraw(ctx, till.ID, dec("30"), "")
	require.NoError(t, err)

	summary, err := client.Summary(ctx, till.ID, "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.OperationCount)
	assert.True(t, summary.TotalInflow.Equal(dec("100")))
	assert.True(t, summary.TotalOutflow.Equal(dec("30")))
	assert.True(t, summary.NetChange.Equal(dec("70")))
}
