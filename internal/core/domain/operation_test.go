package domain_test

import (
	"testing"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOperationType_IsValid(t *testing.T) {
	for _, typ := range domain.OperationTypes {
		assert.True(t, typ.IsValid(), string(typ))
	}
	assert.False(t, domain.OperationType("REFUND").IsValid())
	assert.False(t, domain.OperationType("").IsValid())
	assert.False(t, domain.OperationType("deposit").IsValid())
}

func TestOperationType_SignedAmount(t *testing.T) {
	tests := []struct {
		name      string
		typ       domain.OperationType
		magnitude string
		want      string
	}{
		{name: "deposit stays positive", typ: domain.Deposit, magnitude: "100.00", want: "100"},
		{name: "sale stays positive", typ: domain.Sale, magnitude: "49.99", want: "49.99"},
		{name: "withdrawal is negated", typ: domain.Withdrawal, magnitude: "30", want: "-30"},
		{name: "purchase payment is negated", typ: domain.PurchasePayment, magnitude: "12.5", want: "-12.5"},
		{name: "negative adjustment keeps sign", typ: domain.Adjustment, magnitude: "-5", want: "-5"},
		{name: "positive adjustment keeps sign", typ: domain.Adjustment, magnitude: "5", want: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.typ.SignedAmount(decimal.RequireFromString(tt.magnitude))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestTypeTotal_Net(t *testing.T) {
	total := domain.TypeTotal{
		OperationType: domain.Adjustment,
		Inflow:        decimal.NewFromInt(20),
		Outflow:       decimal.NewFromInt(35),
	}
	assert.True(t, decimal.NewFromInt(-15).Equal(total.Net()))
}

func TestActor_IsAdmin(t *testing.T) {
	assert.True(t, domain.Actor{Role: domain.RoleAdmin}.IsAdmin())
	assert.False(t, domain.Actor{Role: domain.RoleCashier}.IsAdmin())
	assert.False(t, domain.Actor{}.IsAdmin())
}
