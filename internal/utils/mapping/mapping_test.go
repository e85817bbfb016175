package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/SscSPs/phone_store_caisse/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToDomainOperation_Username(t *testing.T) {
	user := "u-1"
	name := "amine"
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	op := ToDomainOperation(models.CaisseOperation{
		OperationID:   7,
		CaisseID:      1,
		OperationType: "WITHDRAWAL",
		Amount:        decimal.NewFromInt(-30),
		BalanceAfter:  decimal.NewFromInt(70),
		PerformedBy:   &user,
		Username:      &name,
		OccurredAt:    at,
	})

	assert.Equal(t, domain.Withdrawal, op.OperationType)
	assert.Equal(t, "amine", op.PerformedByUsername)
	assert.Equal(t, at, op.Timestamp)

	anonymous := ToDomainOperation(models.CaisseOperation{OperationType: "DEPOSIT"})
	assert.Empty(t, anonymous.PerformedByUsername)
	assert.Nil(t, anonymous.PerformedBy)
}

func TestUserRoundTripKeepsRole(t *testing.T) {
	u := domain.User{UserID: "u-1", Username: "admin", Role: domain.RoleAdmin, PasswordHash: "h"}
	assert.Equal(t, u, ToDomainUser(ToModelUser(u)))
}
