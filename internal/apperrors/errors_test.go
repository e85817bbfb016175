package apperrors_test

import (
	"fmt"
	"testing"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestInsufficientFundsIsValidation(t *testing.T) {
	err := fmt.Errorf("%w: balance 10.00, requested 20.00", apperrors.ErrInsufficientFunds)

	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.NotErrorIs(t, apperrors.ErrValidation, apperrors.ErrInsufficientFunds)
}
