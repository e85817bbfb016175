package pagination

import (
	"net/url"
	"testing"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 5, TotalPages(47, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestLastPageHoldsRemainder(t *testing.T) {
	p, err := Normalize(5, 10, 10, 100)
	require.NoError(t, err)
	remaining := int64(47) - int64(p.Offset())
	assert.Equal(t, int64(7), remaining)
}

func TestNormalize(t *testing.T) {
	p, err := Normalize(3, 0, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 3, PageSize: 10}, p)
	assert.Equal(t, 20, p.Offset())

	p, err = Normalize(1, 500, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, p.PageSize)

	_, err = Normalize(0, 10, 10, 100)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = Normalize(1, -1, 10, 100)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(1, 0, 10))
	assert.True(t, InRange(5, 47, 10))
	assert.False(t, InRange(6, 47, 10))
	assert.False(t, InRange(2, 0, 10))
}

func TestLinks(t *testing.T) {
	current, err := url.Parse("http://till.local/api/v1/caisse-operations/?caisse=3&page=2")
	require.NoError(t, err)

	next, prev := Links(current, 2, 47, 10)
	require.NotNil(t, next)
	require.NotNil(t, prev)
	assert.Equal(t, "http://till.local/api/v1/caisse-operations/?caisse=3&page=3", *next)
	assert.Equal(t, "http://till.local/api/v1/caisse-operations/?caisse=3", *prev)

	next, prev = Links(current, 5, 47, 10)
	assert.Nil(t, next)
	require.NotNil(t, prev)

	next, prev = Links(current, 1, 3, 10)
	assert.Nil(t, next)
	assert.Nil(t, prev)
}
