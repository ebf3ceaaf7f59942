package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneySubtract(t *testing.T) {
	a := NewMoney(1000, TZS)

	diff, err := a.Subtract(NewMoney(400, TZS))
	require.NoError(t, err)
	assert.Equal(t, int64(600), diff.Amount)

	_, err = a.Subtract(NewMoney(2000, TZS))
	assert.Error(t, err, "cannot go below zero")

	_, err = a.Subtract(NewMoney(100, USD))
	assert.Error(t, err, "currency mismatch")
}

func TestInsufficientFundsError(t *testing.T) {
	err := &InsufficientFundsError{Balance: 100, Requested: 150}
	assert.Contains(t, err.Error(), "100")
	assert.Contains(t, err.Error(), "150")
}
