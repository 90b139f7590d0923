package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), "category %q", c)
	}
	assert.Len(t, Categories, 12)
	assert.False(t, Category("").Valid())
	assert.False(t, Category("tobacco").Valid())
	assert.False(t, Category("FOOD").Valid())
}

func TestOperationType_Delta(t *testing.T) {
	amount := decimal.RequireFromString("50.25")

	assert.True(t, Profit.Delta(amount).Equal(decimal.RequireFromString("50.25")))
	assert.True(t, Loss.Delta(amount).Equal(decimal.RequireFromString("-50.25")))
	assert.True(t, Profit.Valid())
	assert.True(t, Loss.Valid())
	assert.False(t, OperationType("refund").Valid())
}
