package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	price := decimal.RequireFromString("10.00")

	total := LineTotal(price, 3)

	assert.True(t, total.Equal(decimal.RequireFromString("30.00")), "got %s", total)
}

func TestLineTotal_NoFloatDrift(t *testing.T) {
	// 0.10 * 3 must be exactly 0.30, not 0.30000000000000004
	price := decimal.RequireFromString("0.10")

	total := LineTotal(price, 3)

	assert.Equal(t, "0.3", total.String())
}

func TestSum(t *testing.T) {
	totals := []decimal.Decimal{
		decimal.RequireFromString("20.00"),
		decimal.RequireFromString("5.00"),
	}

	sum := Sum(totals)

	assert.True(t, sum.Equal(decimal.RequireFromString("25.00")), "got %s", sum)
}

func TestSum_OrderIndependent(t *testing.T) {
	a := decimal.RequireFromString("1.11")
	b := decimal.RequireFromString("2.22")
	c := decimal.RequireFromString("3.33")

	forward := Sum([]decimal.Decimal{a, b, c})
	backward := Sum([]decimal.Decimal{c, b, a})

	require.True(t, forward.Equal(backward))
}

func TestSum_Empty(t *testing.T) {
	assert.True(t, Sum(nil).IsZero())
}
