package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney_ToDecimal(t *testing.T) {
	m := NewMoney(10_500_000) // 10.50 USD
	d := m.ToDecimal()
	assert.Equal(t, "10.5", d.String())
}

func TestFromDecimal(t *testing.T) {
	d := decimal.NewFromFloat(10.50)
	micros := FromDecimal(d)
	assert.Equal(t, int64(10_500_000), micros)
}

func TestOrderCost(t *testing.T) {
	// 5000 followers at 5.00 per 1000 -> 25.00
	cost := OrderCost(5000, 5_000_000)
	assert.Equal(t, int64(25_000_000), cost.Amount)
}

func TestOrderCost_FractionalThousands(t *testing.T) {
	// 250 likes at 2.50 per 1000 -> 0.625
	cost := OrderCost(250, 2_500_000)
	assert.Equal(t, int64(625_000), cost.Amount)

	// 1 unit at 0.50 per 1000 -> 0.0005 exactly in micros
	cost = OrderCost(1, 500_000)
	assert.Equal(t, int64(500), cost.Amount)
}
