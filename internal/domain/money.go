package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value in USD.
// Amount is stored as BIGINT micros (10^-6) to avoid floating point errors.
type Money struct {
	Amount int64 // micros
}

// NewMoney creates a new Money instance from micros.
func NewMoney(amount int64) Money {
	return Money{Amount: amount}
}

// ToDecimal converts the int64 micros to a shopspring/decimal.Decimal.
func (m Money) ToDecimal() decimal.Decimal {
	return decimal.NewFromInt(m.Amount).Div(decimal.NewFromInt(1_000_000))
}

// FromDecimal converts a decimal.Decimal to int64 micros.
func FromDecimal(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(1_000_000)).IntPart()
}

// OrderCost computes the cost of quantity units priced at pricePer1000
// micros per 1000 units: cost = (quantity / 1000) * pricePer1000.
// Computed in decimal and rounded down to whole micros.
func OrderCost(quantity int64, pricePer1000 int64) Money {
	cost := decimal.NewFromInt(quantity).
		Div(decimal.NewFromInt(1000)).
		Mul(decimal.NewFromInt(pricePer1000))
	return Money{Amount: cost.IntPart()}
}

// String returns the string representation of the money.
func (m Money) String() string {
	return fmt.Sprintf("%s USD", m.ToDecimal().StringFixed(2))
}
