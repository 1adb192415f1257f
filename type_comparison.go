package ledgerdiff

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Comparison holds the previous and the current value of the same amount.
type Comparison struct {
	Previous, Current Money
}

func NewComparison(previous, current Money) Comparison {
	return Comparison{
		Previous: previous,
		Current:  current,
	}
}

// Change returns Current - Previous.
func (c Comparison) Change() Money {
	return c.Current.Sub(c.Previous)
}

// Percent returns the change relative to the previous value.
//
// A zero previous value yields 0, never an infinite or NaN percentage.
func (c Comparison) Percent() Percent {
	if c.Previous.IsZero() {
		return 0
	}
	ratio := c.Change().value.Div(c.Previous.value).Mul(hundred)
	return Percent(ratio.InexactFloat64())
}
