package common

import "github.com/shopspring/decimal"

// Quantize rounds value to the nearest multiple of tick. A tick of zero is
// treated as "no grid" and returns value unchanged.
func Quantize(value, tick decimal.Decimal) decimal.Decimal {
	if tick.IsZero() {
		return value
	}
	units := value.DivRound(tick, 0)
	return units.Mul(tick)
}

// IsMultipleOf reports whether value lies exactly on the tick grid.
func IsMultipleOf(value, tick decimal.Decimal) bool {
	if tick.IsZero() {
		return value.IsZero()
	}
	return value.Mod(tick).IsZero()
}
