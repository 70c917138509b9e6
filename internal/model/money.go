package model

import (
	"fmt"
	"math"
)

// Money is an amount in centavos
type Money int64

// Pesos builds an amount from whole pesos and centavos
func Pesos(pesos, centavos int64) Money {
	return Money(pesos*100 + centavos)
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%sPHP %d.%02d", sign, v/100, v%100)
}

// addMoney reports false when a+b leaves the int64 range
func addMoney(a, b Money) (Money, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// mulMoney reports false when m*n leaves the int64 range. m and n must be non-negative.
func mulMoney(m Money, n int64) (Money, bool) {
	if n != 0 && int64(m) > math.MaxInt64/n {
		return 0, false
	}
	return m * Money(n), true
}
