package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Won is an integer amount of Korean won. Every monetary field that leaves
// the engine is expressed in Won.
type Won int64

// Decimal converts the amount for rate arithmetic.
func (w Won) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(w))
}

// String renders the amount with thousands separators, e.g. "1,234,567".
func (w Won) String() string {
	n := int64(w)
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3+1)
	if neg {
		out = append(out, '-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, digits[:lead]...)
	for i := lead; i < len(digits); i += 3 {
		out = append(out, ',')
		out = append(out, digits[i:i+3]...)
	}
	return string(out)
}

// FloorWon truncates a decimal amount toward negative infinity.
func FloorWon(d decimal.Decimal) Won {
	return Won(d.Floor().IntPart())
}

// MaxWon returns the larger of two amounts.
func MaxWon(a, b Won) Won {
	if a > b {
		return a
	}
	return b
}

// MinWon returns the smaller of two amounts.
func MinWon(a, b Won) Won {
	if a < b {
		return a
	}
	return b
}

// Rate returns numerator/denominator rounded to four places, or zero when the
// denominator is not positive.
func Rate(numerator, denominator Won) decimal.Decimal {
	if denominator <= 0 {
		return decimal.Zero
	}
	return numerator.Decimal().DivRound(denominator.Decimal(), 4)
}
