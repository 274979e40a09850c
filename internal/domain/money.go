package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places held by Money.
const MinorUnitExponent = 2

// Money is an amount expressed in the currency's minor unit (cents).
// It never holds fractions of a minor unit; conversions from decimal
// values round half-to-even.
type Money int64

// ZeroMoney is the zero amount.
const ZeroMoney Money = 0

// NewMoneyFromDecimal converts a major-unit decimal amount into Money,
// rounding half-to-even at the minor unit.
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(MinorUnitExponent).RoundBank(0).IntPart())
}

// MoneyFromMinorDecimal converts an amount already expressed in minor
// units (possibly fractional) into Money, rounding half-to-even.
func MoneyFromMinorDecimal(d decimal.Decimal) Money {
	return Money(d.RoundBank(0).IntPart())
}

// ParseMoney parses a major-unit decimal string such as "1200.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if d.Exponent() < -MinorUnitExponent && !d.Equal(d.Round(MinorUnitExponent)) {
		return ZeroMoney, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, MinorUnitExponent)
	}

	return NewMoneyFromDecimal(d), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MinorUnitExponent)
}

// MinorDecimal returns the amount in minor units as a decimal.
func (m Money) MinorDecimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

// String formats the amount in major units with two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(MinorUnitExponent)
}

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsNegative() bool { return m < 0 }
func (m Money) IsPositive() bool { return m > 0 }

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// Clamp bounds m to [lo, hi].
func (m Money) Clamp(lo, hi Money) Money {
	if m < lo {
		return lo
	}
	if m > hi {
		return hi
	}
	return m
}

// MinMoney returns the smaller amount.
func MinMoney(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}
