// Package ledger holds the pure accounting rules for fixed assets:
// straight-line depreciation, journal entry construction and journal
// validation. Nothing here performs I/O.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
)

// MonthlyDepreciation returns the straight-line depreciation for one full
// month, rounded half-to-even to the minor unit. Assets that are not ACTIVE
// or carry a zero rate depreciate by zero.
func MonthlyDepreciation(a *domain.Asset) domain.Money {
	if !a.IsDepreciable() {
		return domain.ZeroMoney
	}

	return domain.MoneyFromMinorDecimal(monthlyExact(a))
}

// DepreciationForPeriod returns the depreciation accrued by the asset during
// period p. A partially owned month is prorated by owned days over days in
// the month; the purchase day counts as owned.
func DepreciationForPeriod(a *domain.Asset, p domain.Period) domain.Money {
	if !a.IsDepreciable() {
		return domain.ZeroMoney
	}

	return accrual(a, p, p.End())
}

// PostingAmount is the depreciation to post for period p, capped so the
// asset's current value never drops below zero.
func PostingAmount(a *domain.Asset, p domain.Period) domain.Money {
	amount := DepreciationForPeriod(a, p)
	return domain.MinMoney(amount, a.CurrentValue).Clamp(domain.ZeroMoney, a.PurchasePrice)
}

// BookValue derives the asset's value as of asOf from purchase price, rate
// and elapsed time. The month containing asOf is prorated through asOf
// inclusive. Non-active assets keep their recorded value.
func BookValue(a *domain.Asset, asOf time.Time) domain.Money {
	if a.Status != domain.AssetStatusActive {
		return a.CurrentValue.Clamp(domain.ZeroMoney, a.PurchasePrice)
	}

	if !a.IsDepreciable() {
		return a.PurchasePrice.Clamp(domain.ZeroMoney, a.PurchasePrice)
	}

	asOf = domain.DateOnly(asOf)
	purchased := domain.DateOnly(a.PurchaseDate)
	if asOf.Before(purchased) {
		return a.PurchasePrice
	}

	last := domain.PeriodOf(asOf)
	accumulated := domain.ZeroMoney

	for p := domain.PeriodOf(purchased); !last.Before(p); p = p.Next() {
		accumulated += accrual(a, p, asOf)
		if accumulated >= a.PurchasePrice {
			return domain.ZeroMoney
		}
	}

	return (a.PurchasePrice - accumulated).Clamp(domain.ZeroMoney, a.PurchasePrice)
}

// monthlyExact is the unrounded monthly depreciation in minor units.
func monthlyExact(a *domain.Asset) decimal.Decimal {
	return a.PurchasePrice.MinorDecimal().
		Mul(a.DepreciationRate).
		Div(hundred).
		Div(monthsPerYear)
}

func accrual(a *domain.Asset, p domain.Period, through time.Time) domain.Money {
	days := daysOwned(a, p, through)
	if days <= 0 {
		return domain.ZeroMoney
	}

	if days == p.Days() {
		return domain.MoneyFromMinorDecimal(monthlyExact(a))
	}

	prorated := monthlyExact(a).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(int64(p.Days())))

	return domain.MoneyFromMinorDecimal(prorated)
}

// daysOwned counts the days of p between the purchase date and through, both inclusive.
func daysOwned(a *domain.Asset, p domain.Period, through time.Time) int {
	first := p.Start()
	if purchased := domain.DateOnly(a.PurchaseDate); purchased.After(first) {
		first = purchased
	}

	last := p.End()
	if through = domain.DateOnly(through); through.Before(last) {
		last = through
	}

	if last.Before(first) {
		return 0
	}

	return int(last.Sub(first).Hours()/24) + 1
}
