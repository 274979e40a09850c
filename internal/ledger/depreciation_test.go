package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/assetledger/internal/domain"
)

func newAsset(price domain.Money, rate string, purchased time.Time) *domain.Asset {
	return &domain.Asset{
		ID:               "asset-1",
		Name:             "Forklift",
		AssetTypeID:      "machinery",
		OrganisationID:   "org-1",
		Status:           domain.AssetStatusActive,
		DepreciationRate: decimal.RequireFromString(rate),
		PurchasePrice:    price,
		CurrentValue:     price,
		PurchaseDate:     purchased,
	}
}

func period(t *testing.T, s string) domain.Period {
	t.Helper()
	p, err := domain.ParsePeriod(s)
	require.NoError(t, err)
	return p
}

func TestMonthlyDepreciation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price domain.Money
		rate  string
		want  domain.Money
	}{
		{"twelve percent of 12000.00", 1200000, "12", 12000},
		{"zero rate", 1200000, "0", 0},
		{"half a cent rounds to even zero", 100, "6", 0},
		{"cent and a half rounds to even two", 300, "6", 2},
		{"full write-off in a year", 120000, "100", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAsset(tt.price, tt.rate, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			assert.Equal(t, tt.want, MonthlyDepreciation(a))
		})
	}
}

func TestMonthlyDepreciationInactive(t *testing.T) {
	t.Parallel()

	a := newAsset(1200000, "12", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.Status = domain.AssetStatusInMaintenance

	assert.True(t, MonthlyDepreciation(a).IsZero())
	assert.True(t, DepreciationForPeriod(a, period(t, "2024-01")).IsZero())
}

func TestDepreciationForPeriodProration(t *testing.T) {
	t.Parallel()

	// 120.00 a month; purchased on the 17th of a 30-day month owns 14 days.
	a := newAsset(1200000, "12", time.Date(2024, 4, 17, 9, 30, 0, 0, time.UTC))

	assert.Equal(t, domain.ZeroMoney, DepreciationForPeriod(a, period(t, "2024-03")), "before purchase")
	assert.Equal(t, domain.Money(5600), DepreciationForPeriod(a, period(t, "2024-04")), "partial month")
	assert.Equal(t, domain.Money(12000), DepreciationForPeriod(a, period(t, "2024-05")), "full month")
}

func TestDepreciationForPeriodPurchaseOnLastDay(t *testing.T) {
	t.Parallel()

	a := newAsset(37200, "100", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	// 31.00 a month, one day of thirty-one owned.
	assert.Equal(t, domain.Money(100), DepreciationForPeriod(a, period(t, "2024-01")))
}

func TestPostingAmountCapsAtCurrentValue(t *testing.T) {
	t.Parallel()

	a := newAsset(1200000, "12", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	a.CurrentValue = 5000

	assert.Equal(t, domain.Money(5000), PostingAmount(a, period(t, "2024-01")))

	a.CurrentValue = 0
	assert.True(t, PostingAmount(a, period(t, "2024-02")).IsZero())
}

func TestBookValue(t *testing.T) {
	t.Parallel()

	a := newAsset(1200000, "12", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		asOf time.Time
		want domain.Money
	}{
		{"before purchase", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), 1200000},
		{"end of february", time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC), 1176000},
		{"mid march", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 1176000 - 5806},
		{"fully depreciated", time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BookValue(a, tt.asOf))
		})
	}
}

func TestBookValueDeterministic(t *testing.T) {
	t.Parallel()

	a := newAsset(987654, "17.5", time.Date(2021, 7, 9, 0, 0, 0, 0, time.UTC))
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	first := BookValue(a, asOf)
	a.CurrentValue = first
	assert.Equal(t, first, BookValue(a, asOf))
	assert.True(t, first >= 0 && first <= a.PurchasePrice)
}

func TestBookValueNonActiveKeepsRecordedValue(t *testing.T) {
	t.Parallel()

	a := newAsset(1200000, "12", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.Status = domain.AssetStatusInMaintenance
	a.CurrentValue = 700000

	assert.Equal(t, domain.Money(700000), BookValue(a, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestScenarioTwoPostings(t *testing.T) {
	t.Parallel()

	a := newAsset(1200000, "12", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	for _, p := range []string{"2024-01", "2024-02"} {
		amount := PostingAmount(a, period(t, p))
		require.Equal(t, domain.Money(12000), amount)
		a.CurrentValue -= amount
	}

	assert.Equal(t, "11760.00", a.CurrentValue.String())
}
