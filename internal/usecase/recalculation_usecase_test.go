package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/assetledger/internal/domain"
)

func TestRecalculateAll(t *testing.T) {
	f := newFixture(t)
	f.addAsset("a-1", "machinery", 1200000, "12", jan2024())
	f.addAsset("a-2", "machinery", 500000, "0", jan2024())
	f.addAsset("future", "machinery", 100000, "10", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	maint := f.addAsset("m-1", "machinery", 900000, "12", jan2024())
	maint.Status = domain.AssetStatusInMaintenance
	f.store.Assets().Put(maint)

	other := f.addAsset("o-1", "machinery", 1200000, "12", jan2024())
	other.OrganisationID = "org-2"
	f.store.Assets().Put(other)

	processed, err := f.recalculation().RecalculateAll(t.Context(), testOrg)
	require.NoError(t, err)
	assert.Equal(t, 3, processed)

	assert.Equal(t, domain.Money(1170194), f.asset(t, "a-1").CurrentValue)
	assert.Equal(t, domain.Money(500000), f.asset(t, "a-2").CurrentValue)
	assert.Equal(t, domain.Money(100000), f.asset(t, "future").CurrentValue)
	assert.Equal(t, domain.Money(900000), f.asset(t, "m-1").CurrentValue)
	assert.Equal(t, domain.Money(1200000), f.asset(t, "o-1").CurrentValue)

	entries, _ := f.store.Journal().ListBySource(t.Context(), domain.JournalSourceDepreciation, "a-1")
	assert.Empty(t, entries, "recalculation never posts journal entries")

	events, err := f.store.Outbox().GetByAggregate(t.Context(), domain.AggregateTypeOrganisation, testOrg, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeAssetsRecalculated, events[0].EventType)
}

func TestRecalculateAll_Deterministic(t *testing.T) {
	f := newFixture(t)
	f.addAsset("a-1", "machinery", 1200000, "12", jan2024())
	uc := f.recalculation()

	_, err := uc.RecalculateAll(t.Context(), testOrg)
	require.NoError(t, err)
	first := f.asset(t, "a-1").CurrentValue

	_, err = uc.RecalculateAll(t.Context(), testOrg)
	require.NoError(t, err)
	assert.Equal(t, first, f.asset(t, "a-1").CurrentValue)

	events, _ := f.store.Outbox().GetByAggregate(t.Context(), domain.AggregateTypeOrganisation, testOrg, 10, 0)
	assert.Len(t, events, 1, "an unchanged run emits nothing")
}

func TestRecalculateAll_FullyDepreciated(t *testing.T) {
	f := newFixture(t)
	f.addAsset("old", "machinery", 120000, "50", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := f.recalculation().RecalculateAll(t.Context(), testOrg)
	require.NoError(t, err)
	assert.True(t, f.asset(t, "old").CurrentValue.IsZero())
}

func TestRecalculateAll_RequiresOrganisation(t *testing.T) {
	f := newFixture(t)

	_, err := f.recalculation().RecalculateAll(t.Context(), "")
	assert.ErrorIs(t, err, domain.ErrMissingOrganisation)
}
