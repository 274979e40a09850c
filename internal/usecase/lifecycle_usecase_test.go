package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

func TestChangeStatus_MaintenanceRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.addAsset("a-1", "machinery", 1200000, "12", jan2024())
	uc := f.lifecycle()

	a, err := uc.ChangeStatus(t.Context(), usecase.ChangeStatusInput{AssetID: "a-1", Status: domain.AssetStatusInMaintenance})
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusInMaintenance, a.Status)

	// Assets in maintenance are excluded from posting.
	res, err := f.depreciation(usecase.DepreciationConfig{}).PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-01")})
	require.NoError(t, err)
	assert.Zero(t, res.Total())

	_, err = uc.ChangeStatus(t.Context(), usecase.ChangeStatusInput{AssetID: "a-1", Status: domain.AssetStatusInMaintenance})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	a, err = uc.ChangeStatus(t.Context(), usecase.ChangeStatusInput{AssetID: "a-1", Status: domain.AssetStatusActive})
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusActive, f.asset(t, "a-1").Status)
	assert.Equal(t, domain.Money(1200000), a.CurrentValue)

	events, err := f.store.Outbox().GetByAggregate(t.Context(), domain.AggregateTypeAsset, "a-1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestChangeStatus_Retire(t *testing.T) {
	f := newFixture(t)
	f.addAsset("a-1", "machinery", 1200000, "12", jan2024())
	done := f.addAsset("done", "machinery", 1200000, "12", jan2024())
	done.CurrentValue = 0
	f.store.Assets().Put(done)
	uc := f.lifecycle()

	_, err := uc.ChangeStatus(t.Context(), usecase.ChangeStatusInput{AssetID: "a-1", Status: domain.AssetStatusRetired})
	assert.ErrorIs(t, err, domain.ErrNotFullyDepreciated)

	_, err = uc.ChangeStatus(t.Context(), usecase.ChangeStatusInput{AssetID: "done", Status: domain.AssetStatusRetired})
	require.NoError(t, err)

	_, err = uc.ChangeStatus(t.Context(), usecase.ChangeStatusInput{AssetID: "done", Status: domain.AssetStatusActive})
	assert.ErrorIs(t, err, domain.ErrAlreadyDisposed)
}

func TestChangeStatus_Rejected(t *testing.T) {
	f := newFixture(t)
	f.addAsset("a-1", "machinery", 1200000, "12", jan2024())
	uc := f.lifecycle()

	_, err := uc.ChangeStatus(t.Context(), usecase.ChangeStatusInput{AssetID: "a-1", Status: "BROKEN"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = uc.ChangeStatus(t.Context(), usecase.ChangeStatusInput{AssetID: "a-1", Status: domain.AssetStatusDisposed})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.ChangeStatus(t.Context(), usecase.ChangeStatusInput{AssetID: "missing", Status: domain.AssetStatusActive})
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)

	assert.Equal(t, domain.AssetStatusActive, f.asset(t, "a-1").Status)
}
