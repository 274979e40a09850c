package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
	"github.com/iho/assetledger/internal/usecase/mocks"
)

func TestPostDepreciation_TwoPeriods(t *testing.T) {
	f := newFixture(t)
	f.addAsset("a-1", "machinery", 1200000, "12", jan2024())
	uc := f.depreciation(usecase.DepreciationConfig{})

	for _, p := range []string{"2024-01", "2024-02"} {
		res, err := uc.PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, p)})
		require.NoError(t, err)
		require.Len(t, res.Posted, 1, p)
		assert.Equal(t, domain.Money(12000), res.Posted[0].Amount)
	}

	assert.Equal(t, "11760.00", f.asset(t, "a-1").CurrentValue.String())

	entries, err := f.store.Journal().ListBySource(t.Context(), domain.JournalSourceDepreciation, "a-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.IsBalanced())
	}

	debit, credit, err := f.store.Ledger().CheckConsistency(t.Context(), testOrg)
	require.NoError(t, err)
	assert.Equal(t, debit, credit)
}

func TestPostDepreciation_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.addAsset("a-1", "machinery", 1200000, "12", jan2024())
	uc := f.depreciation(usecase.DepreciationConfig{})
	input := usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-01")}

	first, err := uc.PostDepreciation(t.Context(), input)
	require.NoError(t, err)
	require.Len(t, first.Posted, 1)

	second, err := uc.PostDepreciation(t.Context(), input)
	require.NoError(t, err)
	assert.Empty(t, second.Posted)
	require.Len(t, second.Skipped, 1)
	assert.Equal(t, usecase.SkipReasonAlreadyPosted, second.Skipped[0].Reason)

	assert.Equal(t, domain.Money(1188000), f.asset(t, "a-1").CurrentValue)

	entries, _ := f.store.Journal().ListBySource(t.Context(), domain.JournalSourceDepreciation, "a-1")
	assert.Len(t, entries, 1)

	postings, err := uc.ListPostings(t.Context(), domain.Scope{OrganisationID: testOrg}, input.Period)
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, entries[0].ID, postings[0].JournalEntryID)
}

func TestPostDepreciation_ZeroRateSkipped(t *testing.T) {
	f := newFixture(t)
	f.addAsset("a-1", "machinery", 500000, "0", jan2024())
	uc := f.depreciation(usecase.DepreciationConfig{})

	res, err := uc.PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-01")})
	require.NoError(t, err)

	assert.Empty(t, res.Failed)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, usecase.SkipReasonNonDepreciable, res.Skipped[0].Reason)
}

func TestPostDepreciation_PartitionsMixedBatch(t *testing.T) {
	f := newFixture(t)

	for i := 1; i <= 10; i++ {
		assetType := "machinery"
		if i == 3 || i == 8 {
			assetType = "unmapped"
		}
		f.addAsset(fmt.Sprintf("a-%02d", i), assetType, 1200000, "12", jan2024())
	}

	f.store.InjectFault(func(op, assetID string) error {
		if op == "journal.create" && assetID == "a-05" {
			return fmt.Errorf("insert journal entry: %w", context.DeadlineExceeded)
		}
		return nil
	})

	uc := f.depreciation(usecase.DepreciationConfig{Concurrency: 4})
	res, err := uc.PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-01")})
	require.NoError(t, err)

	assert.Len(t, res.Posted, 7)
	assert.Len(t, res.Skipped, 2)
	require.Len(t, res.Failed, 1)
	assert.Empty(t, res.Unprocessed)
	assert.Equal(t, 10, res.Total())

	for _, s := range res.Skipped {
		assert.Equal(t, usecase.SkipReasonUnmappedAccounts, s.Reason)
		assert.Contains(t, s.Detail, "unmapped")
	}

	failed := res.Failed[0]
	assert.Equal(t, "a-05", failed.AssetID)
	var pe *domain.PersistenceError
	require.True(t, errors.As(failed.Err, &pe))
	assert.True(t, pe.Timeout())

	assert.Equal(t, domain.Money(1200000), f.asset(t, "a-05").CurrentValue, "failed asset must be rolled back")
	exists, err := f.store.Postings().Exists(t.Context(), nil, "a-05", mustPeriod(t, "2024-01"))
	require.NoError(t, err)
	assert.False(t, exists)

	for i := 1; i < len(res.Posted); i++ {
		assert.Less(t, res.Posted[i-1].AssetID, res.Posted[i].AssetID)
	}

	// A re-run posts only the asset that failed.
	f.store.InjectFault(nil)
	rerun, err := uc.PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-01")})
	require.NoError(t, err)
	require.Len(t, rerun.Posted, 1)
	assert.Equal(t, "a-05", rerun.Posted[0].AssetID)
	assert.Len(t, rerun.Skipped, 9)
}

func TestPostDepreciation_InvalidEntryFails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Mappings().SetMapping(t.Context(), &domain.AccountMapping{
		AssetTypeID:                      "blank",
		AssetAccountID:                   "1500",
		DepreciationExpenseAccountID:     " ",
		AccumulatedDepreciationAccountID: "1590",
	}))
	f.addAsset("a-1", "blank", 1200000, "12", jan2024())

	res, err := f.depreciation(usecase.DepreciationConfig{}).PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-01")})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)

	var verr *domain.ValidationError
	require.True(t, errors.As(res.Failed[0].Err, &verr))
	assert.Equal(t, []string{domain.CodeMissingAccount}, verr.Codes())
}

func TestPostDepreciation_SkipReasons(t *testing.T) {
	f := newFixture(t)
	f.addAsset("later", "machinery", 1200000, "12", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	done := f.addAsset("done", "machinery", 1200000, "12", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	done.CurrentValue = 0
	f.store.Assets().Put(done)

	res, err := f.depreciation(usecase.DepreciationConfig{}).PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-04")})
	require.NoError(t, err)
	require.Len(t, res.Skipped, 2)

	assert.Equal(t, "done", res.Skipped[0].AssetID)
	assert.Equal(t, usecase.SkipReasonFullyDepreciated, res.Skipped[0].Reason)
	assert.Equal(t, "later", res.Skipped[1].AssetID)
	assert.Equal(t, usecase.SkipReasonNotInService, res.Skipped[1].Reason)
}

func TestPostDepreciation_CapsAtRemainingValue(t *testing.T) {
	f := newFixture(t)
	a := f.addAsset("a-1", "machinery", 1200000, "12", jan2024())
	a.CurrentValue = 500
	f.store.Assets().Put(a)

	res, err := f.depreciation(usecase.DepreciationConfig{}).PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-06")})
	require.NoError(t, err)
	require.Len(t, res.Posted, 1)
	assert.Equal(t, domain.Money(500), res.Posted[0].Amount)
	assert.True(t, f.asset(t, "a-1").CurrentValue.IsZero())
}

func TestPostDepreciation_CancellationReportsUnprocessed(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a-1", "a-2", "a-3"} {
		f.addAsset(id, "machinery", 1200000, "12", jan2024())
	}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	f.store.InjectFault(func(op, assetID string) error {
		if op == "posting.exists" && assetID == "a-2" {
			cancel()
		}
		return nil
	})

	res, err := f.depreciation(usecase.DepreciationConfig{Concurrency: 1}).PostDepreciation(ctx, usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-01")})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)

	require.Len(t, res.Posted, 1)
	assert.Equal(t, "a-1", res.Posted[0].AssetID)
	assert.Equal(t, []string{"a-2", "a-3"}, res.Unprocessed)
	assert.Empty(t, res.Failed)

	assert.Equal(t, domain.Money(1200000), f.asset(t, "a-2").CurrentValue)
}

func TestPostDepreciation_ConcurrentBatchStaysConsistent(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 60; i++ {
		f.addAsset(fmt.Sprintf("a-%03d", i), "machinery", domain.Money(100000+i*137), "17.5", jan2024())
	}

	uc := f.depreciation(usecase.DepreciationConfig{Concurrency: 8})
	input := usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-02")}

	results := make(chan *usecase.BatchResult, 2)
	for i := 0; i < 2; i++ {
		go func() {
			res, err := uc.PostDepreciation(context.Background(), input)
			assert.NoError(t, err)
			results <- res
		}()
	}

	posted := 0
	for i := 0; i < 2; i++ {
		res := <-results
		posted += len(res.Posted)
		assert.Equal(t, 60, res.Total())
		assert.Empty(t, res.Failed)
	}
	assert.Equal(t, 60, posted, "each asset is posted exactly once across concurrent batches")

	debit, credit, err := f.store.Ledger().CheckConsistency(t.Context(), testOrg)
	require.NoError(t, err)
	assert.Equal(t, debit, credit)
}

func TestPostDepreciation_InputValidation(t *testing.T) {
	f := newFixture(t)
	uc := f.depreciation(usecase.DepreciationConfig{})

	_, err := uc.PostDepreciation(t.Context(), usecase.PostDepreciationInput{Period: mustPeriod(t, "2024-01")})
	assert.ErrorIs(t, err, domain.ErrMissingOrganisation)

	_, err = uc.PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestPostDepreciation_ListFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	assets := mocks.NewMockAssetRepository(ctrl)
	assets.EXPECT().ListActive(gomock.Any(), domain.Scope{OrganisationID: testOrg}, gomock.Any()).Return(nil, errors.New("connection refused"))

	uc := usecase.NewDepreciationUseCase(
		mocks.NewMockTransactionManager(ctrl),
		assets,
		mocks.NewMockAccountMappingRepository(ctrl),
		mocks.NewMockJournalRepository(ctrl),
		mocks.NewMockPostingRepository(ctrl),
		mocks.NewMockOutboxRepository(ctrl),
		mocks.NewMockIDGenerator(ctrl),
		nil, nil, nil, nil,
		zerolog.Nop(),
		usecase.DepreciationConfig{},
	)

	res, err := uc.PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: mustPeriod(t, "2024-01")})
	assert.Nil(t, res)
	assert.ErrorContains(t, err, "connection refused")
}

func TestPostDepreciation_BatchLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)
	f.addAsset("a-1", "machinery", 1200000, "12", jan2024())
	period := mustPeriod(t, "2024-01")
	key := usecase.BatchLockKey(domain.Scope{OrganisationID: testOrg}, period)

	locker := mocks.NewMockBatchLocker(ctrl)
	released := false
	gomock.InOrder(
		locker.EXPECT().Acquire(gomock.Any(), key, usecase.DefaultBatchLockTTL).Return(func(context.Context) error {
			released = true
			return nil
		}, nil),
		locker.EXPECT().Acquire(gomock.Any(), key, usecase.DefaultBatchLockTTL).Return(nil, domain.ErrBatchInProgress),
	)

	uc := usecase.NewDepreciationUseCase(
		f.store.TxManager(), f.store.Assets(), f.store.Mappings(), f.store.Journal(),
		f.store.Postings(), f.store.Outbox(), f.ids, nil, f.clock, locker, nil,
		zerolog.Nop(), usecase.DepreciationConfig{},
	)

	res, err := uc.PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: period})
	require.NoError(t, err)
	assert.Len(t, res.Posted, 1)
	assert.True(t, released)

	_, err = uc.PostDepreciation(t.Context(), usecase.PostDepreciationInput{OrganisationID: testOrg, Period: period})
	assert.ErrorIs(t, err, domain.ErrBatchInProgress)
}

func TestBatchLockKey(t *testing.T) {
	p := mustPeriod(t, "2024-07")

	assert.Equal(t, "depreciation:org-1:*:2024-07", usecase.BatchLockKey(domain.Scope{OrganisationID: "org-1"}, p))
	assert.Equal(t, "depreciation:org-1:br-2:2024-07", usecase.BatchLockKey(domain.Scope{OrganisationID: "org-1", BranchID: "br-2"}, p))
}
