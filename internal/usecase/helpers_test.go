package usecase_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/adapter/repository/memory"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

const testOrg = "org-1"

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("id-%06d", g.n.Add(1))
}

type fixture struct {
	store *memory.Store
	clock *fixedClock
	ids   *seqIDs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: memory.New(),
		clock: &fixedClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)},
		ids:   &seqIDs{},
	}

	f.mapType(t, "machinery")
	return f
}

func (f *fixture) mapType(t *testing.T, assetTypeID string) {
	t.Helper()

	err := f.store.Mappings().SetMapping(t.Context(), &domain.AccountMapping{
		AssetTypeID:                      assetTypeID,
		AssetAccountID:                   "1500",
		DepreciationExpenseAccountID:     "6100",
		AccumulatedDepreciationAccountID: "1590",
		ProceedsAccountID:                "1000",
		GainLossAccountID:                "7900",
	})
	if err != nil {
		t.Fatalf("set mapping: %v", err)
	}
}

func (f *fixture) addAsset(id, assetType string, price domain.Money, rate string, purchased time.Time) *domain.Asset {
	a := &domain.Asset{
		ID:               id,
		Name:             "Asset " + id,
		AssetTypeID:      assetType,
		OrganisationID:   testOrg,
		Status:           domain.AssetStatusActive,
		DepreciationRate: decimal.RequireFromString(rate),
		PurchasePrice:    price,
		CurrentValue:     price,
		PurchaseDate:     purchased,
	}
	f.store.Assets().Put(a)
	return a
}

func (f *fixture) asset(t *testing.T, id string) *domain.Asset {
	t.Helper()

	a, err := f.store.Assets().GetByID(t.Context(), id)
	if err != nil {
		t.Fatalf("get asset %s: %v", id, err)
	}
	return a
}

func (f *fixture) depreciation(cfg usecase.DepreciationConfig) *usecase.DepreciationUseCase {
	return usecase.NewDepreciationUseCase(
		f.store.TxManager(),
		f.store.Assets(),
		f.store.Mappings(),
		f.store.Journal(),
		f.store.Postings(),
		f.store.Outbox(),
		f.ids,
		nil,
		f.clock,
		nil,
		nil,
		zerolog.Nop(),
		cfg,
	)
}

func (f *fixture) disposal() *usecase.DisposalUseCase {
	return usecase.NewDisposalUseCase(
		f.store.TxManager(),
		f.store.Assets(),
		f.store.Mappings(),
		f.store.Journal(),
		f.store.Disposals(),
		f.store.Outbox(),
		f.ids,
		f.clock,
		nil,
		zerolog.Nop(),
	)
}

func (f *fixture) recalculation() *usecase.RecalculationUseCase {
	return usecase.NewRecalculationUseCase(
		f.store.TxManager(),
		f.store.Assets(),
		f.store.Outbox(),
		f.ids,
		f.clock,
		nil,
		zerolog.Nop(),
	)
}

func (f *fixture) capitalization() *usecase.CapitalizationUseCase {
	return usecase.NewCapitalizationUseCase(
		f.store.TxManager(),
		f.store.Assets(),
		f.store.Mappings(),
		f.store.Journal(),
		f.store.Outbox(),
		f.ids,
		f.clock,
		nil,
		zerolog.Nop(),
	)
}

func (f *fixture) lifecycle() *usecase.LifecycleUseCase {
	return usecase.NewLifecycleUseCase(
		f.store.TxManager(),
		f.store.Assets(),
		f.store.Outbox(),
		f.ids,
		f.clock,
		nil,
		zerolog.Nop(),
	)
}

func mustPeriod(t *testing.T, s string) domain.Period {
	t.Helper()

	p, err := domain.ParsePeriod(s)
	if err != nil {
		t.Fatalf("parse period: %v", err)
	}
	return p
}

func jan2024() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) assets() *usecase.AssetUseCase {
	return usecase.NewAssetUseCase(
		f.store.TxManager(),
		f.store.Assets(),
		f.store.Mappings(),
		f.store.Outbox(),
		f.ids,
		f.clock,
		zerolog.Nop(),
	)
}
