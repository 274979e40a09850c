package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

var assetColumns = []string{
	"id", "organisation_id", "branch_id", "asset_type_id", "name", "status", "purchase_date",
	"depreciation_rate", "purchase_price_cents", "current_value_cents", "created_at", "updated_at",
}

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	expectBegin(pool)
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx
}

func TestAssetRepositoryGetByIDForUpdate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	purchased := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery("FOR UPDATE").
		WithArgs("a-1").
		WillReturnRows(pgxmock.NewRows(assetColumns).AddRow(
			"a-1", "org-1", "", "machinery", "Lathe", "ACTIVE",
			pgtype.Date{Time: purchased, Valid: true},
			decimal.RequireFromString("12.5"),
			int64(1200000), int64(1188000),
			pgtype.Timestamptz{Time: now, Valid: true},
			pgtype.Timestamptz{Time: now, Valid: true},
		))

	asset, err := NewAssetRepository(pool).GetByIDForUpdate(context.Background(), tx, "a-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if asset.Status != domain.AssetStatusActive || asset.CurrentValue != 1188000 || asset.PurchasePrice != 1200000 {
		t.Fatalf("unexpected asset: %+v", asset)
	}
	if !asset.DepreciationRate.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected rate 12.5, got %s", asset.DepreciationRate)
	}
	if !asset.PurchaseDate.Equal(purchased) {
		t.Fatalf("expected purchase date %s, got %s", purchased, asset.PurchaseDate)
	}

	assertExpectations(t, pool)
}

func TestAssetRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM assets WHERE id").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := NewAssetRepository(pool).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestAssetRepositoryUpdateStatusStale(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("UPDATE assets SET status").
		WithArgs("a-1", "ACTIVE", "DISPOSED", int64(0), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewAssetRepository(pool).UpdateStatus(context.Background(), tx, "a-1", domain.AssetStatusActive, domain.AssetStatusDisposed, 0, time.Now())
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAssetRepositoryUpdateValueOutOfRange(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("UPDATE assets SET current_value_cents").
		WithArgs("a-1", int64(-1), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: constraintCurrentValueRange})

	err := NewAssetRepository(pool).UpdateValue(context.Background(), tx, "a-1", -1, time.Now())
	if !errors.Is(err, domain.ErrValueOutOfRange) {
		t.Fatalf("expected ErrValueOutOfRange, got %v", err)
	}
}

func TestMappingRepositoryGetMissing(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM account_mappings").WithArgs("vehicles").WillReturnError(pgx.ErrNoRows)

	mapping, err := NewAccountMappingRepository(pool).GetMapping(context.Background(), "vehicles")
	if err != nil || mapping != nil {
		t.Fatalf("expected nil mapping and nil error, got %+v, %v", mapping, err)
	}
}

func TestMappingRepositorySetInUse(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec("INSERT INTO account_mappings").
		WithArgs("machinery", "1501", "", "", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := NewAccountMappingRepository(pool).SetMapping(context.Background(), &domain.AccountMapping{AssetTypeID: "machinery", AssetAccountID: "1501"})
	if !errors.Is(err, domain.ErrMappingInUse) {
		t.Fatalf("expected ErrMappingInUse, got %v", err)
	}
}

func TestJournalRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("INSERT INTO journal_entries").
		WithArgs("je-1", "", "", pgxmock.AnyArg(), "", "depreciation", "a-1", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("INSERT INTO journal_lines").WithArgs("je-1", int32(1), "6100", pgxmock.AnyArg(), int64(12000), int64(0)).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("INSERT INTO journal_lines").WithArgs("je-1", int32(2), "1590", pgxmock.AnyArg(), int64(0), int64(12000)).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectCommit()

	entry := &domain.JournalEntry{
		ID:       "je-1",
		Source:   domain.JournalSourceDepreciation,
		SourceID: "a-1",
		Lines: []domain.JournalLine{
			{AccountID: "6100", Debit: 12000},
			{AccountID: "1590", Credit: 12000},
		},
	}

	if err := NewJournalRepository(pool).Create(context.Background(), tx, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, pool)
}

func TestJournalRepositoryRejectsUnbalanced(t *testing.T) {
	pool := newMockPool(t)

	entry := &domain.JournalEntry{
		ID: "je-1",
		Lines: []domain.JournalLine{
			{AccountID: "6100", Debit: 12000},
			{AccountID: "1590", Credit: 11999},
		},
	}

	err := NewJournalRepository(pool).Create(context.Background(), nil, entry)
	if !errors.Is(err, domain.ErrUnbalancedEntry) {
		t.Fatalf("expected ErrUnbalancedEntry, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestJournalRepositoryDuplicatePurchase(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("INSERT INTO journal_entries").
		WithArgs("je-2", "", "", pgxmock.AnyArg(), "", "purchase", "a-1", "", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintPurchaseOnce})

	entry := &domain.JournalEntry{
		ID:       "je-2",
		Source:   domain.JournalSourcePurchase,
		SourceID: "a-1",
		Lines: []domain.JournalLine{
			{AccountID: "1500", Debit: 100},
			{AccountID: "1000", Credit: 100},
		},
	}

	err := NewJournalRepository(pool).Create(context.Background(), tx, entry)
	if !errors.Is(err, domain.ErrAlreadyCapitalized) {
		t.Fatalf("expected ErrAlreadyCapitalized, got %v", err)
	}
}

func TestJournalRepositoryListBySource(t *testing.T) {
	pool := newMockPool(t)
	created := pgtype.Timestamptz{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Valid: true}
	date := pgtype.Date{Time: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), Valid: true}

	pool.ExpectQuery("FROM journal_entries").
		WithArgs("depreciation", "a-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "organisation_id", "branch_id", "entry_date", "memo", "source", "source_id", "period", "created_at"}).
			AddRow("je-1", "org-1", "", date, "memo", "depreciation", "a-1", "2024-01", created))
	pool.ExpectQuery("FROM journal_lines").
		WithArgs([]string{"je-1"}).
		WillReturnRows(pgxmock.NewRows([]string{"entry_id", "line_no", "account_id", "description", "debit_cents", "credit_cents"}).
			AddRow("je-1", int32(1), "6100", "expense", int64(12000), int64(0)).
			AddRow("je-1", int32(2), "1590", "accumulated", int64(0), int64(12000)))

	entries, err := NewJournalRepository(pool).ListBySource(context.Background(), domain.JournalSourceDepreciation, "a-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Lines) != 2 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if !entries[0].IsBalanced() || entries[0].Period != "2024-01" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}

	assertExpectations(t, pool)
}

func TestPostingRepositoryExistsOutsideTx(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("SELECT EXISTS").
		WithArgs("a-1", "2024-01").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewPostingRepository(pool).Exists(context.Background(), nil, "a-1", domain.Period{Year: 2024, Month: time.January})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatalf("expected posting to exist")
	}
}

func TestPostingRepositoryCreateDuplicate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("INSERT INTO depreciation_postings").
		WithArgs("a-1", "2024-01", "", int64(12000), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintPostingOnce})
	pool.ExpectRollback()

	err := NewPostingRepository(pool).Create(context.Background(), tx, &domain.DepreciationPosting{AssetID: "a-1", Period: "2024-01", Amount: 12000})
	if !errors.Is(err, domain.ErrAlreadyPosted) {
		t.Fatalf("expected ErrAlreadyPosted, got %v", err)
	}

	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	assertExpectations(t, pool)
}

func TestDisposalRepositoryCreateDuplicate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("INSERT INTO disposals").
		WithArgs("d-1", "a-1", "", "", pgxmock.AnyArg(), "SOLD", int64(0), int64(0), int64(0), "", "", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintDisposalOnce})

	err := NewDisposalRepository(pool).Create(context.Background(), tx, &domain.Disposal{ID: "d-1", AssetID: "a-1", Method: domain.DisposalMethodSold})
	if !errors.Is(err, domain.ErrAlreadyDisposed) {
		t.Fatalf("expected ErrAlreadyDisposed, got %v", err)
	}
}

func TestDisposalRepositoryGetMissing(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM disposals").WithArgs("a-1").WillReturnError(pgx.ErrNoRows)

	_, err := NewDisposalRepository(pool).GetByAssetID(context.Background(), "a-1")
	if !errors.Is(err, domain.ErrDisposalNotFound) {
		t.Fatalf("expected ErrDisposalNotFound, got %v", err)
	}
}

func TestLedgerRepositoryCheckConsistency(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("SUM").
		WithArgs("org-1").
		WillReturnRows(pgxmock.NewRows([]string{"total_debit_cents", "total_credit_cents"}).AddRow(int64(50000), int64(49900)))

	debit, credit, err := NewLedgerRepository(pool).CheckConsistency(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if debit != 50000 || credit != 49900 {
		t.Fatalf("unexpected totals: %s / %s", debit, credit)
	}
}

func TestLedgerRepositoryCheckConsistencyWrapsFailure(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("SUM").
		WithArgs("").
		WillReturnError(errors.New("connection reset"))

	_, _, err := NewLedgerRepository(pool).CheckConsistency(context.Background(), "")

	var pe *domain.PersistenceError
	if !errors.As(err, &pe) || pe.Op != "ledger.consistency" {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestOutboxRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("INSERT INTO outbox_events").
		WithArgs("ev-1", "a-1", domain.AggregateTypeAsset, domain.EventTypeDepreciationPosted, pgxmock.AnyArg(), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	event := domain.NewOutboxEvent("ev-1", domain.AggregateTypeAsset, "a-1", domain.EventTypeDepreciationPosted, map[string]any{"amount_cents": 12000}, time.Now())
	if err := NewOutboxRepository(pool).Create(context.Background(), tx, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryGetByAggregateKeepsExactCents(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery("FROM outbox_events").
		WithArgs(domain.AggregateTypeAsset, "a-1", int32(10), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).AddRow(
			"ev-1", "a-1", domain.AggregateTypeAsset, domain.EventTypeDepreciationPosted,
			[]byte(`{"amount_cents":9007199254740993}`),
			pgtype.Timestamptz{Time: created, Valid: true},
			pgtype.Timestamptz{},
			false,
		))

	events, err := NewOutboxRepository(pool).GetByAggregate(context.Background(), domain.AggregateTypeAsset, "a-1", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].PublishedAt != nil {
		t.Fatalf("unexpected events: %+v", events)
	}

	amount, ok := events[0].Payload["amount_cents"].(json.Number)
	if !ok || amount.String() != "9007199254740993" {
		t.Fatalf("expected exact amount, got %#v", events[0].Payload["amount_cents"])
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryRejectsCorruptPayload(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery("FROM outbox_events").
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).AddRow(
			"ev-1", "a-1", domain.AggregateTypeAsset, domain.EventTypeAssetDisposed,
			[]byte(`{"amount_cents":`),
			pgtype.Timestamptz{Time: time.Now(), Valid: true},
			pgtype.Timestamptz{},
			false,
		))

	if _, err := NewOutboxRepository(pool).GetUnpublished(context.Background(), 10); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"posting", &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintPostingOnce}, domain.ErrAlreadyPosted},
		{"balance", &pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: constraintEntryBalanced}, domain.ErrUnbalancedEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateError(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	other := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "unknown"}
	if got := translateError(other); got != error(other) {
		t.Fatalf("expected unknown constraint to pass through, got %v", got)
	}
	if translateError(nil) != nil {
		t.Fatalf("expected nil to stay nil")
	}
}
