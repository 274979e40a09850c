package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// AssetRepository implements usecase.AssetRepository.
type AssetRepository struct {
	store *Store
}

// Put stores an asset outside of any transaction.
func (r *AssetRepository) Put(asset *domain.Asset) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.assets[asset.ID] = *asset
}

func (r *AssetRepository) Create(ctx context.Context, tx usecase.Transaction, asset *domain.Asset) error {
	if err := r.store.check(ctx, "asset.create", asset.ID); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	cp := *asset
	return t.stage(func() error {
		if _, ok := r.store.assets[cp.ID]; ok {
			return fmt.Errorf("asset %s already exists", cp.ID)
		}
		return nil
	}, func() {
		r.store.assets[cp.ID] = cp
	})
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	if err := r.store.check(ctx, "asset.get", id); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.assets[id]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return &a, nil
}

func (r *AssetRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Asset, error) {
	if err := r.store.check(ctx, "asset.lock", id); err != nil {
		return nil, err
	}
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	held := t.locked[id]
	done := t.done
	t.mu.Unlock()
	if done {
		return nil, ErrTxDone
	}

	if !held {
		if err := r.store.lockAsset(ctx, id); err != nil {
			return nil, err
		}
		t.mu.Lock()
		if t.done {
			t.mu.Unlock()
			r.store.unlockAsset(id)
			return nil, ErrTxDone
		}
		t.locked[id] = true
		t.mu.Unlock()
	}

	return r.GetByID(ctx, id)
}

func (r *AssetRepository) ListActive(ctx context.Context, scope domain.Scope, filter usecase.AssetFilter) ([]*domain.Asset, error) {
	if err := r.store.check(ctx, "asset.list", ""); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(filter.AssetIDs))
	for _, id := range filter.AssetIDs {
		wanted[id] = true
	}

	r.store.mu.RLock()
	var assets []*domain.Asset
	for _, a := range r.store.assets {
		if a.Status != domain.AssetStatusActive || a.OrganisationID != scope.OrganisationID {
			continue
		}
		if scope.BranchID != "" && a.BranchID != scope.BranchID {
			continue
		}
		if len(wanted) > 0 && !wanted[a.ID] {
			continue
		}
		cp := a
		assets = append(assets, &cp)
	}
	r.store.mu.RUnlock()

	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })

	return page(assets, filter.Limit, filter.Offset), nil
}

func (r *AssetRepository) UpdateValue(ctx context.Context, tx usecase.Transaction, id string, value domain.Money, updatedAt time.Time) error {
	if err := r.store.check(ctx, "asset.update_value", id); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	return t.stage(func() error {
		a, ok := r.store.assets[id]
		if !ok {
			return domain.ErrAssetNotFound
		}
		if value.IsNegative() || value > a.PurchasePrice {
			return domain.ErrValueOutOfRange
		}
		return nil
	}, func() {
		a := r.store.assets[id]
		a.CurrentValue = value
		a.UpdatedAt = updatedAt
		r.store.assets[id] = a
	})
}

func (r *AssetRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.AssetStatus, value domain.Money, updatedAt time.Time) error {
	if err := r.store.check(ctx, "asset.update_status", id); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	return t.stage(func() error {
		a, ok := r.store.assets[id]
		if !ok {
			return domain.ErrAssetNotFound
		}
		if a.Status != from {
			return domain.ErrInvalidTransition
		}
		if value.IsNegative() || value > a.PurchasePrice {
			return domain.ErrValueOutOfRange
		}
		return nil
	}, func() {
		a := r.store.assets[id]
		a.Status = to
		a.CurrentValue = value
		a.UpdatedAt = updatedAt
		r.store.assets[id] = a
	})
}

// MappingRepository implements usecase.AccountMappingRepository.
type MappingRepository struct {
	store *Store
}

func (r *MappingRepository) GetMapping(ctx context.Context, assetTypeID string) (*domain.AccountMapping, error) {
	if err := r.store.check(ctx, "mapping.get", ""); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.mappings[assetTypeID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// SetMapping stores a mapping. Once a journal entry uses one of its
// accounts for an asset of the type, the mapping can no longer change.
func (r *MappingRepository) SetMapping(ctx context.Context, mapping *domain.AccountMapping) error {
	if err := r.store.check(ctx, "mapping.set", ""); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.store.mappings[mapping.AssetTypeID]; ok && existing != *mapping && r.mappingInUse(mapping.AssetTypeID) {
		return domain.ErrMappingInUse
	}

	r.store.mappings[mapping.AssetTypeID] = *mapping
	return nil
}

func (r *MappingRepository) mappingInUse(assetTypeID string) bool {
	for _, e := range r.store.journal {
		if a, ok := r.store.assets[e.SourceID]; ok && a.AssetTypeID == assetTypeID {
			return true
		}
	}
	return false
}

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	store *Store
}

func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if err := r.store.check(ctx, "journal.create", entry.SourceID); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if !entry.IsBalanced() {
		return domain.ErrUnbalancedEntry
	}

	cp := cloneEntry(*entry)
	return t.stage(func() error {
		if cp.Source != domain.JournalSourcePurchase {
			return nil
		}
		for _, e := range r.store.journal {
			if e.Source == domain.JournalSourcePurchase && e.SourceID == cp.SourceID {
				return domain.ErrAlreadyCapitalized
			}
		}
		return nil
	}, func() {
		r.store.journal[cp.ID] = cp
		r.store.journalIx = append(r.store.journalIx, cp.ID)
	})
}

func (r *JournalRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	if err := r.store.check(ctx, "journal.get", ""); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.journal[id]
	if !ok {
		return nil, domain.ErrJournalNotFound
	}
	cp := cloneEntry(e)
	return &cp, nil
}

func (r *JournalRepository) ListBySource(ctx context.Context, source domain.JournalSource, sourceID string) ([]*domain.JournalEntry, error) {
	if err := r.store.check(ctx, "journal.list", sourceID); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var entries []*domain.JournalEntry
	for _, id := range r.store.journalIx {
		e := r.store.journal[id]
		if e.Source == source && e.SourceID == sourceID {
			cp := cloneEntry(e)
			entries = append(entries, &cp)
		}
	}
	return entries, nil
}

// PostingRepository implements usecase.PostingRepository.
type PostingRepository struct {
	store *Store
}

func (r *PostingRepository) Exists(ctx context.Context, _ usecase.Transaction, assetID string, period domain.Period) (bool, error) {
	if err := r.store.check(ctx, "posting.exists", assetID); err != nil {
		return false, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.postings[postingKey{assetID: assetID, period: period.String()}]
	return ok, nil
}

func (r *PostingRepository) Create(ctx context.Context, tx usecase.Transaction, posting *domain.DepreciationPosting) error {
	if err := r.store.check(ctx, "posting.create", posting.AssetID); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	cp := *posting
	key := postingKey{assetID: cp.AssetID, period: cp.Period}

	r.store.mu.RLock()
	_, exists := r.store.postings[key]
	r.store.mu.RUnlock()
	if exists {
		return domain.ErrAlreadyPosted
	}

	return t.stage(func() error {
		if _, ok := r.store.postings[key]; ok {
			return domain.ErrAlreadyPosted
		}
		return nil
	}, func() {
		r.store.postings[key] = cp
	})
}

func (r *PostingRepository) ListByPeriod(ctx context.Context, scope domain.Scope, period domain.Period) ([]*domain.DepreciationPosting, error) {
	if err := r.store.check(ctx, "posting.list", ""); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var postings []*domain.DepreciationPosting
	for key, p := range r.store.postings {
		if key.period != period.String() {
			continue
		}
		a, ok := r.store.assets[key.assetID]
		if !ok || a.OrganisationID != scope.OrganisationID || (scope.BranchID != "" && a.BranchID != scope.BranchID) {
			continue
		}
		cp := p
		postings = append(postings, &cp)
	}

	sort.Slice(postings, func(i, j int) bool { return postings[i].AssetID < postings[j].AssetID })
	return postings, nil
}

// DisposalRepository implements usecase.DisposalRepository.
type DisposalRepository struct {
	store *Store
}

func (r *DisposalRepository) Create(ctx context.Context, tx usecase.Transaction, disposal *domain.Disposal) error {
	if err := r.store.check(ctx, "disposal.create", disposal.AssetID); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	cp := *disposal
	return t.stage(func() error {
		if _, ok := r.store.disposals[cp.AssetID]; ok {
			return domain.ErrAlreadyDisposed
		}
		return nil
	}, func() {
		r.store.disposals[cp.AssetID] = cp
	})
}

func (r *DisposalRepository) GetByAssetID(ctx context.Context, assetID string) (*domain.Disposal, error) {
	if err := r.store.check(ctx, "disposal.get", assetID); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.disposals[assetID]
	if !ok {
		return nil, domain.ErrDisposalNotFound
	}
	return &d, nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if err := r.store.check(ctx, "outbox.create", event.AggregateID); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	cp := cloneEvent(*event)
	return t.stage(nil, func() {
		r.store.outbox[cp.ID] = cp
		r.store.outboxIx = append(r.store.outboxIx, cp.ID)
	})
}

func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if err := r.store.check(ctx, "outbox.unpublished", ""); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []*domain.OutboxEvent
	for _, id := range r.store.outboxIx {
		e := r.store.outbox[id]
		if e.Published {
			continue
		}
		cp := cloneEvent(e)
		events = append(events, &cp)
		if limit > 0 && len(events) == limit {
			break
		}
	}
	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if err := r.store.check(ctx, "outbox.mark", ""); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.outbox[id]
	if !ok {
		return fmt.Errorf("outbox event %s not found", id)
	}
	e.Published = true
	e.PublishedAt = &publishedAt
	r.store.outbox[id] = e
	return nil
}

func (r *OutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	if err := r.store.check(ctx, "outbox.by_aggregate", aggregateID); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	var events []*domain.OutboxEvent
	for _, id := range r.store.outboxIx {
		e := r.store.outbox[id]
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			cp := cloneEvent(e)
			events = append(events, &cp)
		}
	}
	r.store.mu.RUnlock()

	return page(events, limit, offset), nil
}

func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if err := r.store.check(ctx, "outbox.delete", ""); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.outboxIx[:0]
	for _, id := range r.store.outboxIx {
		e := r.store.outbox[id]
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			delete(r.store.outbox, id)
			continue
		}
		kept = append(kept, id)
	}
	r.store.outboxIx = kept
	return nil
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

func (r *LedgerRepository) CheckConsistency(ctx context.Context, organisationID string) (domain.Money, domain.Money, error) {
	if err := r.store.check(ctx, "ledger.consistency", ""); err != nil {
		return 0, 0, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var debit, credit domain.Money
	for _, e := range r.store.journal {
		if organisationID != "" && e.OrganisationID != organisationID {
			continue
		}
		d, c := e.Totals()
		debit += d
		credit += c
	}
	return debit, credit, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
