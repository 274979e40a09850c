// Package memory is an in-process implementation of every storage port.
// Transactions stage their writes and apply them atomically on commit, with
// the same uniqueness rules the Postgres schema enforces. Assets read with
// GetByIDForUpdate stay locked until the transaction ends.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("transaction already committed or rolled back")

// FaultFunc lets callers inject failures. It receives the operation name
// (for example "journal.create") and the asset the operation concerns.
type FaultFunc func(op, assetID string) error

// Store holds all state.
type Store struct {
	mu sync.RWMutex

	assets    map[string]domain.Asset
	mappings  map[string]domain.AccountMapping
	journal   map[string]domain.JournalEntry
	journalIx []string
	postings  map[postingKey]domain.DepreciationPosting
	disposals map[string]domain.Disposal
	outbox    map[string]domain.OutboxEvent
	outboxIx  []string

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	faultMu sync.RWMutex
	fault   FaultFunc
}

type postingKey struct {
	assetID string
	period  string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		assets:    make(map[string]domain.Asset),
		mappings:  make(map[string]domain.AccountMapping),
		journal:   make(map[string]domain.JournalEntry),
		postings:  make(map[postingKey]domain.DepreciationPosting),
		disposals: make(map[string]domain.Disposal),
		outbox:    make(map[string]domain.OutboxEvent),
		locks:     make(map[string]chan struct{}),
	}
}

// InjectFault installs f; nil removes it.
func (s *Store) InjectFault(f FaultFunc) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.fault = f
}

func (s *Store) check(ctx context.Context, op, assetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.faultMu.RLock()
	f := s.fault
	s.faultMu.RUnlock()

	if f != nil {
		return f(op, assetID)
	}
	return nil
}

// TxManager returns the store's usecase.TransactionManager.
func (s *Store) TxManager() *TxManager { return &TxManager{store: s} }

// Assets returns the store's usecase.AssetRepository.
func (s *Store) Assets() *AssetRepository { return &AssetRepository{store: s} }

// Mappings returns the store's usecase.AccountMappingRepository.
func (s *Store) Mappings() *MappingRepository { return &MappingRepository{store: s} }

// Journal returns the store's usecase.JournalRepository.
func (s *Store) Journal() *JournalRepository { return &JournalRepository{store: s} }

// Postings returns the store's usecase.PostingRepository.
func (s *Store) Postings() *PostingRepository { return &PostingRepository{store: s} }

// Disposals returns the store's usecase.DisposalRepository.
func (s *Store) Disposals() *DisposalRepository { return &DisposalRepository{store: s} }

// Outbox returns the store's usecase.OutboxRepository.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{store: s} }

// Ledger returns the store's usecase.LedgerRepository.
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{store: s} }

// lockAsset blocks until the row lock for id is free or ctx ends.
func (s *Store) lockAsset(ctx context.Context, id string) error {
	s.locksMu.Lock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	s.locksMu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlockAsset(id string) {
	s.locksMu.Lock()
	ch := s.locks[id]
	s.locksMu.Unlock()

	if ch != nil {
		<-ch
	}
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store, locked: make(map[string]bool)}, nil
}

// Tx stages writes until Commit.
type Tx struct {
	store  *Store
	checks []func() error
	ops    []func()
	locked map[string]bool
	mu     sync.Mutex
	done   bool
}

func (t *Tx) stage(check func() error, op func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTxDone
	}
	if check != nil {
		t.checks = append(t.checks, check)
	}
	t.ops = append(t.ops, op)
	return nil
}

// Commit verifies constraints and applies the staged writes atomically.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTxDone
	}
	defer t.finish()

	if err := ctx.Err(); err != nil {
		return err
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for _, check := range t.checks {
		if err := check(); err != nil {
			return err
		}
	}
	for _, op := range t.ops {
		op()
	}

	return nil
}

// Rollback discards staged writes. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.done {
		t.finish()
	}
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.checks, t.ops = nil, nil
	for id := range t.locked {
		t.store.unlockAsset(id)
	}
	t.locked = nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, errors.New("memory: foreign transaction")
	}
	return t, nil
}

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalLine(nil), e.Lines...)
	return e
}

func cloneEvent(e domain.OutboxEvent) domain.OutboxEvent {
	payload := make(map[string]any, len(e.Payload))
	for k, v := range e.Payload {
		payload[k] = v
	}
	e.Payload = payload
	return e
}
