// Package memory is an in-process storage backend for development and tests.
// It implements every domain repository over plain maps and a transaction
// manager that restores a snapshot when a transaction or savepoint fails.
//
// Writers are serialized by the transaction lock; reads outside a transaction
// may observe uncommitted writes.
package memory

import (
	"context"
	"sync"

	"marketbill/internal/core/id"
	"marketbill/internal/core/tx"
	"marketbill/internal/domain/billing"
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/domain/catalogs/meter"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/domain/documents/reading"
)

// state is the whole data set. Stored entities are never mutated in place,
// so cloning the maps is enough for a snapshot.
type state struct {
	markets     map[id.ID]*market.Market
	shops       map[id.ID]*shop.Shop
	meters      map[id.ID]*meter.Meter
	tariffs     map[id.ID]*tariff.Tariff
	readings    map[id.ID]*reading.Reading
	costs       map[id.ID]*monthlycost.MonthlyCost
	invoices    map[id.ID]*invoice.Invoice
	items       map[id.ID][]invoice.Item
	adjustments map[id.ID]*invoice.Adjustment
	outbox      []OutboxRecord
}

func newState() *state {
	return &state{
		markets:     map[id.ID]*market.Market{},
		shops:       map[id.ID]*shop.Shop{},
		meters:      map[id.ID]*meter.Meter{},
		tariffs:     map[id.ID]*tariff.Tariff{},
		readings:    map[id.ID]*reading.Reading{},
		costs:       map[id.ID]*monthlycost.MonthlyCost{},
		invoices:    map[id.ID]*invoice.Invoice{},
		items:       map[id.ID][]invoice.Item{},
		adjustments: map[id.ID]*invoice.Adjustment{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		markets:     cloneMap(s.markets),
		shops:       cloneMap(s.shops),
		meters:      cloneMap(s.meters),
		tariffs:     cloneMap(s.tariffs),
		readings:    cloneMap(s.readings),
		costs:       cloneMap(s.costs),
		invoices:    cloneMap(s.invoices),
		items:       cloneMap(s.items),
		adjustments: cloneMap(s.adjustments),
		outbox:      append([]OutboxRecord(nil), s.outbox...),
	}
}

// Store owns the data set. The run log lives outside state so that
// rolling back a transaction never drops runs recorded by other callers.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state

	runsMu sync.RWMutex
	runs   []billing.RunRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// --- Transactions ---

// Compile-time check that TxManager implements tx.Manager interface.
var _ tx.Manager = (*TxManager)(nil)

type txKey struct{}

// TxManager implements tx.Manager with snapshots.
type TxManager struct {
	store *Store
}

// TxManager returns the transaction manager of the store.
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// RunInTransaction runs fn atomically. Nested calls join the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	return m.store.savepoint(context.WithValue(ctx, txKey{}, true), fn)
}

// RunInSavepoint runs fn and undoes only its writes when it fails.
func (m *TxManager) RunInSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == nil {
		return m.RunInTransaction(ctx, fn)
	}
	return m.store.savepoint(ctx, fn)
}

// ReadOnly runs fn without taking the writer lock.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}
