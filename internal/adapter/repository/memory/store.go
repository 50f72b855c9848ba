package memory

import (
	"context"
	"sync"

	"github.com/api-sage/banking-ledger/internal/domain"
)

type txContextKey struct{}

// Store is an in-memory ledger holding customers, accounts and transfers. It
// backs the repositories in this package and stands in for Postgres when
// exercising the transfer orchestrator, the conditional-update contract and
// the idempotency guard in isolation.
//
// One mutex serializes atomic units. WithinTransaction snapshots the maps
// before running fn and restores them if fn fails, so a unit either commits
// whole or leaves no trace, matching the SQL transaction runner.
type Store struct {
	mu            sync.Mutex
	customers     map[string]domain.Customer
	accounts      map[string]domain.Account
	transfers     map[string]domain.Transfer
	byAccountNum  map[string]string
	byIdempotency map[string]string
}

func NewStore() *Store {
	return &Store{
		customers:     make(map[string]domain.Customer),
		accounts:      make(map[string]domain.Account),
		transfers:     make(map[string]domain.Transfer),
		byAccountNum:  make(map[string]string),
		byIdempotency: make(map[string]string),
	}
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txContextKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, txContextKey{}, s)); err != nil {
		s.restore(snapshot)
		return err
	}

	return nil
}

// locked runs fn under the store mutex unless the context already belongs to
// an open transaction, which holds the mutex for its whole extent.
func (s *Store) locked(ctx context.Context, fn func() error) error {
	if ctx.Value(txContextKey{}) != nil {
		return fn()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type storeSnapshot struct {
	customers     map[string]domain.Customer
	accounts      map[string]domain.Account
	transfers     map[string]domain.Transfer
	byAccountNum  map[string]string
	byIdempotency map[string]string
}

func (s *Store) snapshot() storeSnapshot {
	return storeSnapshot{
		customers:     copyMap(s.customers),
		accounts:      copyMap(s.accounts),
		transfers:     copyMap(s.transfers),
		byAccountNum:  copyMap(s.byAccountNum),
		byIdempotency: copyMap(s.byIdempotency),
	}
}

func (s *Store) restore(snap storeSnapshot) {
	s.customers = snap.customers
	s.accounts = snap.accounts
	s.transfers = snap.transfers
	s.byAccountNum = snap.byAccountNum
	s.byIdempotency = snap.byIdempotency
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
