// Package memory keeps every repository in process memory. It backs service and
// handler tests and local runs without a database, and enforces the same uniqueness
// and cascade rules as the Postgres schema.
package memory

import (
	"context"
	"maps"
	"sync"

	"vault/internal/domain/models"
	"vault/internal/domain/models/docsystem"
	"vault/internal/domain/repositories"
)

type linkKey struct {
	documentID string
	tagID      string
}

type snapshot struct {
	users     map[string]models.User
	documents map[string]docsystem.Document
	tags      map[string]docsystem.Tag
	links     map[linkKey]docsystem.DocumentTag
}

// Store holds the tables shared by the memory repositories
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data snapshot
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{data: snapshot{
		users:     map[string]models.User{},
		documents: map[string]docsystem.Document{},
		tags:      map[string]docsystem.Tag{},
		links:     map[linkKey]docsystem.DocumentTag{},
	}}
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:     maps.Clone(s.data.users),
		documents: maps.Clone(s.data.documents),
		tags:      maps.Clone(s.data.tags),
		links:     maps.Clone(s.data.links),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = snap
}

type txKey struct{}

// inTx reports whether ctx belongs to a unit of work running on this store
func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) == s
}

// lockWrite takes the write lock. Writes outside a unit of work also wait for the
// running one to finish, so a rollback only ever discards its own changes.
func (s *Store) lockWrite(ctx context.Context) (unlock func()) {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// TransactionManager serializes units of work and rolls the store back when one fails.
// Reads never block on a running unit of work.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager over store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn atomically. Nested calls join the outer unit of work.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if tm.store.inTx(ctx) {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	snap := tm.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, tm.store)); err != nil {
		tm.store.restore(snap)
		return err
	}
	return nil
}

func cloneMap(m models.JSONMap) models.JSONMap {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
