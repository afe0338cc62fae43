package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/banking/internal/domain"
	"github.com/iho/banking/internal/usecase"
)

// ErrTxDone is returned when a finished MemoryTx is used again.
var ErrTxDone = errors.New("transaction already committed or rolled back")

// MemoryStore is an in-memory store with the same constraints as the
// accounts table: unknown ids match no row and balances cannot go negative.
// Transactions are fully serialized.
type MemoryStore struct {
	txLock sync.Mutex

	mu       sync.RWMutex
	accounts map[int64]decimal.Decimal

	// BeginErr and CommitErr, when set, are returned by Begin and Commit.
	BeginErr  error
	CommitErr error
}

// NewMemoryStore creates a MemoryStore seeded with the given balances.
func NewMemoryStore(seed map[int64]decimal.Decimal) *MemoryStore {
	accounts := make(map[int64]decimal.Decimal, len(seed))
	for id, balance := range seed {
		accounts[id] = balance
	}

	return &MemoryStore{accounts: accounts}
}

// Begin starts a new transaction, blocking while another one is open.
func (s *MemoryStore) Begin(ctx context.Context) (usecase.Transaction, error) {
	if s.BeginErr != nil {
		return nil, s.BeginErr
	}

	s.txLock.Lock()

	return &MemoryTx{store: s, pending: make(map[int64]decimal.Decimal)}, nil
}

// GetBalance returns the committed balance of an account.
func (s *MemoryStore) GetBalance(ctx context.Context, id int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance, ok := s.accounts[id]
	if !ok {
		return decimal.Zero, domain.ErrAccountNotFound
	}

	return balance, nil
}

// AddToBalance stages a delta inside tx.
func (s *MemoryStore) AddToBalance(ctx context.Context, tx usecase.Transaction, id int64, delta decimal.Decimal) error {
	memTx := tx.(*MemoryTx)
	if memTx.done {
		return ErrTxDone
	}

	s.mu.RLock()
	committed, ok := s.accounts[id]
	s.mu.RUnlock()

	if !ok {
		return domain.ErrAccountNotFound
	}

	current := committed
	if staged, ok := memTx.pending[id]; ok {
		current = staged
	}

	acc := domain.Account{ID: id, Balance: current}
	if !acc.CanApply(delta) {
		return domain.ErrInsufficientFunds
	}

	memTx.pending[id] = acc.ApplyDelta(delta)

	return nil
}

// TotalBalance sums all committed balances.
func (s *MemoryStore) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, balance := range s.accounts {
		total = total.Add(balance)
	}

	return total, nil
}

// MemoryTx is a MemoryStore transaction.
type MemoryTx struct {
	store   *MemoryStore
	pending map[int64]decimal.Decimal
	done    bool
}

// Commit applies staged balances.
func (t *MemoryTx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}

	defer t.finish()

	if t.store.CommitErr != nil {
		return t.store.CommitErr
	}

	t.store.mu.Lock()
	for id, balance := range t.pending {
		t.store.accounts[id] = balance
	}
	t.store.mu.Unlock()

	return nil
}

// Rollback discards staged balances. It is a no-op after Commit.
func (t *MemoryTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}

	t.finish()

	return nil
}

func (t *MemoryTx) finish() {
	t.done = true
	t.pending = nil
	t.store.txLock.Unlock()
}
