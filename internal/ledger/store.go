package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// Status is the load state of a Store
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Store owns the committed accounts and transactions.
// Transactions are kept most recent first; when limit > 0 only the newest limit are retained.
type Store struct {
	mu sync.RWMutex

	limit        int
	accounts     []*account.Account
	transactions []*transaction.Transaction

	status     Status
	lastErr    error
	generation uint64
	hidden     bool
}

// NewStore creates an empty store. limit <= 0 keeps the full history.
func NewStore(limit int) *Store {
	return &Store{
		limit:  limit,
		status: StatusIdle,
	}
}

// Limit returns the number of transactions the store retains, 0 for unbounded
func (s *Store) Limit() int {
	return s.limit
}

// Load replaces all accounts and transactions with what loader returns.
// Every call starts a new generation; if another Load starts before this one
// finishes, this result is dropped and ErrStaleLoad is returned.
func (s *Store) Load(ctx context.Context, loader Loader) error {
	if loader == nil {
		return ErrNilLoader
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.status = StatusLoading
	s.mu.Unlock()

	snap, err := loader.Snapshot(ctx, s.limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return ErrStaleLoad
	}

	if err != nil {
		s.status = StatusFailed
		s.lastErr = err
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	if snap == nil {
		snap = &Snapshot{}
	}

	fresh := snap.Clone(s.limit)
	s.accounts = fresh.Accounts
	s.transactions = fresh.Transactions
	s.status = StatusReady
	s.lastErr = nil

	return nil
}

// Status returns the load state and the error of the last failed load
func (s *Store) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.lastErr
}

// AddAccount validates a form draft and inserts the resulting account
func (s *Store) AddAccount(draft account.Draft) (*account.Account, error) {
	acc, err := draft.Build()
	if err != nil {
		return nil, err
	}
	return s.InsertAccount(acc)
}

// InsertAccount appends an already built account.
// Names must be unique within a kind, ignoring case.
func (s *Store) InsertAccount(acc *account.Account) (*account.Account, error) {
	if err := acc.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := account.NameKey(acc.Name)
	for _, existing := range s.accounts {
		if existing.Kind == acc.Kind && account.NameKey(existing.Name) == key {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAccount, acc.Name)
		}
	}

	stored := acc.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = account.NewID()
	}
	s.accounts = append(s.accounts, stored)

	return stored.Clone(), nil
}

// AddTransaction validates a form draft and inserts the resulting transaction
func (s *Store) AddTransaction(draft transaction.Draft) (*transaction.Transaction, []BalanceChange, error) {
	tx, err := draft.Build()
	if err != nil {
		return nil, nil, err
	}
	return s.InsertTransaction(tx)
}

// InsertTransaction puts tx at the front of the history and applies it to the
// referenced balances under the same lock, so readers never see one without the other.
// Accounts are referenced by name and must exist.
func (s *Store) InsertTransaction(tx *transaction.Transaction) (*transaction.Transaction, []BalanceChange, error) {
	if err := tx.Validate(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.lookup(tx.Account)
	if src == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrAccountNotFound, tx.Account)
	}

	var dst *account.Account
	if tx.Direction == transaction.DirectionTransfer {
		dst = s.lookup(tx.ToAccount)
		if dst == nil {
			return nil, nil, fmt.Errorf("%w: %q", ErrDestinationNotFound, tx.ToAccount)
		}
	}

	stored := tx.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = transaction.NewID()
	}

	changes := ApplyTransaction(stored, src, dst)

	s.transactions = append([]*transaction.Transaction{stored}, s.transactions...)
	if s.limit > 0 && len(s.transactions) > s.limit {
		s.transactions = s.transactions[:s.limit]
	}

	return stored.Clone(), changes, nil
}

// lookup finds an account by name, personal accounts first. Caller holds the lock.
func (s *Store) lookup(name string) *account.Account {
	key := account.NameKey(name)
	var friend *account.Account
	for _, a := range s.accounts {
		if account.NameKey(a.Name) != key {
			continue
		}
		if a.IsPersonal() {
			return a
		}
		if friend == nil {
			friend = a
		}
	}
	return friend
}

// Account returns a copy of the account with the given name
func (s *Store) Account(name string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.lookup(name)
	if a == nil {
		return nil, fmt.Errorf("%w: %q", ErrAccountNotFound, name)
	}
	return a.Clone(), nil
}

// Accounts returns copies of all accounts in insertion order
func (s *Store) Accounts() []*account.Account {
	return s.filterAccounts(func(*account.Account) bool { return true })
}

// PersonalAccounts returns copies of the user's own accounts
func (s *Store) PersonalAccounts() []*account.Account {
	return s.filterAccounts((*account.Account).IsPersonal)
}

// FriendAccounts returns copies of the lending accounts
func (s *Store) FriendAccounts() []*account.Account {
	return s.filterAccounts((*account.Account).IsFriend)
}

func (s *Store) filterAccounts(keep func(*account.Account) bool) []*account.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*account.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// Transactions returns copies of the retained transactions, most recent first
func (s *Store) Transactions() []*transaction.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*transaction.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, tx.Clone())
	}
	return out
}

// Snapshot returns a copy of the committed state
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{Accounts: s.accounts, Transactions: s.transactions}
	return snap.Clone(0)
}

// ToggleVisibility flips whether formatted amounts are masked and returns the new value
func (s *Store) ToggleVisibility() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden = !s.hidden
	return s.hidden
}

// Hidden reports whether formatted amounts are masked
func (s *Store) Hidden() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hidden
}
