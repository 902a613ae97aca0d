package memory

import (
	"context"
	"fmt"

	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/module/summary"
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// Source keeps the full history in memory behind an unbounded store.
// It has no chart renderer, so both charts are always nil.
type Source struct {
	store *ledger.Store
	log   *logger.Logger
}

// New creates a source holding seed
func New(seed *ledger.Snapshot, log *logger.Logger) (*Source, error) {
	if log == nil {
		log = logger.Discard()
	}
	if seed == nil {
		seed = &ledger.Snapshot{}
	}

	store := ledger.NewStore(0)
	if err := store.Load(context.Background(), ledger.StaticLoader(seed)); err != nil {
		return nil, fmt.Errorf("failed to seed memory source: %w", err)
	}

	return &Source{
		store: store,
		log:   log.WithComponent("memory"),
	}, nil
}

// NewFromFile seeds from a YAML file, or the built-in data when path is empty
func NewFromFile(path string, log *logger.Logger) (*Source, error) {
	if path == "" {
		return New(DefaultSeed(), log)
	}
	seed, err := LoadSeedFile(path)
	if err != nil {
		return nil, err
	}
	return New(seed, log)
}

// Snapshot returns a copy of everything, keeping the newest limit transactions when limit > 0
func (s *Source) Snapshot(_ context.Context, limit int) (*ledger.Snapshot, error) {
	return s.store.Snapshot().Clone(limit), nil
}

// Transactions returns the newest limit transactions, or all when limit <= 0
func (s *Source) Transactions(_ context.Context, limit int) []*transaction.Transaction {
	txs := s.store.Transactions()
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs
}

// Balances maps every account name to its balance
func (s *Source) Balances(_ context.Context) map[string]float64 {
	accounts := s.store.Accounts()
	out := make(map[string]float64, len(accounts))
	for _, a := range accounts {
		out[a.Name] = a.Balance
	}
	return out
}

// CreateTransaction records tx and moves the referenced balances
func (s *Source) CreateTransaction(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	stored, changes, err := s.store.InsertTransaction(tx)
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		s.log.WithContext(ctx).
			WithField("transaction_id", stored.ID.String()).
			WithField("account", c.Account).
			WithField("before", c.Before).
			WithField("after", c.After).
			Debug("balance changed")
	}

	return stored, nil
}

// CreateAccount adds acc
func (s *Source) CreateAccount(_ context.Context, acc *account.Account) (*account.Account, error) {
	return s.store.InsertAccount(acc)
}

// SpendingByCategory computes spending from the stored history
func (s *Source) SpendingByCategory(_ context.Context, r transaction.DateRange) map[string]float64 {
	return summary.SpendingByCategory(s.store.Transactions(), r)
}

// CategoryChart is not rendered in memory
func (s *Source) CategoryChart(context.Context, transaction.DateRange) *string {
	return nil
}

// MonthlyChart is not rendered in memory
func (s *Source) MonthlyChart(context.Context) *string {
	return nil
}
