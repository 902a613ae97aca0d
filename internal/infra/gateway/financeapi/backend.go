package financeapi

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/module/dashboard"
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// Backend serves the dashboard from the finance API.
// The API has no account resource, so accounts live in a local directory and
// take their balances from GET /balances by name. Names only the server knows
// show up as personal accounts.
type Backend struct {
	svc *Service

	mu        sync.RWMutex
	directory []*account.Account
}

// Compile-time check that Backend implements dashboard.Backend
var _ dashboard.Backend = (*Backend)(nil)

// NewBackend creates a backend with a starting account directory
func NewBackend(svc *Service, accounts []*account.Account) *Backend {
	dir := make([]*account.Account, 0, len(accounts))
	for _, a := range accounts {
		dir = append(dir, a.Clone())
	}
	return &Backend{svc: svc, directory: dir}
}

// Snapshot fetches transactions and balances concurrently. It never fails:
// a dead API yields no transactions and directory balances.
func (b *Backend) Snapshot(ctx context.Context, limit int) (*ledger.Snapshot, error) {
	var (
		txs      []*transaction.Transaction
		balances map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs = b.svc.GetTransactions(gctx, limit)
		return nil
	})
	g.Go(func() error {
		balances = b.svc.GetBalances(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ledger.Snapshot{
		Accounts:     b.mergeBalances(balances),
		Transactions: txs,
	}, nil
}

// mergeBalances overlays server balances on the directory
func (b *Backend) mergeBalances(balances map[string]float64) []*account.Account {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*account.Account, 0, len(b.directory)+len(balances))
	known := make(map[string]bool, len(b.directory))
	for _, a := range b.directory {
		c := a.Clone()
		if bal, ok := balances[a.Name]; ok {
			c.Balance = bal
		}
		known[account.NameKey(a.Name)] = true
		out = append(out, c)
	}

	var extra []string
	for name := range balances {
		if !known[account.NameKey(name)] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	for _, name := range extra {
		out = append(out, &account.Account{
			ID:      account.IDForName(name),
			Name:    name,
			Kind:    account.KindPersonal,
			Balance: balances[name],
		})
	}
	return out
}

// CreateTransaction posts the transaction to the API
func (b *Backend) CreateTransaction(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	return b.svc.CreateTransaction(ctx, tx)
}

// CreateAccount adds the account to the local directory
func (b *Backend) CreateAccount(_ context.Context, acc *account.Account) (*account.Account, error) {
	if err := acc.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := account.NameKey(acc.Name)
	for _, a := range b.directory {
		if a.Kind == acc.Kind && account.NameKey(a.Name) == key {
			return nil, fmt.Errorf("%w: %q", ledger.ErrDuplicateAccount, acc.Name)
		}
	}

	stored := acc.Clone()
	b.directory = append(b.directory, stored)
	return stored.Clone(), nil
}

// SpendingByCategory is computed server-side
func (b *Backend) SpendingByCategory(ctx context.Context, r transaction.DateRange) map[string]float64 {
	return b.svc.GetSpendingByCategory(ctx, r)
}

// CategoryChart is rendered server-side
func (b *Backend) CategoryChart(ctx context.Context, r transaction.DateRange) *string {
	return b.svc.GetCategoryChart(ctx, r)
}

// MonthlyChart is rendered server-side
func (b *Backend) MonthlyChart(ctx context.Context) *string {
	return b.svc.GetMonthlyChart(ctx)
}
