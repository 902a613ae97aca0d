package ledger

import (
	"context"

	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// Snapshot is a full copy of the accounts and transactions, most recent transaction first
type Snapshot struct {
	Accounts     []*account.Account         `json:"accounts"`
	Transactions []*transaction.Transaction `json:"transactions"`
}

// Loader fetches the data a Store is rehydrated from.
// limit <= 0 means every transaction.
type Loader interface {
	Snapshot(ctx context.Context, limit int) (*Snapshot, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context, limit int) (*Snapshot, error)

// Snapshot calls f(ctx, limit)
func (f LoaderFunc) Snapshot(ctx context.Context, limit int) (*Snapshot, error) {
	return f(ctx, limit)
}

// StaticLoader always returns a copy of snap
func StaticLoader(snap *Snapshot) Loader {
	return LoaderFunc(func(_ context.Context, limit int) (*Snapshot, error) {
		return snap.Clone(limit), nil
	})
}

// Clone deep-copies the snapshot, keeping at most limit transactions when limit > 0
func (s *Snapshot) Clone(limit int) *Snapshot {
	out := &Snapshot{
		Accounts:     make([]*account.Account, 0, len(s.Accounts)),
		Transactions: make([]*transaction.Transaction, 0, len(s.Transactions)),
	}
	for _, a := range s.Accounts {
		out.Accounts = append(out.Accounts, a.Clone())
	}
	for i, tx := range s.Transactions {
		if limit > 0 && i >= limit {
			break
		}
		out.Transactions = append(out.Transactions, tx.Clone())
	}
	return out
}
