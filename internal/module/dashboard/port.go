package dashboard

import (
	"context"

	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// Backend is where committed data lives: the in-memory seed source or the remote finance API.
// Reads other than Snapshot never fail; they degrade to empty maps and nil charts.
type Backend interface {
	ledger.Loader

	CreateTransaction(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error)
	CreateAccount(ctx context.Context, acc *account.Account) (*account.Account, error)

	SpendingByCategory(ctx context.Context, r transaction.DateRange) map[string]float64
	CategoryChart(ctx context.Context, r transaction.DateRange) *string
	MonthlyChart(ctx context.Context) *string
}
