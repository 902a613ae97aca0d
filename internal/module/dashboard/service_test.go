package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/fintrack/internal/infra/memory"
	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/module/forms"
	"github.com/kislikjeka/fintrack/internal/module/summary"
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
	"github.com/kislikjeka/fintrack/pkg/money"
)

func today() civil.Date { return civil.Date{Year: 2025, Month: 7, Day: 11} }

func newSeeded(t *testing.T) (*Service, *memory.Source) {
	t.Helper()
	src, err := memory.New(memory.DefaultSeed(), nil)
	require.NoError(t, err)

	svc := NewService(ledger.NewStore(10), src, nil, WithClock(today))
	require.NoError(t, svc.Load(context.Background()))
	return svc, src
}

// failingBackend fails every read the way a dead remote API would through the degrading adapter
type failingBackend struct {
	snapshotErr error
	created     int
}

func (b *failingBackend) Snapshot(context.Context, int) (*ledger.Snapshot, error) {
	if b.snapshotErr != nil {
		return nil, b.snapshotErr
	}
	return &ledger.Snapshot{}, nil
}

func (b *failingBackend) CreateTransaction(context.Context, *transaction.Transaction) (*transaction.Transaction, error) {
	b.created++
	return nil, errors.New("connection refused")
}

func (b *failingBackend) CreateAccount(_ context.Context, acc *account.Account) (*account.Account, error) {
	return acc, nil
}

func (b *failingBackend) SpendingByCategory(context.Context, transaction.DateRange) map[string]float64 {
	return map[string]float64{}
}

func (b *failingBackend) CategoryChart(context.Context, transaction.DateRange) *string { return nil }

func (b *failingBackend) MonthlyChart(context.Context) *string { return nil }

func TestLoad_SeedView(t *testing.T) {
	svc, _ := newSeeded(t)

	v := svc.View()
	assert.Equal(t, ledger.StatusReady, v.Status)
	assert.Len(t, v.PersonalAccounts, 3)
	assert.Len(t, v.FriendAccounts, 3)
	assert.Len(t, v.Transactions, 6)

	assert.Equal(t, 28000.0, v.Overview.PersonalBalance)
	assert.Equal(t, 2500.0, v.Overview.TotalLent)
	assert.Equal(t, 1500.0, v.Overview.TotalOwed)
	assert.Equal(t, 29000.0, v.Overview.NetWorth)
	assert.Equal(t, 50000.0, v.Overview.TotalIncome)
	assert.Equal(t, 350.0, v.Overview.TotalExpenses)
	assert.Equal(t, summary.MoodAwesome, v.Overview.Mood)

	assert.Equal(t, 29000.0, v.TotalBalance)
	assert.Equal(t, map[string]float64{"Food": 350}, v.Spending)
	assert.Equal(t, "₹29000.00", v.OverviewDisplay.NetWorth)
	assert.False(t, v.HasCategoryChart)
	assert.Equal(t, forms.StateClosed, v.Dialogs.Transaction.State)
}

func TestView_DisplayPrefixes(t *testing.T) {
	svc, _ := newSeeded(t)

	byLabel := map[string]TransactionView{}
	for _, tv := range svc.View().Transactions {
		byLabel[tv.Label] = tv
	}

	assert.Equal(t, "-₹200.00", byLabel["Lunch"].Display)
	assert.Equal(t, "+₹50000.00", byLabel["Salary"].Display)
	assert.Equal(t, "↗₹2000.00", byLabel["Lent to John"].Display)
	assert.Equal(t, transaction.FlowOut, byLabel["Lent to John"].Flow)
	assert.Equal(t, "↙₹1500.00", byLabel["Borrowed from Jane"].Display)
}

func TestToggleVisibility_MasksDisplayOnly(t *testing.T) {
	svc, _ := newSeeded(t)

	assert.True(t, svc.ToggleVisibility())
	v := svc.View()

	assert.True(t, v.Hidden)
	assert.Equal(t, money.Mask, v.OverviewDisplay.NetWorth)
	assert.Equal(t, money.Mask, v.PersonalAccounts[0].Display)
	assert.Equal(t, money.Mask, v.Transactions[0].Display)
	assert.Equal(t, 29000.0, v.Overview.NetWorth)

	assert.False(t, svc.ToggleVisibility())
	assert.Equal(t, "₹5000.00 CR", svc.View().PersonalAccounts[0].Display)
}

func TestSubmitTransaction_WritesThroughAndRefetches(t *testing.T) {
	svc, src := newSeeded(t)
	ctx := context.Background()

	d, err := svc.TransactionDialog().Open()
	require.NoError(t, err)
	assert.Equal(t, "2025-07-11", d.Date)

	_, err = svc.TransactionDialog().SetAll(map[string]string{
		"description": "Paycheck",
		"name":        "Salary",
		"amount":      "1000",
		"type":        "credit",
		"category":    "Salary",
		"account":     "Bank Account",
	})
	require.NoError(t, err)

	before := svc.View().Overview
	tx, err := svc.SubmitTransaction(ctx)
	require.NoError(t, err)

	v := svc.View()
	assert.Equal(t, tx.ID, v.Transactions[0].ID)
	assert.Equal(t, before.TotalIncome+1000, v.Overview.TotalIncome)
	assert.Equal(t, before.TotalExpenses, v.Overview.TotalExpenses)
	assert.Equal(t, 26000.0, v.Balances["Bank Account"])
	assert.Equal(t, 26000.0, src.Balances(ctx)["Bank Account"])
	assert.Equal(t, forms.StateClosed, v.Dialogs.Transaction.State)
}

func TestSubmitTransaction_BoundedView(t *testing.T) {
	svc, src := newSeeded(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.TransactionDialog().Open()
		require.NoError(t, err)
		_, err = svc.TransactionDialog().SetAll(map[string]string{
			"description": "Snack", "name": "Snack", "amount": "10", "category": "Food", "account": "Wallet",
		})
		require.NoError(t, err)
		_, err = svc.SubmitTransaction(ctx)
		require.NoError(t, err)
	}

	assert.Len(t, svc.Transactions(), 10)
	assert.Len(t, src.Transactions(ctx, 0), 11)
}

func TestSubmitTransaction_UnknownAccount(t *testing.T) {
	svc, src := newSeeded(t)
	ctx := context.Background()

	_, err := svc.TransactionDialog().Open()
	require.NoError(t, err)
	_, err = svc.TransactionDialog().SetAll(map[string]string{
		"description": "x", "name": "x", "amount": "10", "category": "Food", "account": "Piggy Bank",
	})
	require.NoError(t, err)

	_, err = svc.SubmitTransaction(ctx)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	assert.Len(t, src.Transactions(ctx, 0), 6)
	assert.Equal(t, forms.StateClosed, svc.TransactionDialog().State())
}

func TestSubmitAccount(t *testing.T) {
	svc, _ := newSeeded(t)

	_, err := svc.AccountDialog().Open()
	require.NoError(t, err)
	_, err = svc.AccountDialog().SetAll(map[string]string{
		"name": "Priya", "kind": "friend", "initial_balance": "750", "contact": "priya@example.com",
	})
	require.NoError(t, err)

	acc, err := svc.SubmitAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", acc.Contact)

	v := svc.View()
	assert.Len(t, v.FriendAccounts, 4)
	assert.Equal(t, 3250.0, v.Overview.TotalLent)
}

func TestLoad_DegradedBackendStillLoads(t *testing.T) {
	svc := NewService(ledger.NewStore(10), &failingBackend{}, nil)

	require.NoError(t, svc.Load(context.Background()))
	v := svc.View()
	assert.Equal(t, ledger.StatusReady, v.Status)
	assert.Empty(t, v.Balances)
	assert.Empty(t, v.Spending)
	assert.Zero(t, v.Overview.NetWorth)
}

func TestLoad_SnapshotFailure(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(ledger.NewStore(10), &failingBackend{snapshotErr: boom}, nil)

	err := svc.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	v := svc.View()
	assert.Equal(t, ledger.StatusFailed, v.Status)
	assert.NotEmpty(t, v.Error)
}

// gatedSpendingBackend holds its first spending call until release is closed
type gatedSpendingBackend struct {
	*failingBackend
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *gatedSpendingBackend) SpendingByCategory(context.Context, transaction.DateRange) map[string]float64 {
	if b.calls.Add(1) == 1 {
		close(b.started)
		<-b.release
		return map[string]float64{"Food": 1}
	}
	return map[string]float64{"Food": 2}
}

func TestLoad_OlderLoadDoesNotOverwriteNewer(t *testing.T) {
	backend := &gatedSpendingBackend{
		failingBackend: &failingBackend{},
		started:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	svc := NewService(ledger.NewStore(10), backend, nil)
	ctx := context.Background()

	older := make(chan error, 1)
	go func() { older <- svc.Load(ctx) }()
	<-backend.started

	require.NoError(t, svc.Load(ctx))
	assert.Equal(t, map[string]float64{"Food": 2}, svc.View().Spending)

	close(backend.release)
	require.NoError(t, <-older)
	assert.Equal(t, map[string]float64{"Food": 2}, svc.View().Spending)
}
