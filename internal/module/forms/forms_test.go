package forms

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
)

var fixedDay = civil.Date{Year: 2025, Month: 7, Day: 11}

func fixedToday() civil.Date { return fixedDay }

func seededStore(t *testing.T) *ledger.Store {
	t.Helper()
	s := ledger.NewStore(10)
	snap := &ledger.Snapshot{
		Accounts: []*account.Account{
			{ID: account.NewID(), Name: "Wallet", Kind: account.KindPersonal, Balance: 5000},
		},
		Transactions: []*transaction.Transaction{
			{ID: transaction.NewID(), OccurredOn: fixedDay, Description: "Lunch", Label: "Lunch", Amount: 200, Direction: transaction.DirectionDebit, Category: "Food", Account: "Wallet"},
		},
	}
	require.NoError(t, s.Load(context.Background(), ledger.StaticLoader(snap)))
	return s
}

func commitTo(s *ledger.Store) CommitFunc[*transaction.Transaction] {
	return func(_ context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
		stored, _, err := s.InsertTransaction(tx)
		return stored, err
	}
}

func fill(t *testing.T, f *TransactionForm) {
	t.Helper()
	_, err := f.SetAll(map[string]string{
		"description": "Coffee",
		"name":        "Coffee Shop",
		"amount":      "150",
		"category":    "Food",
		"account":     "Wallet",
	})
	require.NoError(t, err)
}

func TestTransactionForm_OpenUsesDefaults(t *testing.T) {
	f := NewTransactionForm(fixedToday)
	assert.Equal(t, StateClosed, f.State())
	assert.Nil(t, f.View().Draft)

	d, err := f.Open()
	require.NoError(t, err)
	assert.Equal(t, StateOpen, f.State())
	assert.Equal(t, "2025-07-11", d.Date)
	assert.Equal(t, "debit", d.Direction)
}

func TestTransactionForm_CancelLeavesStoreUnchanged(t *testing.T) {
	s := seededStore(t)
	before := s.Transactions()

	f := NewTransactionForm(fixedToday)
	_, err := f.Open()
	require.NoError(t, err)
	fill(t, f)

	require.NoError(t, f.Cancel())
	assert.Equal(t, StateClosed, f.State())

	_, err = f.Submit(context.Background(), commitTo(s))
	assert.ErrorIs(t, err, ErrDialogClosed)
	assert.Equal(t, before, s.Transactions())
}

func TestTransactionForm_ReopenStartsFresh(t *testing.T) {
	f := NewTransactionForm(fixedToday)
	_, err := f.Open()
	require.NoError(t, err)
	fill(t, f)
	require.NoError(t, f.Cancel())

	d, err := f.Open()
	require.NoError(t, err)
	assert.Equal(t, transaction.DefaultDraft(fixedDay), d)
}

func TestTransactionForm_SubmitCommits(t *testing.T) {
	s := seededStore(t)
	f := NewTransactionForm(fixedToday)
	_, err := f.Open()
	require.NoError(t, err)
	fill(t, f)

	tx, err := f.Submit(context.Background(), commitTo(s))
	require.NoError(t, err)

	assert.Equal(t, StateClosed, f.State())
	assert.Equal(t, "Coffee Shop", tx.Label)
	txs := s.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, tx.ID, txs[0].ID)
}

func TestTransactionForm_ValidationKeepsDialogOpen(t *testing.T) {
	f := NewTransactionForm(fixedToday)
	_, err := f.Open()
	require.NoError(t, err)
	fill(t, f)
	_, err = f.Set("amount", "abc")
	require.NoError(t, err)

	called := false
	_, err = f.Submit(context.Background(), func(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
		called = true
		return tx, nil
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.False(t, called)
	assert.Equal(t, StateOpen, f.State())
	assert.Equal(t, "abc", f.View().Draft.Amount)
}

func TestTransactionForm_CommitFailureCloses(t *testing.T) {
	f := NewTransactionForm(fixedToday)
	_, err := f.Open()
	require.NoError(t, err)
	fill(t, f)

	boom := apperrors.Network("create transaction", errors.New("connection refused"))
	_, err = f.Submit(context.Background(), func(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateClosed, f.State())
}

func TestTransactionForm_SubmittingState(t *testing.T) {
	f := NewTransactionForm(fixedToday)
	_, err := f.Open()
	require.NoError(t, err)
	fill(t, f)

	_, err = f.Submit(context.Background(), func(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
		assert.Equal(t, StateSubmitting, f.State())
		assert.ErrorIs(t, f.Cancel(), ErrDialogSubmitting)
		_, openErr := f.Open()
		assert.ErrorIs(t, openErr, ErrDialogSubmitting)
		return tx, nil
	})
	require.NoError(t, err)
}

func TestTransactionForm_SetErrors(t *testing.T) {
	f := NewTransactionForm(fixedToday)

	_, err := f.Set("amount", "10")
	assert.ErrorIs(t, err, ErrDialogClosed)

	_, err = f.Open()
	require.NoError(t, err)

	_, err = f.Set("toaccount", "Bank")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = f.SetAll(map[string]string{"amount": "10", "colour": "red"})
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Empty(t, f.View().Draft.Amount)
}

func TestAccountForm_FriendAndPersonal(t *testing.T) {
	f := NewAccountForm()

	d, err := f.Open()
	require.NoError(t, err)
	assert.Equal(t, "personal", d.Kind)

	_, err = f.SetAll(map[string]string{"name": "Savings", "initial_balance": "1000", "contact": "me@example.com"})
	require.NoError(t, err)

	acc, err := f.Submit(context.Background(), func(_ context.Context, a *account.Account) (*account.Account, error) {
		return a, nil
	})
	require.NoError(t, err)
	assert.Empty(t, acc.Contact)

	_, err = f.Open()
	require.NoError(t, err)
	_, err = f.SetAll(map[string]string{"name": "John Doe", "kind": "friend", "initial_balance": "2000", "contact": "john@example.com"})
	require.NoError(t, err)

	acc, err = f.Submit(context.Background(), func(_ context.Context, a *account.Account) (*account.Account, error) {
		return a, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", acc.Contact)
}
