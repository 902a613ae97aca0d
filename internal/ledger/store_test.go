package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Accounts: []*account.Account{
			{ID: account.IDForName("Wallet"), Name: "Wallet", Kind: account.KindPersonal, Balance: 5000},
			{ID: account.IDForName("Bank Account"), Name: "Bank Account", Kind: account.KindPersonal, Balance: 25000},
			{ID: account.IDForName("John Doe"), Name: "John Doe", Kind: account.KindFriend, Balance: 2000, Contact: "john@example.com"},
		},
		Transactions: []*transaction.Transaction{
			{
				ID:          transaction.NewID(),
				OccurredOn:  civil.Date{Year: 2025, Month: 7, Day: 10},
				Description: "Lunch",
				Label:       "Lunch",
				Amount:      200,
				Direction:   transaction.DirectionDebit,
				Category:    "Food",
				Account:     "Wallet",
			},
		},
	}
}

func loadedStore(t *testing.T, limit int) *Store {
	t.Helper()
	s := NewStore(limit)
	require.NoError(t, s.Load(context.Background(), StaticLoader(testSnapshot())))
	return s
}

func draftFor(account, direction, amount string) transaction.Draft {
	return transaction.Draft{
		Date:        "2025-07-11",
		Description: "test",
		Label:       "test",
		Amount:      amount,
		Direction:   direction,
		Category:    "Misc",
		Account:     account,
	}
}

func TestStore_LoadTransitions(t *testing.T) {
	s := NewStore(0)
	status, err := s.Status()
	assert.Equal(t, StatusIdle, status)
	assert.NoError(t, err)

	require.NoError(t, s.Load(context.Background(), StaticLoader(testSnapshot())))

	status, _ = s.Status()
	assert.Equal(t, StatusReady, status)
	assert.Len(t, s.Accounts(), 3)
	assert.Len(t, s.PersonalAccounts(), 2)
	assert.Len(t, s.FriendAccounts(), 1)
	assert.Len(t, s.Transactions(), 1)
}

func TestStore_LoadFailure(t *testing.T) {
	s := NewStore(0)
	boom := errors.New("boom")

	err := s.Load(context.Background(), LoaderFunc(func(context.Context, int) (*Snapshot, error) {
		return nil, boom
	}))
	require.ErrorIs(t, err, boom)

	status, lastErr := s.Status()
	assert.Equal(t, StatusFailed, status)
	assert.ErrorIs(t, lastErr, boom)
}

func TestStore_StaleLoadIsDiscarded(t *testing.T) {
	s := NewStore(0)

	started := make(chan struct{})
	release := make(chan struct{})
	slow := LoaderFunc(func(context.Context, int) (*Snapshot, error) {
		close(started)
		<-release
		return &Snapshot{Accounts: []*account.Account{
			{Name: "Old", Kind: account.KindPersonal, Balance: 1},
		}}, nil
	})

	var slowErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowErr = s.Load(context.Background(), slow)
	}()

	<-started
	require.NoError(t, s.Load(context.Background(), StaticLoader(testSnapshot())))
	close(release)
	wg.Wait()

	assert.ErrorIs(t, slowErr, ErrStaleLoad)
	status, _ := s.Status()
	assert.Equal(t, StatusReady, status)

	_, err := s.Account("Old")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Len(t, s.Accounts(), 3)
}

func TestStore_AddAccount(t *testing.T) {
	s := loadedStore(t, 0)

	acc, err := s.AddAccount(account.Draft{Name: "Mike Johnson", Kind: "friends", InitialBalance: "500", Contact: "mike@example.com"})
	require.NoError(t, err)
	assert.Equal(t, account.KindFriend, acc.Kind)
	assert.Len(t, s.FriendAccounts(), 2)
	assert.Len(t, s.Accounts(), 4)

	_, err = s.AddAccount(account.Draft{Name: "wallet", Kind: "personal", InitialBalance: "1"})
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))

	// Same name is fine in the other kind
	_, err = s.AddAccount(account.Draft{Name: "Wallet", Kind: "friend", InitialBalance: "1", Contact: "w@example.com"})
	assert.NoError(t, err)
}

func TestStore_AddAccount_RejectsInvalidDraft(t *testing.T) {
	s := loadedStore(t, 0)

	_, err := s.AddAccount(account.Draft{Name: "Savings", Kind: "personal", InitialBalance: "abc"})
	assert.ErrorIs(t, err, account.ErrInvalidBalance)
	assert.Len(t, s.Accounts(), 3)
}

func TestStore_AddTransaction_PrependsAndAppliesBalance(t *testing.T) {
	s := loadedStore(t, 0)

	tx, changes, err := s.AddTransaction(draftFor("Wallet", "debit", "300"))
	require.NoError(t, err)

	txs := s.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, tx.ID, txs[0].ID)

	require.Len(t, changes, 1)
	assert.Equal(t, BalanceChange{Account: "Wallet", Kind: account.KindPersonal, Before: 5000, After: 4700}, changes[0])

	wallet, err := s.Account("Wallet")
	require.NoError(t, err)
	assert.Equal(t, 4700.0, wallet.Balance)
}

func TestStore_AddTransaction_UnknownAccount(t *testing.T) {
	s := loadedStore(t, 0)

	_, _, err := s.AddTransaction(draftFor("Piggy Bank", "debit", "10"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.True(t, apperrors.IsNotFound(err))

	d := draftFor("Wallet", "transfer", "10")
	d.ToAccount = "Nowhere"
	_, _, err = s.AddTransaction(d)
	assert.ErrorIs(t, err, ErrDestinationNotFound)

	assert.Len(t, s.Transactions(), 1)
	wallet, _ := s.Account("Wallet")
	assert.Equal(t, 5000.0, wallet.Balance)
}

func TestStore_BoundedView(t *testing.T) {
	s := loadedStore(t, 3)

	for i := 0; i < 5; i++ {
		_, _, err := s.AddTransaction(draftFor("Wallet", "debit", fmt.Sprintf("%d", i+1)))
		require.NoError(t, err)
	}

	txs := s.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, 5.0, txs[0].Amount)
	assert.Equal(t, 3.0, txs[2].Amount)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := loadedStore(t, 0)

	accs := s.Accounts()
	accs[0].Balance = 1

	wallet, _ := s.Account("Wallet")
	assert.Equal(t, 5000.0, wallet.Balance)
}

func TestStore_ToggleVisibility(t *testing.T) {
	s := NewStore(0)
	assert.False(t, s.Hidden())
	assert.True(t, s.ToggleVisibility())
	assert.True(t, s.Hidden())
	assert.False(t, s.ToggleVisibility())
}

func TestStore_ConcurrentInserts(t *testing.T) {
	s := loadedStore(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.AddTransaction(draftFor("Bank Account", "credit", "10"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	bank, _ := s.Account("Bank Account")
	assert.Equal(t, 25500.0, bank.Balance)
	assert.Len(t, s.Transactions(), 51)
}
