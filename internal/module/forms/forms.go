package forms

import (
	"cloud.google.com/go/civil"

	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// TransactionForm is the add-transaction dialog
type TransactionForm = Dialog[transaction.Draft, *transaction.Transaction]

// AccountForm is the add-account dialog
type AccountForm = Dialog[account.Draft, *account.Account]

// NewTransactionForm creates a closed add-transaction dialog.
// today supplies the default date each time the dialog opens.
func NewTransactionForm(today func() civil.Date) *TransactionForm {
	if today == nil {
		today = transaction.Today
	}
	return newDialog(
		func() transaction.Draft { return transaction.DefaultDraft(today()) },
		(*transaction.Draft).Set,
		transaction.Draft.Build,
	)
}

// NewAccountForm creates a closed add-account dialog
func NewAccountForm() *AccountForm {
	return newDialog(
		account.DefaultDraft,
		(*account.Draft).Set,
		account.Draft.Build,
	)
}
