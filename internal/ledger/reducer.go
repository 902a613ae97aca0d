package ledger

import (
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// BalanceChange records one balance movement caused by a transaction
type BalanceChange struct {
	Account string       `json:"account"`
	Kind    account.Kind `json:"kind"`
	Before  float64      `json:"before"`
	After   float64      `json:"after"`
}

// Delta returns After - Before
func (c BalanceChange) Delta() float64 {
	return c.After - c.Before
}

// ApplyTransaction moves the balances of the accounts a transaction references
// and returns the changes in the order they were applied.
//
//	debit:    personal -amount, friend +amount (the user paid the friend)
//	credit:   personal +amount, friend -amount (the friend paid the user)
//	transfer: source -amount, destination +amount, whatever their kinds
//
// dst is only used for transfers.
func ApplyTransaction(tx *transaction.Transaction, src, dst *account.Account) []BalanceChange {
	switch tx.Direction {
	case transaction.DirectionDebit:
		if src.IsFriend() {
			return []BalanceChange{move(src, tx.Amount)}
		}
		return []BalanceChange{move(src, -tx.Amount)}

	case transaction.DirectionCredit:
		if src.IsFriend() {
			return []BalanceChange{move(src, -tx.Amount)}
		}
		return []BalanceChange{move(src, tx.Amount)}

	case transaction.DirectionTransfer:
		out := move(src, -tx.Amount)
		in := move(dst, tx.Amount)
		return []BalanceChange{out, in}
	}

	return nil
}

func move(acc *account.Account, delta float64) BalanceChange {
	change := BalanceChange{
		Account: acc.Name,
		Kind:    acc.Kind,
		Before:  acc.Balance,
	}
	acc.Balance += delta
	change.After = acc.Balance
	return change
}
