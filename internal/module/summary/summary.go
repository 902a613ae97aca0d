package summary

import (
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// Overview holds every derived total shown on the dashboard.
// Totals are plain float sums; only display rounds to two decimals.
type Overview struct {
	PersonalBalance float64 `json:"personal_balance"`
	TotalLent       float64 `json:"total_lent"`
	TotalOwed       float64 `json:"total_owed"`
	NetWorth        float64 `json:"net_worth"`
	TotalIncome     float64 `json:"total_income"`
	TotalExpenses   float64 `json:"total_expenses"`
	Mood            Mood    `json:"mood"`
}

// Compute derives the overview from the current accounts and transactions
func Compute(accounts []*account.Account, txs []*transaction.Transaction) Overview {
	o := Overview{
		PersonalBalance: PersonalBalance(accounts),
		TotalLent:       TotalLent(accounts),
		TotalOwed:       TotalOwed(accounts),
		TotalIncome:     TotalIncome(txs),
		TotalExpenses:   TotalExpenses(txs),
	}
	o.NetWorth = o.PersonalBalance + o.TotalLent - o.TotalOwed
	o.Mood = MoodOf(o.TotalIncome, o.TotalExpenses)
	return o
}

// PersonalBalance sums the balances of personal accounts
func PersonalBalance(accounts []*account.Account) float64 {
	var sum float64
	for _, a := range accounts {
		if a.IsPersonal() {
			sum += a.Balance
		}
	}
	return sum
}

// TotalLent sums the positive friend balances
func TotalLent(accounts []*account.Account) float64 {
	var sum float64
	for _, a := range accounts {
		if a.IsFriend() && a.Balance > 0 {
			sum += a.Balance
		}
	}
	return sum
}

// TotalOwed sums the magnitudes of the negative friend balances
func TotalOwed(accounts []*account.Account) float64 {
	var sum float64
	for _, a := range accounts {
		if a.IsFriend() && a.Balance < 0 {
			sum -= a.Balance
		}
	}
	return sum
}

// NetWorth = personal balance + lent - owed
func NetWorth(accounts []*account.Account) float64 {
	return PersonalBalance(accounts) + TotalLent(accounts) - TotalOwed(accounts)
}

// TotalIncome sums credits outside the lending categories
func TotalIncome(txs []*transaction.Transaction) float64 {
	return sumWhere(txs, transaction.DirectionCredit)
}

// TotalExpenses sums debits outside the lending categories
func TotalExpenses(txs []*transaction.Transaction) float64 {
	return sumWhere(txs, transaction.DirectionDebit)
}

func sumWhere(txs []*transaction.Transaction, dir transaction.Direction) float64 {
	var sum float64
	for _, tx := range txs {
		if tx.Direction == dir && !tx.IsLending() {
			sum += tx.Amount
		}
	}
	return sum
}

// SpendingByCategory totals debits per category within the range.
// Lending categories are not spending and are left out.
func SpendingByCategory(txs []*transaction.Transaction, r transaction.DateRange) map[string]float64 {
	out := make(map[string]float64)
	for _, tx := range txs {
		if tx.Direction != transaction.DirectionDebit || tx.IsLending() {
			continue
		}
		if !r.Contains(tx.OccurredOn) {
			continue
		}
		out[tx.Category] += tx.Amount
	}
	return out
}

// TotalBalance sums a name to balance map
func TotalBalance(balances map[string]float64) float64 {
	var sum float64
	for _, b := range balances {
		sum += b
	}
	return sum
}
