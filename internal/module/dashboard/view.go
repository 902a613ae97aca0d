package dashboard

import (
	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/module/forms"
	"github.com/kislikjeka/fintrack/internal/module/summary"
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
	"github.com/kislikjeka/fintrack/pkg/money"
)

// View is the dashboard as the front end renders it.
// Raw numbers are always present; the Display strings are masked while balances are hidden.
type View struct {
	Status   ledger.Status `json:"status"`
	Error    string        `json:"error,omitempty"`
	Hidden   bool          `json:"hidden"`
	Currency string        `json:"currency"`

	Overview        summary.Overview `json:"overview"`
	OverviewDisplay OverviewDisplay  `json:"overview_display"`
	MoodMessage     string           `json:"mood_message"`

	PersonalAccounts []AccountView     `json:"personal_accounts"`
	FriendAccounts   []AccountView     `json:"friend_accounts"`
	Transactions     []TransactionView `json:"transactions"`

	Balances     map[string]float64 `json:"balances"`
	TotalBalance float64            `json:"total_balance"`
	Spending     map[string]float64 `json:"spending"`

	HasCategoryChart bool `json:"has_category_chart"`
	HasMonthlyChart  bool `json:"has_monthly_chart"`

	Dialogs Dialogs `json:"dialogs"`
}

// OverviewDisplay carries the formatted overview figures
type OverviewDisplay struct {
	PersonalBalance string `json:"personal_balance"`
	TotalLent       string `json:"total_lent"`
	TotalOwed       string `json:"total_owed"`
	NetWorth        string `json:"net_worth"`
	TotalIncome     string `json:"total_income"`
	TotalExpenses   string `json:"total_expenses"`
	TotalBalance    string `json:"total_balance"`
}

// AccountView is an account with its formatted balance
type AccountView struct {
	*account.Account
	Display string `json:"display"`
}

// TransactionView is a transaction with its display sign and lending flow
type TransactionView struct {
	*transaction.Transaction
	Flow    string `json:"flow,omitempty"`
	Display string `json:"display"`
}

// Dialogs holds the state of both creation dialogs
type Dialogs struct {
	Transaction forms.View[transaction.Draft] `json:"transaction"`
	Account     forms.View[account.Draft]     `json:"account"`
}

func newAccountViews(accounts []*account.Account, f money.Formatter) []AccountView {
	out := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountView{Account: a, Display: f.Balance(a.Balance)})
	}
	return out
}

func newTransactionViews(txs []*transaction.Transaction, f money.Formatter) []TransactionView {
	out := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionView{
			Transaction: tx,
			Flow:        tx.Flow(),
			Display:     displayAmount(tx, f),
		})
	}
	return out
}

// displayAmount prefixes the amount: + for income, an arrow for lending, - otherwise
func displayAmount(tx *transaction.Transaction, f money.Formatter) string {
	amount := f.Amount(tx.Amount)
	if f.Hidden {
		return amount
	}

	switch tx.Flow() {
	case transaction.FlowOut:
		return "↗" + amount
	case transaction.FlowIn:
		return "↙" + amount
	}

	switch tx.Direction {
	case transaction.DirectionCredit:
		return "+" + amount
	case transaction.DirectionTransfer:
		return "→" + amount
	}
	return "-" + amount
}

func newOverviewDisplay(o summary.Overview, total float64, f money.Formatter) OverviewDisplay {
	return OverviewDisplay{
		PersonalBalance: f.Amount(o.PersonalBalance),
		TotalLent:       f.Amount(o.TotalLent),
		TotalOwed:       f.Amount(o.TotalOwed),
		NetWorth:        f.Amount(o.NetWorth),
		TotalIncome:     f.Amount(o.TotalIncome),
		TotalExpenses:   f.Amount(o.TotalExpenses),
		TotalBalance:    f.Balance(total),
	}
}
