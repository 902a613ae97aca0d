// Package export writes ledger records as CSV files
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
	"github.com/kislikjeka/fintrack/pkg/money"
)

// Delimiter separates CSV columns
const Delimiter = ','

// TransactionRow is the CSV shape of a transaction; columns use the canonical field keys
type TransactionRow struct {
	ID          string `csv:"id"`
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Name        string `csv:"name"`
	Amount      string `csv:"amount"`
	Type        string `csv:"type"`
	Category    string `csv:"category"`
	Account     string `csv:"account"`
	ToAccount   string `csv:"to_account"`
	PaidBy      string `csv:"paid_by"`
	Status      string `csv:"status"`
}

// AccountRow is the CSV shape of an account
type AccountRow struct {
	ID      string `csv:"id"`
	Name    string `csv:"name"`
	Kind    string `csv:"kind"`
	Balance string `csv:"balance"`
	Contact string `csv:"contact"`
}

// TransactionRows converts transactions, keeping their order
func TransactionRows(txs []*transaction.Transaction) []TransactionRow {
	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, TransactionRow{
			ID:          tx.ID.String(),
			Date:        tx.OccurredOn.String(),
			Description: tx.Description,
			Name:        tx.Label,
			Amount:      money.Format(tx.Amount),
			Type:        string(tx.Direction),
			Category:    tx.Category,
			Account:     tx.Account,
			ToAccount:   tx.ToAccount,
			PaidBy:      tx.PaidBy,
			Status:      tx.Status,
		})
	}
	return rows
}

// AccountRows converts accounts, keeping their order
func AccountRows(accs []*account.Account) []AccountRow {
	rows := make([]AccountRow, 0, len(accs))
	for _, a := range accs {
		rows = append(rows, AccountRow{
			ID:      a.ID.String(),
			Name:    a.Name,
			Kind:    string(a.Kind),
			Balance: money.Format(a.Balance),
			Contact: a.Contact,
		})
	}
	return rows
}

// WriteTransactions writes a header line followed by one row per transaction
func WriteTransactions(w io.Writer, txs []*transaction.Transaction) error {
	if txs == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}
	return write(w, TransactionRows(txs))
}

// WriteAccounts writes a header line followed by one row per account
func WriteAccounts(w io.Writer, accs []*account.Account) error {
	if accs == nil {
		return fmt.Errorf("cannot write nil accounts to CSV")
	}
	return write(w, AccountRows(accs))
}

func write(w io.Writer, rows any) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = Delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
