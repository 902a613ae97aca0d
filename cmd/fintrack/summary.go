package main

import (
	"fmt"
	"io"

	"github.com/kislikjeka/fintrack/internal/module/summary"
	"github.com/kislikjeka/fintrack/pkg/money"
)

func printSummary(w io.Writer, o summary.Overview, f money.Formatter) error {
	rows := []struct {
		label string
		value string
	}{
		{"Personal balance", f.Amount(o.PersonalBalance)},
		{"Total lent", f.Amount(o.TotalLent)},
		{"Total owed", f.Amount(o.TotalOwed)},
		{"Net worth", f.Amount(o.NetWorth)},
		{"Income", f.Amount(o.TotalIncome)},
		{"Expenses", f.Amount(o.TotalExpenses)},
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-18s%s\n", row.label, row.value); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, o.Mood.Message())
	return err
}
