package memory

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// SeedFile is the YAML layout of a seed file
type SeedFile struct {
	Accounts     []SeedAccount     `yaml:"accounts"`
	Transactions []SeedTransaction `yaml:"transactions"`
}

// SeedAccount is one account entry of a seed file
type SeedAccount struct {
	Name    string  `yaml:"name"`
	Kind    string  `yaml:"kind"`
	Balance float64 `yaml:"balance"`
	Contact string  `yaml:"contact"`
}

// SeedTransaction is one transaction entry of a seed file
type SeedTransaction struct {
	Date        string  `yaml:"date"`
	Description string  `yaml:"description"`
	Name        string  `yaml:"name"`
	Amount      float64 `yaml:"amount"`
	Type        string  `yaml:"type"`
	Category    string  `yaml:"category"`
	Account     string  `yaml:"account"`
	ToAccount   string  `yaml:"to_account"`
	PaidBy      string  `yaml:"paid_by"`
	Status      string  `yaml:"status"`
}

// LoadSeedFile reads and validates a YAML seed file
func LoadSeedFile(path string) (*ledger.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes YAML seed data into a snapshot, newest transaction first
func ParseSeed(data []byte) (*ledger.Snapshot, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return file.Snapshot()
}

// Snapshot converts the seed entries, validating every record
func (f *SeedFile) Snapshot() (*ledger.Snapshot, error) {
	snap := &ledger.Snapshot{
		Accounts:     make([]*account.Account, 0, len(f.Accounts)),
		Transactions: make([]*transaction.Transaction, 0, len(f.Transactions)),
	}

	for i, a := range f.Accounts {
		kind, err := account.ParseKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("seed account %d (%s): %w", i, a.Name, err)
		}
		acc := &account.Account{
			ID:      account.IDForName(a.Name),
			Name:    a.Name,
			Kind:    kind,
			Balance: a.Balance,
		}
		if kind == account.KindFriend {
			acc.Contact = a.Contact
		}
		if err := acc.Validate(); err != nil {
			return nil, fmt.Errorf("seed account %d (%s): %w", i, a.Name, err)
		}
		snap.Accounts = append(snap.Accounts, acc)
	}

	for i, t := range f.Transactions {
		date, err := transaction.ParseDate(t.Date)
		if err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
		dir, err := transaction.ParseDirection(t.Type)
		if err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
		tx := &transaction.Transaction{
			ID:          transaction.NewID(),
			OccurredOn:  date,
			Description: t.Description,
			Label:       t.Name,
			Amount:      t.Amount,
			Direction:   dir,
			Category:    t.Category,
			Account:     t.Account,
			PaidBy:      t.PaidBy,
			Status:      t.Status,
		}
		if dir == transaction.DirectionTransfer {
			tx.ToAccount = t.ToAccount
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
		snap.Transactions = append(snap.Transactions, tx)
	}

	slices.SortStableFunc(snap.Transactions, func(a, b *transaction.Transaction) int {
		switch {
		case a.OccurredOn.After(b.OccurredOn):
			return -1
		case a.OccurredOn.Before(b.OccurredOn):
			return 1
		}
		return 0
	})

	return snap, nil
}

// DefaultSeed is the built-in demo data
func DefaultSeed() *ledger.Snapshot {
	snap, err := defaultSeedFile.Snapshot()
	if err != nil {
		panic(fmt.Sprintf("built-in seed is invalid: %v", err))
	}
	return snap
}

var defaultSeedFile = SeedFile{
	Accounts: []SeedAccount{
		{Name: "Wallet", Kind: "personal", Balance: 5000},
		{Name: "Bank Account", Kind: "personal", Balance: 25000},
		{Name: "Credit Card", Kind: "personal", Balance: -2000},
		{Name: "John Doe", Kind: "friend", Balance: 2000, Contact: "john@example.com"},
		{Name: "Jane Smith", Kind: "friend", Balance: -1500, Contact: "jane@example.com"},
		{Name: "Mike Johnson", Kind: "friend", Balance: 500, Contact: "mike@example.com"},
	},
	Transactions: []SeedTransaction{
		{Date: "2025-07-10", Description: "Lunch", Name: "Lunch", Amount: 200, Type: "debit", Category: "Food", Account: "Wallet"},
		{Date: "2025-07-09", Description: "Salary", Name: "Salary", Amount: 50000, Type: "credit", Category: "Income", Account: "Bank Account"},
		{Date: "2025-07-08", Description: "Lent money", Name: "Lent to John", Amount: 2000, Type: "debit", Category: "Lend", Account: "John Doe"},
		{Date: "2025-07-07", Description: "Borrowed money", Name: "Borrowed from Jane", Amount: 1500, Type: "credit", Category: "Borrow", Account: "Jane Smith"},
		{Date: "2025-07-06", Description: "Coffee", Name: "Coffee Shop", Amount: 150, Type: "debit", Category: "Food", Account: "Wallet"},
		{Date: "2025-07-05", Description: "Lent money", Name: "Lent to Mike", Amount: 500, Type: "debit", Category: "Lend", Account: "Mike Johnson"},
	},
}
