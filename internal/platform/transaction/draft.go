package transaction

import (
	"errors"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/kislikjeka/fintrack/pkg/money"
)

// Draft is the text-typed state of the add-transaction form
type Draft struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Label       string `json:"name"`
	Amount      string `json:"amount"`
	Direction   string `json:"type"`
	Category    string `json:"category"`
	Account     string `json:"account"`
	ToAccount   string `json:"to_account"`
	PaidBy      string `json:"paid_by"`
	Status      string `json:"status"`
}

// DefaultDraft is the state every add-transaction dialog opens with
func DefaultDraft(today civil.Date) Draft {
	return Draft{
		Date:      today.String(),
		Direction: string(DirectionDebit),
	}
}

// Set assigns a draft field by its form name
func (d *Draft) Set(field, value string) bool {
	switch field {
	case "date":
		d.Date = value
	case "description":
		d.Description = value
	case "name":
		d.Label = value
	case "amount":
		d.Amount = value
	case "type":
		d.Direction = value
	case "category":
		d.Category = value
	case "account":
		d.Account = value
	case "to_account":
		d.ToAccount = value
	case "paid_by":
		d.PaidBy = value
	case "status":
		d.Status = value
	default:
		return false
	}
	return true
}

// Build parses and validates the draft and returns a transaction with a fresh ID.
// A destination typed into a non-transfer draft is dropped.
func (d Draft) Build() (*Transaction, error) {
	date, err := ParseDate(d.Date)
	if err != nil {
		return nil, err
	}

	amount, err := money.ParseAmount(d.Amount)
	if err != nil {
		if errors.Is(err, money.ErrEmptyAmount) {
			return nil, ErrMissingAmount
		}
		return nil, ErrInvalidAmount
	}

	direction, err := ParseDirection(d.Direction)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		ID:          NewID(),
		OccurredOn:  date,
		Description: strings.TrimSpace(d.Description),
		Label:       strings.TrimSpace(d.Label),
		Amount:      amount,
		Direction:   direction,
		Category:    strings.TrimSpace(d.Category),
		Account:     strings.TrimSpace(d.Account),
		PaidBy:      strings.TrimSpace(d.PaidBy),
		Status:      strings.TrimSpace(d.Status),
	}
	if direction == DirectionTransfer {
		tx.ToAccount = strings.TrimSpace(d.ToAccount)
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	return tx, nil
}
