package account

import (
	"errors"
	"strings"

	"github.com/kislikjeka/fintrack/pkg/money"
)

// Draft is the text-typed state of the add-account form
type Draft struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	InitialBalance string `json:"initial_balance"`
	Contact        string `json:"contact"`
}

// DefaultDraft is the state every add-account dialog opens with
func DefaultDraft() Draft {
	return Draft{Kind: string(KindPersonal)}
}

// Set assigns a draft field by its form name
func (d *Draft) Set(field, value string) bool {
	switch field {
	case "name":
		d.Name = value
	case "kind", "type":
		d.Kind = value
	case "initial_balance", "balance":
		d.InitialBalance = value
	case "contact", "email":
		d.Contact = value
	default:
		return false
	}
	return true
}

// Build validates the draft and returns a new account with a fresh ID.
// The contact is kept only for friend accounts, whatever was typed into it.
func (d Draft) Build() (*Account, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, ErrMissingName
	}

	kind, err := ParseKind(d.Kind)
	if err != nil {
		return nil, err
	}

	balance, err := money.ParseAmount(d.InitialBalance)
	if err != nil {
		if errors.Is(err, money.ErrEmptyAmount) {
			return nil, ErrMissingBalance
		}
		return nil, ErrInvalidBalance
	}

	acc := &Account{
		ID:      NewID(),
		Name:    name,
		Kind:    kind,
		Balance: balance,
	}
	if kind == KindFriend {
		acc.Contact = strings.TrimSpace(d.Contact)
	}

	if err := acc.Validate(); err != nil {
		return nil, err
	}

	return acc, nil
}
