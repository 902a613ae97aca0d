package transaction

import (
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Direction classifies a transaction independently of its amount, which is always a magnitude
type Direction string

const (
	DirectionDebit    Direction = "debit"    // Money leaves the account
	DirectionCredit   Direction = "credit"   // Money enters the account
	DirectionTransfer Direction = "transfer" // Money moves from Account to ToAccount
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	switch d {
	case DirectionDebit, DirectionCredit, DirectionTransfer:
		return true
	}
	return false
}

// ParseDirection accepts the direction names case-insensitively, plus "transferred"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit":
		return DirectionDebit, nil
	case "credit":
		return DirectionCredit, nil
	case "transfer", "transferred":
		return DirectionTransfer, nil
	}
	return "", ErrInvalidDirection
}

// Lending categories are kept out of income and expense totals
const (
	CategoryLend   = "Lend"
	CategoryBorrow = "Borrow"
)

// Flow values for lending categories
const (
	FlowOut = "out"
	FlowIn  = "in"
)

// Transaction is a dated movement of money against an account referenced by name
type Transaction struct {
	ID          uuid.UUID  `json:"id"`
	OccurredOn  civil.Date `json:"date"`
	Description string     `json:"description"`
	Label       string     `json:"name"`
	Amount      float64    `json:"amount"`
	Direction   Direction  `json:"type"`
	Category    string     `json:"category"`
	Account     string     `json:"account"`
	ToAccount   string     `json:"to_account,omitempty"`
	PaidBy      string     `json:"paid_by,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// Validate checks the required fields and that ToAccount is set if and only if
// the transaction is a transfer
func (t *Transaction) Validate() error {
	if t.OccurredOn.IsZero() {
		return ErrMissingDate
	}
	if !t.OccurredOn.IsValid() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrMissingDescription
	}
	if strings.TrimSpace(t.Label) == "" {
		return ErrMissingLabel
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount < 0 {
		return ErrInvalidAmount
	}
	if !t.Direction.IsValid() {
		return ErrInvalidDirection
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrMissingAccount
	}

	if t.Direction == DirectionTransfer {
		if strings.TrimSpace(t.ToAccount) == "" {
			return ErrMissingToAccount
		}
	} else if t.ToAccount != "" {
		return ErrUnexpectedToAccount
	}

	return nil
}

// IsLending reports whether the category is Lend or Borrow
func (t *Transaction) IsLending() bool {
	return IsLendingCategory(t.Category)
}

// Flow returns "out" for money lent, "in" for money borrowed and "" otherwise
func (t *Transaction) Flow() string {
	switch {
	case strings.EqualFold(t.Category, CategoryLend):
		return FlowOut
	case strings.EqualFold(t.Category, CategoryBorrow):
		return FlowIn
	}
	return ""
}

// Clone returns a copy that can be handed out without sharing state
func (t *Transaction) Clone() *Transaction {
	c := *t
	return &c
}

// IsLendingCategory reports whether a category records lending rather than spending
func IsLendingCategory(category string) bool {
	return strings.EqualFold(category, CategoryLend) || strings.EqualFold(category, CategoryBorrow)
}

// NewID returns a time-ordered identifier, falling back to a random one
func NewID() uuid.UUID {
	if id, err := uuid.NewV7(); err == nil {
		return id
	}
	return uuid.New()
}

const dayFirstLayout = "02-01-2006"

// ParseDate accepts YYYY-MM-DD and DD-MM-YYYY
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, ErrMissingDate
	}
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}
	if t, err := time.Parse(dayFirstLayout, s); err == nil {
		return civil.DateOf(t), nil
	}
	return civil.Date{}, ErrInvalidDate
}

// Today returns the current calendar date in the local time zone
func Today() civil.Date {
	return civil.DateOf(time.Now())
}
