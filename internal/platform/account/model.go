package account

import (
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes the user's own accounts from lending ledgers kept per friend
type Kind string

const (
	KindPersonal Kind = "personal" // The user's own funds or liabilities
	KindFriend   Kind = "friend"   // Money lent to (+) or borrowed from (-) a person
)

// IsValid checks if the kind is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindPersonal, KindFriend:
		return true
	}
	return false
}

// ParseKind accepts "personal", "friend" and the plural "friends", case-insensitively
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personal":
		return KindPersonal, nil
	case "friend", "friends":
		return KindFriend, nil
	}
	return "", ErrInvalidKind
}

// Account is a named balance holder that transactions reference by name
type Account struct {
	ID   uuid.UUID `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
	Kind Kind      `json:"kind" yaml:"kind"`

	// Personal: asset (+) or liability (-). Friend: + they owe the user, - the user owes them.
	Balance float64 `json:"balance" yaml:"balance"`

	// Email, friend accounts only
	Contact string `json:"contact,omitempty" yaml:"contact,omitempty"`
}

// Validate checks the account invariants: named, known kind, finite balance,
// and a contact present if and only if the account is a friend account
func (a *Account) Validate() error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrMissingName
	}
	if len(name) > 100 {
		return ErrNameTooLong
	}

	if !a.Kind.IsValid() {
		return ErrInvalidKind
	}

	if math.IsNaN(a.Balance) || math.IsInf(a.Balance, 0) {
		return ErrInvalidBalance
	}

	switch a.Kind {
	case KindFriend:
		if a.Contact == "" {
			return ErrMissingContact
		}
		if !isValidEmail(a.Contact) {
			return ErrInvalidContact
		}
	case KindPersonal:
		if a.Contact != "" {
			return ErrUnexpectedContact
		}
	}

	return nil
}

// IsPersonal reports whether the account belongs to the user
func (a *Account) IsPersonal() bool {
	return a.Kind == KindPersonal
}

// IsFriend reports whether the account is a lending ledger
func (a *Account) IsFriend() bool {
	return a.Kind == KindFriend
}

// Clone returns a copy that can be handed out without sharing state
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// NameKey normalizes a name for lookups; names are unique case-insensitively
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewID returns a time-ordered identifier, falling back to a random one
func NewID() uuid.UUID {
	if id, err := uuid.NewV7(); err == nil {
		return id
	}
	return uuid.New()
}

// nameSpace scopes IDs derived from account names
var nameSpace = uuid.MustParse("5b0f2f4e-8a51-4c55-9a3e-3f8f5d6a1c20")

// IDForName returns a stable identifier for an account only known by name
func IDForName(name string) uuid.UUID {
	return uuid.NewSHA1(nameSpace, []byte(NameKey(name)))
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
