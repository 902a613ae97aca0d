package account

import apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"

var (
	// Validation errors
	ErrMissingName       = apperrors.Validation("name", "account name is required")
	ErrNameTooLong       = apperrors.Validation("name", "account name exceeds 100 characters")
	ErrInvalidKind       = apperrors.Validation("kind", "account kind must be personal or friend")
	ErrMissingBalance    = apperrors.Validation("initial_balance", "initial balance is required")
	ErrInvalidBalance    = apperrors.Validation("initial_balance", "initial balance must be a number")
	ErrMissingContact    = apperrors.Validation("contact", "contact email is required for friend accounts")
	ErrInvalidContact    = apperrors.Validation("contact", "invalid contact email address")
	ErrUnexpectedContact = apperrors.Validation("contact", "only friend accounts carry a contact")
)
