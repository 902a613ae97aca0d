package transaction

import apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"

var (
	// Validation errors, keyed by form field
	ErrMissingDate         = apperrors.Validation("date", "date is required")
	ErrInvalidDate         = apperrors.Validation("date", "date must be YYYY-MM-DD or DD-MM-YYYY")
	ErrMissingDescription  = apperrors.Validation("description", "description is required")
	ErrMissingLabel        = apperrors.Validation("name", "name is required")
	ErrMissingAmount       = apperrors.Validation("amount", "amount is required")
	ErrInvalidAmount       = apperrors.Validation("amount", "amount must be a non-negative number")
	ErrInvalidDirection    = apperrors.Validation("type", "type must be debit, credit or transfer")
	ErrMissingCategory     = apperrors.Validation("category", "category is required")
	ErrMissingAccount      = apperrors.Validation("account", "account is required")
	ErrMissingToAccount    = apperrors.Validation("to_account", "destination account is required for transfers")
	ErrUnexpectedToAccount = apperrors.Validation("to_account", "only transfers carry a destination account")

	// Query errors
	ErrInvalidDateRange = apperrors.BadRequest("start_date must not be after end_date")
)
