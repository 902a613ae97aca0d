package ledger

import (
	"errors"

	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
)

// Lookup errors
var (
	ErrAccountNotFound     = &apperrors.AppError{Code: apperrors.ErrCodeNotFound, Field: "account", Message: "account not found"}
	ErrDestinationNotFound = &apperrors.AppError{Code: apperrors.ErrCodeNotFound, Field: "to_account", Message: "destination account not found"}
	ErrDuplicateAccount    = &apperrors.AppError{Code: apperrors.ErrCodeConflict, Field: "name", Message: "an account with this name already exists"}
)

// Load errors
var (
	ErrStaleLoad = errors.New("load superseded by a newer load")
	ErrNilLoader = errors.New("loader is nil")
)
