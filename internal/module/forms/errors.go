package forms

import apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"

var (
	ErrDialogClosed     = apperrors.Conflict("dialog is not open")
	ErrDialogSubmitting = apperrors.Conflict("dialog is already submitting")
	ErrUnknownField     = apperrors.BadRequest("unknown form field")
)
