package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError sends an error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithAppError maps an error onto a status code by its AppError code
func respondWithAppError(w http.ResponseWriter, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		respondWithJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  apperrors.ErrCodeInternal,
		})
		return
	}

	respondWithJSON(w, statusFor(appErr.Code), ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
		Field: appErr.Field,
	})
}

func statusFor(code string) int {
	switch code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
