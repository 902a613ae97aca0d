package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kislikjeka/fintrack/internal/module/forms"
)

const (
	dialogTransaction = "transaction"
	dialogAccount     = "account"
)

// DialogHandler drives the add-transaction and add-account dialogs
type DialogHandler struct {
	svc DashboardService
}

// NewDialogHandler creates a new dialog handler
func NewDialogHandler(svc DashboardService) *DialogHandler {
	return &DialogHandler{svc: svc}
}

// GetDialog handles GET /dialogs/{kind}
func (h *DialogHandler) GetDialog(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "kind") {
	case dialogTransaction:
		respondWithJSON(w, http.StatusOK, h.svc.TransactionDialog().View())
	case dialogAccount:
		respondWithJSON(w, http.StatusOK, h.svc.AccountDialog().View())
	default:
		respondWithError(w, http.StatusNotFound, "unknown dialog")
	}
}

// Open handles POST /dialogs/{kind}/open
func (h *DialogHandler) Open(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "kind") {
	case dialogTransaction:
		openDialog(w, h.svc.TransactionDialog())
	case dialogAccount:
		openDialog(w, h.svc.AccountDialog())
	default:
		respondWithError(w, http.StatusNotFound, "unknown dialog")
	}
}

// Cancel handles POST /dialogs/{kind}/cancel
func (h *DialogHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "kind") {
	case dialogTransaction:
		cancelDialog(w, h.svc.TransactionDialog())
	case dialogAccount:
		cancelDialog(w, h.svc.AccountDialog())
	default:
		respondWithError(w, http.StatusNotFound, "unknown dialog")
	}
}

// Update handles PATCH /dialogs/{kind} with a JSON object of field values
func (h *DialogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch chi.URLParam(r, "kind") {
	case dialogTransaction:
		updateDialog(w, h.svc.TransactionDialog(), values)
	case dialogAccount:
		updateDialog(w, h.svc.AccountDialog(), values)
	default:
		respondWithError(w, http.StatusNotFound, "unknown dialog")
	}
}

// Submit handles POST /dialogs/{kind}/submit
func (h *DialogHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var (
		created interface{}
		err     error
	)

	switch chi.URLParam(r, "kind") {
	case dialogTransaction:
		created, err = h.svc.SubmitTransaction(r.Context())
	case dialogAccount:
		created, err = h.svc.SubmitAccount(r.Context())
	default:
		respondWithError(w, http.StatusNotFound, "unknown dialog")
		return
	}

	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func openDialog[D, R any](w http.ResponseWriter, d *forms.Dialog[D, R]) {
	if _, err := d.Open(); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d.View())
}

func cancelDialog[D, R any](w http.ResponseWriter, d *forms.Dialog[D, R]) {
	if err := d.Cancel(); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d.View())
}

func updateDialog[D, R any](w http.ResponseWriter, d *forms.Dialog[D, R], values map[string]string) {
	if _, err := d.SetAll(values); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d.View())
}
