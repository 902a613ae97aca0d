package handler

import (
	"bytes"
	"net/http"

	"github.com/kislikjeka/fintrack/internal/module/export"
	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
)

// ExportHandler serves CSV downloads of the loaded ledger
type ExportHandler struct {
	svc DashboardService
}

// NewExportHandler creates a new export handler
func NewExportHandler(svc DashboardService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// GetTransactionsCSV handles GET /export/transactions.csv
func (h *ExportHandler) GetTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteTransactions(&buf, h.svc.Transactions()); err != nil {
		respondWithAppError(w, apperrors.Internal("failed to export transactions", err))
		return
	}
	respondWithCSV(w, "transactions.csv", buf.Bytes())
}

// GetAccountsCSV handles GET /export/accounts.csv
func (h *ExportHandler) GetAccountsCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteAccounts(&buf, h.svc.Accounts()); err != nil {
		respondWithAppError(w, apperrors.Internal("failed to export accounts", err))
		return
	}
	respondWithCSV(w, "accounts.csv", buf.Bytes())
}

func respondWithCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
