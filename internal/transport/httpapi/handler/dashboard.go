package handler

import (
	"context"
	"net/http"

	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/module/dashboard"
	"github.com/kislikjeka/fintrack/internal/module/forms"
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// DashboardService defines the application state operations the HTTP layer drives
type DashboardService interface {
	Load(ctx context.Context) error
	View() *dashboard.View
	Status() (ledger.Status, error)
	Accounts() []*account.Account
	Transactions() []*transaction.Transaction
	Spending(ctx context.Context, r transaction.DateRange) map[string]float64
	CategoryChart(ctx context.Context, r transaction.DateRange) *string
	MonthlyChart(ctx context.Context) *string
	ToggleVisibility() bool

	TransactionDialog() *forms.TransactionForm
	AccountDialog() *forms.AccountForm
	SubmitTransaction(ctx context.Context) (*transaction.Transaction, error)
	SubmitAccount(ctx context.Context) (*account.Account, error)
}

var _ DashboardService = (*dashboard.Service)(nil)

// DashboardHandler serves the read side of the dashboard
type DashboardHandler struct {
	svc DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// AccountsResponse lists accounts split by kind
type AccountsResponse struct {
	Personal []*account.Account `json:"personal"`
	Friends  []*account.Account `json:"friends"`
}

// TransactionsResponse lists the loaded transactions, most recent first
type TransactionsResponse struct {
	Transactions []*transaction.Transaction `json:"transactions"`
	Total        int                        `json:"total"`
}

// SpendingResponse is spending per category for the requested range
type SpendingResponse struct {
	StartDate string             `json:"start_date,omitempty"`
	EndDate   string             `json:"end_date,omitempty"`
	Spending  map[string]float64 `json:"spending"`
}

// ChartResponse carries a base64 PNG, or null when no chart is available
type ChartResponse struct {
	Chart *string `json:"chart"`
}

// VisibilityResponse reports whether balances are masked
type VisibilityResponse struct {
	Hidden bool `json:"hidden"`
}

// GetDashboard handles GET /dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.svc.View())
}

// GetAccounts handles GET /accounts
func (h *DashboardHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	resp := AccountsResponse{
		Personal: []*account.Account{},
		Friends:  []*account.Account{},
	}
	for _, a := range h.svc.Accounts() {
		if a.IsPersonal() {
			resp.Personal = append(resp.Personal, a)
		} else {
			resp.Friends = append(resp.Friends, a)
		}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// GetTransactions handles GET /transactions
func (h *DashboardHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	txs := h.svc.Transactions()
	if txs == nil {
		txs = []*transaction.Transaction{}
	}
	respondWithJSON(w, http.StatusOK, TransactionsResponse{Transactions: txs, Total: len(txs)})
}

// GetSpending handles GET /spending?start_date=&end_date=
func (h *DashboardHandler) GetSpending(w http.ResponseWriter, r *http.Request) {
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, SpendingResponse{
		StartDate: rng.StartString(),
		EndDate:   rng.EndString(),
		Spending:  h.svc.Spending(r.Context(), rng),
	})
}

// GetCategoryChart handles GET /charts/category?start_date=&end_date=
func (h *DashboardHandler) GetCategoryChart(w http.ResponseWriter, r *http.Request) {
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, ChartResponse{Chart: h.svc.CategoryChart(r.Context(), rng)})
}

// GetMonthlyChart handles GET /charts/monthly
func (h *DashboardHandler) GetMonthlyChart(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, ChartResponse{Chart: h.svc.MonthlyChart(r.Context())})
}

// Reload handles POST /reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Load(r.Context()); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.svc.View())
}

// ToggleVisibility handles POST /visibility/toggle
func (h *DashboardHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, VisibilityResponse{Hidden: h.svc.ToggleVisibility()})
}

func parseRange(w http.ResponseWriter, r *http.Request) (transaction.DateRange, bool) {
	q := r.URL.Query()
	rng, err := transaction.ParseDateRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		respondWithAppError(w, err)
		return transaction.DateRange{}, false
	}
	return rng, true
}
