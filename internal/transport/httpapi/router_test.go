package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/fintrack/internal/infra/memory"
	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/module/dashboard"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/handler"
)

func today() civil.Date { return civil.Date{Year: 2025, Month: 7, Day: 11} }

// setupTestRouter wires the BFF over the built-in seed data
func setupTestRouter(t *testing.T, checks map[string]handler.Check) http.Handler {
	t.Helper()

	src, err := memory.New(memory.DefaultSeed(), nil)
	require.NoError(t, err)

	svc := dashboard.NewService(ledger.NewStore(10), src, nil, dashboard.WithClock(today))
	require.NoError(t, svc.Load(context.Background()))

	return httpapi.NewRouter(httpapi.Config{
		AllowedOrigins:   []string{"http://localhost:3000"},
		RateLimitRPS:     1000,
		RateLimitBurst:   1000,
		DashboardHandler: handler.NewDashboardHandler(svc),
		DialogHandler:    handler.NewDialogHandler(svc),
		ExportHandler:    handler.NewExportHandler(svc),
		HealthHandler:    handler.NewHealthHandler(checks),
	})
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// Health
// =============================================================================

func TestHealth(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = do(t, r, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode(t, w)["status"])
}

func TestHealth_NotReady(t *testing.T) {
	r := setupTestRouter(t, map[string]handler.Check{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	w := do(t, r, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "redis not ready", decode(t, w)["error"])

	w = do(t, r, http.MethodGet, "/health/detailed", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "degraded", resp["status"])
	checks := resp["checks"].(map[string]interface{})
	assert.Contains(t, checks["redis"], "unhealthy")
}

// =============================================================================
// Dashboard reads
// =============================================================================

func TestGetDashboard(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "ready", resp["status"])

	overview := resp["overview"].(map[string]interface{})
	assert.Equal(t, 28000.0, overview["personal_balance"])
	assert.Equal(t, 2500.0, overview["total_lent"])
	assert.Equal(t, 1500.0, overview["total_owed"])
	assert.Equal(t, 29000.0, overview["net_worth"])

	assert.Len(t, resp["personal_accounts"], 3)
	assert.Len(t, resp["friend_accounts"], 3)
	assert.Len(t, resp["transactions"], 6)
}

func TestGetAccounts(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Len(t, resp["personal"], 3)
	assert.Len(t, resp["friends"], 3)
}

func TestGetTransactions(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, 6.0, resp["total"])
	first := resp["transactions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "2025-07-10", first["date"])
	assert.Equal(t, "debit", first["type"])
}

func TestGetSpending(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/spending?start_date=2025-07-06&end_date=2025-07-31", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "2025-07-06", resp["start_date"])
	assert.Equal(t, map[string]interface{}{"Food": 350.0}, resp["spending"])
}

func TestGetSpending_InvalidRange(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/spending?start_date=2025-08-01&end_date=2025-07-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, w)["code"])

	w = do(t, r, http.MethodGet, "/api/v1/spending?start_date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "date", decode(t, w)["field"])
}

func TestGetCharts_NoChartIsNull(t *testing.T) {
	r := setupTestRouter(t, nil)

	for _, path := range []string{"/api/v1/charts/category", "/api/v1/charts/monthly"} {
		w := do(t, r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"chart":null}`, w.Body.String())
	}
}

func TestToggleVisibility_MasksDashboard(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/v1/visibility/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hidden":true}`, w.Body.String())

	resp := decode(t, do(t, r, http.MethodGet, "/api/v1/dashboard", nil))
	display := resp["overview_display"].(map[string]interface{})
	assert.Equal(t, "****", display["personal_balance"])
}

func TestReload(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/v1/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode(t, w)["status"])
}

// =============================================================================
// Dialogs
// =============================================================================

func TestTransactionDialog_Flow(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/dialogs/transaction", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"state":"closed"}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/dialogs/transaction/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "open", resp["state"])
	draft := resp["draft"].(map[string]interface{})
	assert.Equal(t, "2025-07-11", draft["date"])
	assert.Equal(t, "debit", draft["type"])

	w = do(t, r, http.MethodPatch, "/api/v1/dialogs/transaction", map[string]string{
		"description": "Groceries",
		"name":        "Supermarket",
		"amount":      "100",
		"category":    "Food",
		"account":     "Wallet",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/dialogs/transaction/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.Equal(t, "Supermarket", created["name"])
	assert.NotEmpty(t, created["id"])

	// Dialog closed, store refetched
	w = do(t, r, http.MethodGet, "/api/v1/dialogs/transaction", nil)
	assert.JSONEq(t, `{"state":"closed"}`, w.Body.String())

	dash := decode(t, do(t, r, http.MethodGet, "/api/v1/dashboard", nil))
	overview := dash["overview"].(map[string]interface{})
	assert.Equal(t, 27900.0, overview["personal_balance"])
	first := dash["transactions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Supermarket", first["name"])
}

func TestTransactionDialog_ValidationKeepsOpen(t *testing.T) {
	r := setupTestRouter(t, nil)

	do(t, r, http.MethodPost, "/api/v1/dialogs/transaction/open", nil)
	do(t, r, http.MethodPatch, "/api/v1/dialogs/transaction", map[string]string{
		"description": "Groceries",
		"name":        "Supermarket",
		"amount":      "abc",
		"category":    "Food",
		"account":     "Wallet",
	})

	w := do(t, r, http.MethodPost, "/api/v1/dialogs/transaction/submit", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp["code"])
	assert.Equal(t, "amount", resp["field"])

	w = do(t, r, http.MethodGet, "/api/v1/dialogs/transaction", nil)
	assert.Equal(t, "open", decode(t, w)["state"])
}

func TestTransactionDialog_UnknownAccount(t *testing.T) {
	r := setupTestRouter(t, nil)

	do(t, r, http.MethodPost, "/api/v1/dialogs/transaction/open", nil)
	do(t, r, http.MethodPatch, "/api/v1/dialogs/transaction", map[string]string{
		"description": "Taxi",
		"name":        "Taxi",
		"amount":      "300",
		"category":    "Travel",
		"account":     "Piggy Bank",
	})

	w := do(t, r, http.MethodPost, "/api/v1/dialogs/transaction/submit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
}

func TestDialog_Errors(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/v1/dialogs/budget/open", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Closed dialogs reject edits and submits
	w = do(t, r, http.MethodPatch, "/api/v1/dialogs/account", map[string]string{"name": "Cash"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(t, r, http.MethodPost, "/api/v1/dialogs/account/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	do(t, r, http.MethodPost, "/api/v1/dialogs/account/open", nil)
	w = do(t, r, http.MethodPatch, "/api/v1/dialogs/account", map[string]string{"nickname": "JJ"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/dialogs/account", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountDialog_CreateAndCancel(t *testing.T) {
	r := setupTestRouter(t, nil)

	do(t, r, http.MethodPost, "/api/v1/dialogs/account/open", nil)
	do(t, r, http.MethodPatch, "/api/v1/dialogs/account", map[string]string{
		"name":            "Sam Lee",
		"kind":            "friend",
		"initial_balance": "750",
		"contact":         "sam@example.com",
	})
	w := do(t, r, http.MethodPost, "/api/v1/dialogs/account/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "friend", decode(t, w)["kind"])

	accounts := decode(t, do(t, r, http.MethodGet, "/api/v1/accounts", nil))
	assert.Len(t, accounts["friends"], 4)

	// Duplicate name within the kind
	do(t, r, http.MethodPost, "/api/v1/dialogs/account/open", nil)
	do(t, r, http.MethodPatch, "/api/v1/dialogs/account", map[string]string{
		"name": "wallet", "kind": "personal", "initial_balance": "1",
	})
	w = do(t, r, http.MethodPost, "/api/v1/dialogs/account/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	do(t, r, http.MethodPost, "/api/v1/dialogs/account/open", nil)
	w = do(t, r, http.MethodPost, "/api/v1/dialogs/account/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"state":"closed"}`, w.Body.String())
}

// =============================================================================
// Export
// =============================================================================

func TestExportTransactionsCSV(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/export/transactions.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transactions.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "id,date,"))
}

func TestExportAccountsCSV(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/export/accounts.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 7)
}

// =============================================================================
// Middleware
// =============================================================================

func TestRateLimit(t *testing.T) {
	src, err := memory.New(memory.DefaultSeed(), nil)
	require.NoError(t, err)
	svc := dashboard.NewService(ledger.NewStore(10), src, nil)

	r := httpapi.NewRouter(httpapi.Config{
		RateLimitRPS:     1,
		RateLimitBurst:   1,
		DashboardHandler: handler.NewDashboardHandler(svc),
	})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, r, http.MethodGet, "/health", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	r := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/dialogs/transaction", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
