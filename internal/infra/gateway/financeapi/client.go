package financeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kislikjeka/fintrack/pkg/logger"
)

const (
	DefaultBaseURL        = "http://localhost:8000/api"
	DefaultRequestTimeout = 30 * time.Second
)

// Client is an HTTP client for the finance REST API. Every method returns the
// transport or decoding error as is; degrading is left to Service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// NewClient creates a new finance API client. timeout <= 0 uses DefaultRequestTimeout.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.WithField("component", "financeapi"),
	}
}

// SetBaseURL overrides the base URL (useful for testing)
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// doRequest performs one JSON request. No retries: a failed read is absorbed by
// the caller and the user reloads.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	c.logger.Debug("API request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("API error", "method", method, "path", path, "status_code", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	c.logger.Debug("API response", "status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return respBody, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// GetTransactions fetches the newest limit transactions; limit <= 0 omits the parameter
func (c *Client) GetTransactions(ctx context.Context, limit int) ([]TransactionDTO, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp TransactionsResponse
	if err := c.getJSON(ctx, "/transactions", params, &resp); err != nil {
		return nil, fmt.Errorf("GetTransactions failed: %w", err)
	}
	return resp.Transactions, nil
}

// CreateTransaction posts a transaction without id and returns the server's record
func (c *Client) CreateTransaction(ctx context.Context, tx TransactionDTO) (*TransactionDTO, error) {
	tx.ID = ""

	body, err := c.doRequest(ctx, http.MethodPost, "/transactions", nil, tx)
	if err != nil {
		return nil, fmt.Errorf("CreateTransaction failed: %w", err)
	}

	// Some servers answer with an empty body or a bare acknowledgement
	var created TransactionDTO
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &created); err != nil {
			return nil, fmt.Errorf("failed to decode created transaction: %w", err)
		}
	}
	if created.Date == "" {
		created = tx
	}
	return &created, nil
}

// GetBalances fetches the account name to balance map
func (c *Client) GetBalances(ctx context.Context) (map[string]float64, error) {
	var resp BalancesResponse
	if err := c.getJSON(ctx, "/balances", nil, &resp); err != nil {
		return nil, fmt.Errorf("GetBalances failed: %w", err)
	}
	return resp.Balances, nil
}

// GetSpendingByCategory fetches spending per category; empty bounds are omitted
func (c *Client) GetSpendingByCategory(ctx context.Context, startDate, endDate string) (map[string]float64, error) {
	var resp SpendingResponse
	if err := c.getJSON(ctx, "/spending/category", rangeParams(startDate, endDate), &resp); err != nil {
		return nil, fmt.Errorf("GetSpendingByCategory failed: %w", err)
	}
	return resp.Spending, nil
}

// GetCategoryChart fetches the base64 category chart, nil when the server has none
func (c *Client) GetCategoryChart(ctx context.Context, startDate, endDate string) (*string, error) {
	var resp ChartResponse
	if err := c.getJSON(ctx, "/charts/category", rangeParams(startDate, endDate), &resp); err != nil {
		return nil, fmt.Errorf("GetCategoryChart failed: %w", err)
	}
	return resp.Chart, nil
}

// GetMonthlyChart fetches the base64 monthly chart, nil when the server has none
func (c *Client) GetMonthlyChart(ctx context.Context) (*string, error) {
	var resp ChartResponse
	if err := c.getJSON(ctx, "/charts/monthly", nil, &resp); err != nil {
		return nil, fmt.Errorf("GetMonthlyChart failed: %w", err)
	}
	return resp.Chart, nil
}

func rangeParams(startDate, endDate string) url.Values {
	params := url.Values{}
	if startDate != "" {
		params.Set("start_date", startDate)
	}
	if endDate != "" {
		params.Set("end_date", endDate)
	}
	return params
}

// StatusError is a non-2xx answer from the finance API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("finance API error: status %d, body: %s", e.StatusCode, e.Body)
}

// IsStatusError checks if an error is (or wraps) a finance API status error
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
