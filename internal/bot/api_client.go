package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vydatky/internal/core"
)

// Expense is the backend wire representation the bot displays to users.
type Expense struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	AmountLocal float64 `json:"amount_local"`
	AmountRef   float64 `json:"amount_ref"`
}

// APIClient talks to the expense JSON API. Backend failures are translated
// back into the shared error taxonomy so the bot can phrase them.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *APIClient) CreateExpense(ctx context.Context, description, date, amount string) (Expense, error) {
	payload := map[string]any{
		"description":  description,
		"date":         date,
		"amount_local": amount,
	}
	var out Expense
	if err := c.doJSON(ctx, http.MethodPost, "/expenses", payload, &out); err != nil {
		return Expense{}, err
	}
	return out, nil
}

func (c *APIClient) GetExpense(ctx context.Context, id int64) (Expense, error) {
	var out Expense
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/expenses/%d", id), nil, &out); err != nil {
		return Expense{}, err
	}
	return out, nil
}

func (c *APIClient) UpdateExpense(ctx context.Context, id int64, description, amount string) (Expense, error) {
	payload := map[string]any{
		"description":  description,
		"amount_local": amount,
	}
	var out Expense
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/expenses/%d", id), payload, &out); err != nil {
		return Expense{}, err
	}
	return out, nil
}

func (c *APIClient) DeleteExpense(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/expenses/%d", id), nil, nil)
}

// FetchReport downloads the range report document.
func (c *APIClient) FetchReport(ctx context.Context, start, end string) ([]byte, error) {
	q := url.Values{"start_date": {start}, "end_date": {end}}
	return c.doDocument(ctx, "/expenses/report?"+q.Encode())
}

// FetchInventory downloads the full expense dump.
func (c *APIClient) FetchInventory(ctx context.Context) ([]byte, error) {
	return c.doDocument(ctx, "/expenses/all")
}

func (c *APIClient) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *APIClient) doDocument(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, apiError(resp)
	}
	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return doc, nil
}

// apiError converts a backend error response into the shared taxonomy.
func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
	detail := body.Error
	if detail == "" {
		detail = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", core.ErrNotFound, detail)
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return fmt.Errorf("%w: %s", core.ErrValidation, detail)
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", core.ErrRateUnavailable, detail)
	default:
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, detail)
	}
}
