// Package caisseclient talks to the caisse ledger API and holds the client-side query,
// mutation and reporting state built on top of it.
package caisseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client is a REST client for one ledger store. It is safe for concurrent use.
// The bearer token is part of the value: use WithSession to obtain a client that acts
// for a given user.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger logs failed requests to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for baseURL, e.g. "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession returns a copy of c that sends token as its bearer credential.
func (c *Client) WithSession(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListCaisses returns every register.
func (c *Client) ListCaisses(ctx context.Context) ([]CashRegister, error) {
	var resp struct {
		Results []CashRegister `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/caisse/", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// GetCaisse returns a register and its recent operations.
func (c *Client) GetCaisse(ctx context.Context, caisseID int64) (*RegisterDetail, error) {
	var resp RegisterDetail
	if err := c.do(ctx, http.MethodGet, caissePath(caisseID, ""), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCaisse opens a register with a zero balance.
func (c *Client) CreateCaisse(ctx context.Context, name string) (*CashRegister, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationError("name is required")
	}
	var resp CashRegister
	if err := c.do(ctx, http.MethodPost, "/caisse/", nil, map[string]string{"name": name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Deposit adds amount to a register.
func (c *Client) Deposit(ctx context.Context, caisseID int64, amount decimal.Decimal, description string) (*MutationResult, error) {
	return c.mutate(ctx, caisseID, "deposit", amount, description)
}

// Withdraw removes amount from a register. The store rejects it when the balance is
// insufficient.
func (c *Client) Withdraw(ctx context.Context, caisseID int64, amount decimal.Decimal, description string) (*MutationResult, error) {
	return c.mutate(ctx, caisseID, "withdraw", amount, description)
}

func (c *Client) mutate(ctx context.Context, caisseID int64, action string, amount decimal.Decimal, description string) (*MutationResult, error) {
	body := map[string]string{"amount": amount.String()}
	if description != "" {
		body["description"] = description
	}
	var resp MutationResult
	if err := c.do(ctx, http.MethodPost, caissePath(caisseID, action), nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOperations fetches one page of the ledger.
func (c *Client) ListOperations(ctx context.Context, page int, filters OperationFilters) (*Page, error) {
	var resp Page
	if err := c.do(ctx, http.MethodGet, "/caisse-operations/", filters.values(page), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Summary fetches the store-side aggregate of a register. Dates may be empty.
func (c *Client) Summary(ctx context.Context, caisseID int64, startDate, endDate string) (*Summary, error) {
	q := url.Values{}
	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}
	var resp Summary
	if err := c.do(ctx, http.MethodGet, caissePath(caisseID, "summary"), q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func caissePath(caisseID int64, action string) string {
	p := "/caisse/" + strconv.FormatInt(caisseID, 10) + "/"
	if action != "" {
		p += action + "/"
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return validationError("cannot encode request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &Error{Kind: NetworkError, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Ledger request failed", slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return &Error{Kind: NetworkError, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: NetworkError, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := statusError(resp.StatusCode, raw)
		c.logger.WarnContext(ctx, "Ledger request rejected", slog.String("method", method), slog.String("path", path), slog.Int("status", e.Status), slog.String("error", e.Message))
		return e
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: ServerError, Status: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err), Err: err}
	}
	return nil
}
