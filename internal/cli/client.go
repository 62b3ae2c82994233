package cli

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

	"github.com/spf13/cobra"
)

// maxResponseBytes caps how much of a reply the client will buffer.
const maxResponseBytes = 1 << 20

// Client talks to a namelease server over its JSON API. Replies come
// back as raw JSON; the commands only print them.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient builds a client for the server at base. An empty token
// leaves requests anonymous, which only the lookup endpoints accept.
func NewClient(base, token string) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 15 * time.Second},
	}
}

type claimRequest struct {
	Years  int   `json:"years"`
	Amount int64 `json:"amount"`
}

type renewRequest struct {
	AdditionalYears int   `json:"additional_years"`
	Amount          int64 `json:"amount"`
}

type priceRequest struct {
	PricePerYear int64 `json:"price_per_year"`
}

type multiplierRequest struct {
	RenewalMultiplier int64 `json:"renewal_multiplier"`
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

// Claim leases name for the calling account.
func (c *Client) Claim(ctx context.Context, name string, years int, amount int64) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/domains/"+url.PathEscape(name)+"/claim", claimRequest{Years: years, Amount: amount})
}

// Renew extends the caller's lease on name.
func (c *Client) Renew(ctx context.Context, name string, additionalYears int, amount int64) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/domains/"+url.PathEscape(name)+"/renew", renewRequest{AdditionalYears: additionalYears, Amount: amount})
}

// Info fetches the full lease record for name.
func (c *Client) Info(ctx context.Context, name string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/domains/"+url.PathEscape(name), nil)
}

// Owner fetches just the owning account for name.
func (c *Client) Owner(ctx context.Context, name string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/domains/"+url.PathEscape(name)+"/owner", nil)
}

// Deposit credits the caller's attached value into the registry ledger.
func (c *Client) Deposit(ctx context.Context, amount int64) error {
	_, err := c.do(ctx, http.MethodPost, "/deposit", depositRequest{Amount: amount})
	return err
}

// SetPrice sets the per-year claim price.
func (c *Client) SetPrice(ctx context.Context, price int64) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/admin/price", priceRequest{PricePerYear: price})
}

// SetMultiplier sets the renewal price multiplier.
func (c *Client) SetMultiplier(ctx context.Context, multiplier int64) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/admin/multiplier", multiplierRequest{RenewalMultiplier: multiplier})
}

// Pause stops claims and renewals until Unpause.
func (c *Client) Pause(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/admin/pause", nil)
}

// Unpause resumes claims and renewals.
func (c *Client) Unpause(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/admin/unpause", nil)
}

// Withdraw drains the registry balance to the admin account.
func (c *Client) Withdraw(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/admin/withdraw", nil)
}

// Snapshot exports the registry to the server's blob store.
func (c *Client) Snapshot(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/admin/snapshot", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(resp.StatusCode, data)
	}
	if resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// decodeAPIError turns the server's error envelope into a flat error.
// Replies that are not the envelope (proxies, panics mid-write) fall
// back to the bare status code.
func decodeAPIError(status int, data []byte) error {
	var e struct {
		Code        string `json:"error"`
		Description string `json:"error_description"`
	}
	if json.Unmarshal(data, &e) == nil && e.Code != "" {
		if e.Description == "" {
			return fmt.Errorf("server rejected the request: %s", e.Code)
		}
		return fmt.Errorf("%s: %s", e.Code, e.Description)
	}
	return fmt.Errorf("unexpected status %d", status)
}

// printJSON re-indents raw server JSON onto the command's stdout.
func printJSON(cmd *cobra.Command, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, werr := cmd.OutOrStdout().Write(raw)
		return werr
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), buf.String())
	return err
}
