// pkg/disbursement/client.go

// Package disbursement is a synchronous client for the external transfer provider.
//
// Every failure (transport error, timeout, non-2xx status, undecodable body) is
// reported as an error wrapping ErrGatewayCall; callers never inspect provider
// specific error payloads.
package disbursement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrGatewayCall is the single opaque error for any failed provider call.
var ErrGatewayCall = errors.New("gateway call failed")

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 1 << 20

// Client is a client for the disbursement provider API.
type Client struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new provider client. timeout bounds every HTTP round trip.
func NewClient(baseURL, secretKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		SecretKey: secretKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "disbursement_client"),
	}
}

// TransferRequest describes an outbound transfer.
type TransferRequest struct {
	AccountNumber string
	BankCode      string
	Amount        decimal.Decimal
	Narration     string
	Reference     string
}

// transferPayload is the wire shape of TransferRequest.
type transferPayload struct {
	AccountNumber string      `json:"account_number"`
	BankCode      string      `json:"bank_code"`
	Amount        json.Number `json:"amount"`
	Narration     string      `json:"narration"`
	Reference     string      `json:"reference"`
}

// TransferResult is the provider's view of a transfer.
type TransferResult struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// InitiateTransfer asks the provider to move money to the recipient account.
func (c *Client) InitiateTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	payload := transferPayload{
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		Amount:        json.Number(req.Amount.StringFixed(2)),
		Narration:     req.Narration,
		Reference:     req.Reference,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal transfer request: %v", ErrGatewayCall, err)
	}
	return c.do(ctx, "initiate_transfer", http.MethodPost, "/transfers", body)
}

// VerifyTransfer fetches the current provider status of a transfer.
func (c *Client) VerifyTransfer(ctx context.Context, reference string) (*TransferResult, error) {
	return c.do(ctx, "verify_transfer", http.MethodGet, "/transfers/"+url.PathEscape(reference), nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) (*TransferResult, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrGatewayCall, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Info("Calling provider", "op", op, "method", method, "path", path)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Warn("Provider request failed", "op", op, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrGatewayCall, op, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %v", ErrGatewayCall, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Provider returned non-2xx response", "op", op, "status", resp.StatusCode, "body", truncate(bodyBytes, 512))
		return nil, fmt.Errorf("%w: %s: unexpected status %d", ErrGatewayCall, op, resp.StatusCode)
	}

	var result TransferResult
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		c.logger.Warn("Provider returned malformed response", "op", op, "status", resp.StatusCode, "error", err)
		return nil, fmt.Errorf("%w: %s: decode response: %v", ErrGatewayCall, op, err)
	}

	c.logger.Info("Provider responded", "op", op, "status", resp.StatusCode, "reference", result.Reference, "transfer_status", result.Status)
	return &result, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
