package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Capture statuses reported by the external bank-transfer processor
const (
	CaptureStatusProcessing = "processing"
	CaptureStatusSucceeded  = "succeeded"
	CaptureStatusFailed     = "failed"
)

// CaptureResult is the processor's synchronous answer to a capture request.
// ProviderRef keys all later webhook reconciliation.
type CaptureResult struct {
	ProviderRef string `json:"provider_ref"`
	Status      string `json:"status"`
}

// Processor is the external bank-transfer provider the platform moves real
// money through. Deposits pull funds in, withdrawals push funds out; both
// complete asynchronously via webhooks.
type Processor interface {
	CaptureDeposit(ctx context.Context, accountID uint, amount float64, currency string) (*CaptureResult, error)
	CaptureWithdrawal(ctx context.Context, accountID uint, amount float64, currency string) (*CaptureResult, error)
}

// HTTPProcessor talks to the provider's REST API
type HTTPProcessor struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProcessor builds a processor from PAYMENT_PROVIDER_URL and
// PAYMENT_PROVIDER_API_KEY
func NewHTTPProcessor() (*HTTPProcessor, error) {
	baseURL := os.Getenv("PAYMENT_PROVIDER_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("PAYMENT_PROVIDER_URL is not set")
	}
	return &HTTPProcessor{
		baseURL: baseURL,
		apiKey:  os.Getenv("PAYMENT_PROVIDER_API_KEY"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type captureRequest struct {
	AccountID uint    `json:"account_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// CaptureDeposit asks the provider to pull funds from the owner's bank account
func (p *HTTPProcessor) CaptureDeposit(ctx context.Context, accountID uint, amount float64, currency string) (*CaptureResult, error) {
	return p.capture(ctx, "/v1/deposits", accountID, amount, currency)
}

// CaptureWithdrawal asks the provider to push funds to the owner's bank account
func (p *HTTPProcessor) CaptureWithdrawal(ctx context.Context, accountID uint, amount float64, currency string) (*CaptureResult, error) {
	return p.capture(ctx, "/v1/withdrawals", accountID, amount, currency)
}

func (p *HTTPProcessor) capture(ctx context.Context, path string, accountID uint, amount float64, currency string) (*CaptureResult, error) {
	body, err := json.Marshal(captureRequest{AccountID: accountID, Amount: amount, Currency: currency})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var result CaptureResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if result.ProviderRef == "" {
		return nil, fmt.Errorf("payment provider returned no reference")
	}
	return &result, nil
}
