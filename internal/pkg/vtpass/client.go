package vtpass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds aggregator API configuration
type Config struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration
}

// Client talks to the live aggregator API.
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates new aggregator API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

// apiResponse is the aggregator's envelope: {status, message, data{...}}.
type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference     string `json:"reference"`
		Token         string `json:"token"`
		CustomerName  string `json:"customer_name"`
		Address       string `json:"address"`
		TransactionID string `json:"transaction_id"`
	} `json:"data"`
}

// Purchase submits a fulfillment request and returns the vendor reference.
// A "failed" status in a 2xx body is returned as ErrDeclined with the
// vendor message attached.
func (c *Client) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}
	if strings.TrimSpace(req.ServiceID) == "" {
		return nil, fmt.Errorf("validation error: service_id must be non-empty")
	}
	if strings.TrimSpace(req.RequestID) == "" {
		return nil, fmt.Errorf("validation error: request_id must be non-empty")
	}

	payload := map[string]interface{}{
		"request_id": req.RequestID,
		"serviceID":  req.ServiceID,
		"amount":     req.Amount,
	}
	if req.Phone != "" {
		payload["phone"] = req.Phone
	}
	if req.BillerID != "" {
		payload["billersCode"] = req.BillerID
	}
	// PlanCode and MeterType are mutually exclusive fillers of the same
	// variation_code key: plan-priced products carry a PlanCode, electricity
	// carries a MeterType. PlanCode wins if a caller ever sets both.
	switch {
	case req.PlanCode != "":
		payload["variation_code"] = req.PlanCode
	case req.MeterType != "":
		payload["variation_code"] = req.MeterType
	}

	var out apiResponse
	if err := c.post(ctx, "/pay", payload, &out); err != nil {
		return nil, err
	}

	if !strings.EqualFold(out.Status, "success") {
		return nil, fmt.Errorf("%w: %s", ErrDeclined, out.Message)
	}

	ref := out.Data.Reference
	if ref == "" {
		ref = out.Data.TransactionID
	}

	return &PurchaseResult{
		Reference: ref,
		Message:   out.Message,
		Token:     out.Data.Token,
	}, nil
}

// VerifyCustomer resolves the identity behind a smartcard, meter number or
// betting customer id.
func (c *Client) VerifyCustomer(ctx context.Context, req VerifyRequest) (*CustomerInfo, error) {
	if strings.TrimSpace(req.ServiceID) == "" {
		return nil, fmt.Errorf("validation error: service_id must be non-empty")
	}
	if strings.TrimSpace(req.BillerID) == "" {
		return nil, fmt.Errorf("validation error: billers_code must be non-empty")
	}

	payload := map[string]interface{}{
		"serviceID":   req.ServiceID,
		"billersCode": req.BillerID,
	}
	if req.MeterType != "" {
		payload["type"] = req.MeterType
	}

	var out apiResponse
	if err := c.post(ctx, "/merchant-verify", payload, &out); err != nil {
		return nil, err
	}

	if !strings.EqualFold(out.Status, "success") || out.Data.CustomerName == "" {
		return nil, fmt.Errorf("%w: %s", ErrDeclined, out.Message)
	}

	return &CustomerInfo{
		Name:    out.Data.CustomerName,
		Address: out.Data.Address,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out *apiResponse) error {
	if c == nil || c.httpClient == nil {
		return fmt.Errorf("vtpass client is not initialized")
	}
	if strings.TrimSpace(c.config.BaseURL) == "" {
		return fmt.Errorf("vtpass config error: base_url is empty")
	}
	if strings.TrimSpace(c.config.APIKey) == "" {
		return fmt.Errorf("vtpass config error: api_key is empty")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode vtpass request: %w", err)
	}

	base := strings.TrimRight(c.config.BaseURL, "/")
	url := base + path

	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("vtpass api call failed: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.config.APIKey)
	httpReq.Header.Set("secret-key", c.config.SecretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("vtpass api call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("vtpass api call failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vtpass api returned non-2xx status: %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse vtpass response: %w", err)
	}

	return nil
}
