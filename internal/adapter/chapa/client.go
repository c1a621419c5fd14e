package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
)

// Gateway abstracts the hosted-checkout payment provider.
type Gateway interface {
	// Initialize creates a checkout session and returns the hosted checkout URL.
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	// Verify looks up the final state of a transaction by its reference.
	Verify(ctx context.Context, txRef string) (*VerifyResult, error)
	// NewTxRef produces a fresh merchant-side transaction reference.
	NewTxRef() string
}

type InitializeRequest struct {
	TxRef     string
	Amount    float64
	Currency  string
	Email     string
	FirstName string
	LastName  string
}

type InitializeResult struct {
	CheckoutURL string
}

type VerifyResult struct {
	// Status is the provider's transaction status, e.g. "success" or "failed".
	Status   string
	Amount   float64
	Currency string
}

const txRefPrefix = "alx-travel-"

type client struct {
	cfg  config.ChapaConfig
	http *http.Client
	log  logger.Logger
}

func NewClient(cfg config.ChapaConfig, log logger.Logger) Gateway {
	if cfg.SecretKey == "" {
		log.Warn("chapa secret key is not configured, payment requests will be rejected by the gateway")
	}
	return &client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

func (c *client) NewTxRef() string {
	return txRefPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

type initializePayload struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = c.cfg.Currency
	}

	payload := initializePayload{
		Amount:      strconv.FormatFloat(req.Amount, 'f', 2, 64),
		Currency:    currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
		CallbackURL: c.cfg.CallbackURL,
		ReturnURL:   c.cfg.ReturnURL,
	}

	var resp apiResponse
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("chapa initialize rejected for tx_ref %s: %s", req.TxRef, resp.Message)
	}

	var data struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode chapa initialize data: %w", err)
	}
	if data.CheckoutURL == "" {
		return nil, fmt.Errorf("chapa initialize returned no checkout URL for tx_ref %s", req.TxRef)
	}

	c.log.Infof("chapa checkout session created, tx_ref %s", req.TxRef)
	return &InitializeResult{CheckoutURL: data.CheckoutURL}, nil
}

func (c *client) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	var resp apiResponse
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+txRef, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("chapa verify rejected for tx_ref %s: %s", txRef, resp.Message)
	}

	var data struct {
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode chapa verify data: %w", err)
	}

	return &VerifyResult{
		Status:   data.Status,
		Amount:   data.Amount,
		Currency: data.Currency,
	}, nil
}

func (c *client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal chapa request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build chapa request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chapa request %s %s failed: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read chapa response: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode chapa response (HTTP %d): %w", res.StatusCode, err)
	}
	return nil
}
