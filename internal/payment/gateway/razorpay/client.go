package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/payhook/internal/config"
	"github.com/smallbiznis/payhook/internal/payment/domain"
)

const defaultTimeout = 12 * time.Second

// maxErrorBody bounds how much of a failed response is read for the message.
const maxErrorBody = 64 << 10

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client talks to the Razorpay Orders API using HTTP basic auth.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewClient(cfg config.Config) *Client {
	timeout := cfg.Razorpay.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Razorpay.APIBaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultRazorpayAPIURL
	}
	return &Client{
		keyID:     strings.TrimSpace(cfg.Razorpay.KeyID),
		keySecret: strings.TrimSpace(cfg.Razorpay.KeySecret),
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// Provide exposes the client as the domain gateway.
func Provide(cfg config.Config) domain.Gateway {
	return NewClient(cfg)
}

func (c *Client) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (*domain.Order, error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, domain.ErrGatewayNotConfigured
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}

	var order domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("razorpay_response_invalid: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("razorpay_response_invalid")
	}
	return &order, nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var rzpErr errorResponse
	if err := json.Unmarshal(raw, &rzpErr); err != nil {
		return fmt.Errorf("razorpay_request_failed: status %d", resp.StatusCode)
	}
	message := strings.TrimSpace(rzpErr.Error.Description)
	if message == "" {
		message = strings.TrimSpace(rzpErr.Error.Code)
	}
	if message == "" {
		return fmt.Errorf("razorpay_request_failed: status %d", resp.StatusCode)
	}
	return errors.New(message)
}
