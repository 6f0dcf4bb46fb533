// Package payment wraps the external payment gateway behind the two calls
// this service actually needs: create an order and fetch its status.  All
// gateway integration detail past this boundary belongs to the gateway.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const apiVersion = "2022-09-01"

// Gateway is the trust boundary the handlers depend on; tests inject a
// fake.
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (OrderStatus, error)
}

// CreateOrderRequest carries everything the gateway needs to open a
// checkout session.
type CreateOrderRequest struct {
	OrderID       string
	Amount        float64
	Currency      string
	CustomerID    string
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	ReturnURL     string
}

// CreateOrderResponse is the slice of the gateway's reply the frontend
// needs to start the checkout flow.
type CreateOrderResponse struct {
	SessionID   string
	PaymentLink string
}

// OrderStatus is the gateway's view of an order, fetched server-to-server
// during confirmation. Paid is true only for a settled payment.
type OrderStatus struct {
	OrderID string
	Status  string
	Paid    bool
}

// Client talks to a Cashfree-style REST gateway.  Credentials ride in the
// x-client-id / x-client-secret headers; the sandbox base URL is the
// default in config.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
}

func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateOrder opens a gateway order and returns the checkout session.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error) {
	phone := req.CustomerPhone
	if phone == "" {
		phone = "9999999999" // gateway requires a phone; placeholder for accounts without one
	}
	payload := map[string]any{
		"order_id":       req.OrderID,
		"order_amount":   req.Amount,
		"order_currency": req.Currency,
		"customer_details": map[string]any{
			"customer_id":    req.CustomerID,
			"customer_email": req.CustomerEmail,
			"customer_name":  req.CustomerName,
			"customer_phone": phone,
		},
		"order_meta": map[string]any{
			"return_url": req.ReturnURL,
		},
	}
	raw, err := c.do(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return CreateOrderResponse{}, err
	}
	return CreateOrderResponse{
		SessionID:   stringValue(raw["payment_session_id"]),
		PaymentLink: nestedString(raw, "payments", "url"),
	}, nil
}

// GetOrder fetches the current status of a gateway order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (OrderStatus, error) {
	raw, err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil)
	if err != nil {
		return OrderStatus{}, err
	}
	status := stringValue(raw["order_status"])
	return OrderStatus{
		OrderID: stringValue(raw["order_id"]),
		Status:  status,
		Paid:    status == "PAID",
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode gateway request: %w", err)
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("x-api-version", apiVersion)
	req.Header.Set("x-client-id", c.apiKey)
	req.Header.Set("x-client-secret", c.apiSecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway responded with status %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return out, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func nestedString(raw map[string]any, keys ...string) string {
	cur := any(raw)
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[k]
	}
	return stringValue(cur)
}
