package paymentprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.razorpay.com/v1"

// Client клиент Orders API платёжного шлюза.
type Client struct {
	keyID      string
	keySecret  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного шлюза. Пустой apiURL заменяется боевым адресом.
func NewClient(keyID, keySecret, apiURL string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.keyID + ":" + c.keySecret))
	req.Header.Set("Authorization", "Basic "+auth)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("unexpected status %s: %s", resp.Status, apiErr.Error.Description)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateOrder создаёт заказ. Сумма передаётся в минимальных единицах валюты.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderRequest) (*Order, error) {
	const op = "paymentprovider.CreateOrder"
	req, err := c.newRequest(ctx, http.MethodPost, "/orders", params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var order Order
	if err = c.do(req, &order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

// GetOrder получает заказ по идентификатору.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	const op = "paymentprovider.GetOrder"
	req, err := c.newRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var order Order
	if err = c.do(req, &order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

// KeyID публичный идентификатор ключа для фронтенда.
func (c *Client) KeyID() string {
	return c.keyID
}
