// Package paymentprovider реализует HTTP-клиента платёжного провайдера:
// создание заказа на оплату и типы webhook-уведомления о её результате.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Client клиент API платёжного провайдера.
type Client struct {
	appID      string
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт нового клиента провайдера.
func NewClient(appID, secretKey, apiURL string) *Client {
	return &Client{
		appID:      appID,
		secretKey:  secretKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)
	req.Header.Set("x-api-version", "2023-08-01")
	return req, nil
}

// CreateOrder отправляет запрос на создание заказа и возвращает
// идентификатор платёжной сессии.
func (c *Client) CreateOrder(ctx context.Context, reqParams CreateOrderRequest) (*CreateOrderResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/orders", reqParams)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var orderResp CreateOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, err
	}
	if orderResp.OrderStatus != "ACTIVE" {
		if orderResp.Message != "" {
			return nil, errors.New(orderResp.Message)
		}
		return nil, errors.New("order is not active")
	}
	return &orderResp, nil
}
