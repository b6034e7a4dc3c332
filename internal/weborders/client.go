// Package weborders talks to the e-commerce order system and maps its orders
// onto the local sale shape so web sales can be merged into the resume.
package weborders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Order is the wire shape of an e-commerce order. Only the fields the rollup
// engine needs are decoded; everything else on the wire is ignored.
type Order struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	Total         string        `json:"total"`
	PaymentMethod string        `json:"payment_method"`
	CreatedAt     string        `json:"created_at"`
	Items         []OrderItem   `json:"items"`
	Refunds       []OrderRefund `json:"refunds"`
}

type OrderItem struct {
	ID        string `json:"id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type OrderRefund struct {
	ItemID   string `json:"item_id"`
	Quantity int32  `json:"quantity"`
}

type ordersResponse struct {
	Orders []Order `json:"orders"`
}

// Client is an HTTP client for the e-commerce order API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// OrdersBetween fetches orders created within [from, to). Instants are sent
// as RFC3339 so the order system does its own range filtering.
func (c *Client) OrdersBetween(ctx context.Context, from, to time.Time) ([]Order, error) {
	endpoint := fmt.Sprintf("%s/api/v1/orders?%s", c.baseURL, url.Values{
		"from": {from.Format(time.RFC3339)},
		"to":   {to.Format(time.RFC3339)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch web orders: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web orders API returned status %d", resp.StatusCode)
	}

	var body ordersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode web orders: %w", err)
	}
	return body.Orders, nil
}
