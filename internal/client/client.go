// Package client is a small HTTP client for the storefront API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jogardn/storefront/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// APIError is a non-2xx response from the storefront.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("storefront returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("storefront returned %d: %s %v", e.StatusCode, e.Message, e.Fields)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func New(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type NewCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type NewProduct struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "GET", "/health", nil, nil)
}

func (c *Client) CreateCustomer(ctx context.Context, in NewCustomer) (*models.Customer, error) {
	var resp struct {
		Customer *models.Customer `json:"customer"`
	}
	if err := c.do(ctx, "POST", "/customers", in, &resp); err != nil {
		return nil, err
	}
	return resp.Customer, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := c.do(ctx, "GET", "/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) CreateProduct(ctx context.Context, in NewProduct) (*models.Product, error) {
	var resp struct {
		Product *models.Product `json:"product"`
	}
	if err := c.do(ctx, "POST", "/products", in, &resp); err != nil {
		return nil, err
	}
	return resp.Product, nil
}

func (c *Client) PlaceOrder(ctx context.Context, customerID int64, items []LineItem) (*models.Order, error) {
	body := struct {
		CustomerID int64      `json:"customer_id"`
		Items      []LineItem `json:"items"`
	}{customerID, items}

	var resp struct {
		Order *models.Order `json:"order"`
	}
	if err := c.do(ctx, "POST", "/orders", body, &resp); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"order_id":    resp.Order.ID,
		"total_price": resp.Order.TotalPrice.StringFixed(2),
	}).Debug("Order placed")
	return resp.Order, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, "GET", fmt.Sprintf("/orders/%d", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) TrackOrder(ctx context.Context, id int64) (*models.OrderTracking, error) {
	var tracking models.OrderTracking
	if err := c.do(ctx, "GET", fmt.Sprintf("/orders/%d/track", id), nil, &tracking); err != nil {
		return nil, err
	}
	return &tracking, nil
}

func (c *Client) CancelOrder(ctx context.Context, id int64) (*models.Order, error) {
	var resp struct {
		Order *models.Order `json:"order"`
	}
	if err := c.do(ctx, "PUT", fmt.Sprintf("/orders/%d/cancel", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// do sends body as JSON and decodes a 2xx response into out. Error
// envelopes are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to storefront: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Message string              `json:"message"`
			Errors  map[string][]string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Message = envelope.Message
			apiErr.Fields = envelope.Errors
		}
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("Storefront request failed")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode storefront response: %w", err)
	}
	return nil
}
