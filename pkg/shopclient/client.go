package shopclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Skotchmaster/min_commerce/internal/models"
	"github.com/Skotchmaster/min_commerce/internal/service/order"
)

// Client talks to the storefront API: the catalog read interface and
// the order submission boundary.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SetAccessToken attaches the session cookie to subsequent requests.
func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

// APIError is a non-2xx response from the storefront.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: c.accessToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &APIError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var result struct {
		Data []models.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/slug/"+slug, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req order.PlaceRequest) (*models.Order, error) {
	var created models.Order
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
