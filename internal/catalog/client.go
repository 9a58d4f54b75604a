package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/maplecart/storefront-api/internal/resilience"
)

// ErrNotFound indicates the upstream catalog has no such product.
var ErrNotFound = errors.New("product not found")

// Product mirrors the public catalog API payload. Numeric fields are
// treated as already validated by the upstream service.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Brand              string   `json:"brand"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Tags               []string `json:"tags"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
	AvailabilityStatus string   `json:"availabilityStatus"`
}

type listPayload struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// Client fetches products from the upstream catalog service, caching
// responses in Redis and retrying transient failures.
type Client struct {
	BaseURL string
	HTTP    resilience.HTTPClient
	Cache   *Cache
}

// NewClient builds a catalog client with an instrumented transport.
func NewClient(baseURL string, cache *Cache) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: resilience.HTTPClient{
			Client: &http.Client{
				Timeout:   10 * time.Second,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
			Breaker:     resilience.NewBreaker(5, 30*time.Second),
			MaxAttempts: 3,
			BaseBackoff: 200 * time.Millisecond,
		},
		Cache: cache,
	}
}

// List returns the full product listing (upstream limit=0 semantics).
func (c *Client) List(ctx context.Context) ([]Product, error) {
	const cacheKey = "catalog:products"
	var payload listPayload
	if ok, _ := c.Cache.get(ctx, cacheKey, &payload); ok {
		return payload.Products, nil
	}
	if err := c.fetch(ctx, "/products?limit=0", &payload); err != nil {
		return nil, err
	}
	_ = c.Cache.put(ctx, cacheKey, payload)
	return payload.Products, nil
}

// Get returns a single product by its upstream identifier.
func (c *Client) Get(ctx context.Context, id int) (Product, error) {
	cacheKey := fmt.Sprintf("catalog:product:%d", id)
	var product Product
	if ok, _ := c.Cache.get(ctx, cacheKey, &product); ok {
		return product, nil
	}
	if err := c.fetch(ctx, fmt.Sprintf("/products/%d", id), &product); err != nil {
		return Product{}, err
	}
	_ = c.Cache.put(ctx, cacheKey, product)
	return product, nil
}

// Ping probes the upstream service for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	var payload listPayload
	return c.fetch(ctx, "/products?limit=1", &payload)
}

func (c *Client) fetch(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("catalog: fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: fetch %s: unexpected status %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
