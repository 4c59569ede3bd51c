// Package apiclient talks to the store backend on behalf of the storefront:
// it fetches the catalog and creates orders. Requests are never retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tiendaonline/storefront/internal/orders"
)

const (
	pathProducts = "/api/productos"
	pathOrders   = "/api/pedidos"

	// HeaderIdempotencyKey lets the backend collapse a resent order onto the first one.
	HeaderIdempotencyKey = "Idempotency-Key"
)

type Option func(*Client)

// WithHTTPClient overrides the transport; its Timeout bounds each call.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithKeyFunc replaces the generator used for orders sent without a key.
func WithKeyFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newKey = fn
		}
	}
}

type Client struct {
	base   *url.URL
	http   *http.Client
	newKey func() string
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid base URL: %w", err)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 10 * time.Second},
		newKey: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]orders.Product, error) {
	var out []orders.Product
	if err := c.do(ctx, http.MethodGet, pathProducts, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// CreateOrder posts one order under idempotencyKey, so resending the same
// key after an ambiguous failure yields the first order instead of a second
// one. An empty key gets a generated one.
func (c *Client) CreateOrder(ctx context.Context, idempotencyKey string, req orders.OrderRequest) (orders.OrderCreatedResp, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return orders.OrderCreatedResp{}, fmt.Errorf("encode order: %w", err)
	}
	if idempotencyKey == "" {
		idempotencyKey = c.newKey()
	}
	h := http.Header{}
	h.Set(HeaderIdempotencyKey, idempotencyKey)

	var out orders.OrderCreatedResp
	if err := c.do(ctx, http.MethodPost, pathOrders, h, body, &out); err != nil {
		return orders.OrderCreatedResp{}, fmt.Errorf("create order: %w", err)
	}
	if out.OrderID <= 0 {
		return orders.OrderCreatedResp{}, errors.New("create order: response without pedido_id")
	}
	return out, nil
}

// do sends a request to path below the base URL, keeping any prefix the
// base carries.
func (c *Client) do(ctx context.Context, method, path string, h http.Header, body []byte, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), rd)
	if err != nil {
		return err
	}
	for k, vs := range h {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
