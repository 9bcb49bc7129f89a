// Package api implements the HTTP client bound to the storefront API.
// It is a thin pass-through: no retries, no caching, no interpretation
// of responses beyond mapping failure statuses to domain error kinds.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tiketto/tiketto/internal/domain"
	"github.com/tiketto/tiketto/internal/identity"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Tiketto/1.0"
)

// Client implements domain.CartClient, domain.CatalogClient, and
// domain.CheckoutClient against the storefront API.
type Client struct {
	baseURL    string
	resolver   *identity.Resolver
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new storefront API client.
func NewClient(baseURL string, resolver *identity.Resolver, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  baseURL,
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs one JSON request with identity headers injected
// immediately before dispatch, so credentials and locale are always
// current. Non-2xx statuses come back as domain error kinds.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if err := c.resolver.Apply(req.Header); err != nil {
		return nil, fmt.Errorf("failed to resolve identity headers: %w", err)
	}

	c.logger.Debug("api request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Context cancellation must stay recognizable to callers; only
		// genuine transport failures collapse to the offline sentinel.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("api request failed", "method", method, "path", path, "error", err)
		return nil, domain.ErrServerUnreachable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.mapError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// mapError converts a failed response into a structured error kind, so
// callers switch on a type instead of matching message substrings.
func (c *Client) mapError(status int, body []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	if envelope.Error.Code == errCodeStockExceeded {
		return &domain.StockError{Available: envelope.Error.Available}
	}

	switch status {
	case http.StatusUnauthorized:
		return domain.ErrAuthFailed
	case http.StatusNotFound:
		return domain.ErrCartNotFound
	case http.StatusLocked, http.StatusConflict:
		if envelope.Error.Code == errCodeCartLocked {
			return domain.ErrCartLocked
		}
	}

	c.logger.Error("api request error", "status", status, "body", string(body))
	return &StatusError{Status: status, Message: envelope.Error.Message}
}

// StatusError reports a failed response not covered by a sentinel kind.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("unexpected status code: %d", e.Status)
}

// GetCart fetches the current cart; guest or authenticated is
// distinguished purely by the injected headers.
func (c *Client) GetCart(ctx context.Context) ([]domain.CartLine, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/cart", nil)
	if err != nil {
		return nil, err
	}

	var resp cartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to parse cart response", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse cart response: %w", err)
	}

	// A missing items array is an empty cart, not an error.
	return mapCartLines(resp.Items), nil
}

// SetItemQuantity sets the absolute quantity for one product line.
func (c *Client) SetItemQuantity(ctx context.Context, productID string, quantity int) error {
	path := fmt.Sprintf("/api/cart/items/%s", url.PathEscape(productID))
	_, err := c.doRequest(ctx, http.MethodPatch, path, quantityRequest{Quantity: quantity})
	return err
}

// ClearCart removes every cart line for the authenticated session.
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/api/cart/items", nil)
	return err
}

// GetProducts returns the product catalog in the active language.
func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/products", nil)
	if err != nil {
		return nil, err
	}

	var resp productsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to parse products response", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse products response: %w", err)
	}

	return mapProducts(resp.Products), nil
}

// PlaceOrder turns the current cart into an order.
func (c *Client) PlaceOrder(ctx context.Context) (string, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/orders", nil)
	if err != nil {
		return "", err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse order response: %w", err)
	}
	return resp.OrderID, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse login response: %w", err)
	}
	return resp.Token, nil
}
