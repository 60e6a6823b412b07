package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fabclean/fabclean-web/libs/httpx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 1 << 20

// Client talks to the laundry API origin.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(httpx.RequestIDTransport{Base: http.DefaultTransport}),
		},
	}
}

func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/signup", req)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, path, "", body, &out); err != nil {
		return AuthResult{}, err
	}
	if out.Token == "" {
		return AuthResult{}, fmt.Errorf("POST %s: token missing: %w", path, ErrMalformedResponse)
	}
	return out, nil
}

func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	var out []Service
	if err := c.do(ctx, http.MethodGet, "/api/services", "", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Service{}
	}
	return out, nil
}

// CreateOrder submits an order. token may be empty.
func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) error {
	return c.do(ctx, http.MethodPost, "/api/orders", token, req, nil)
}

type errorBody struct {
	Error *string `json:"error"`
}

// do performs one request. out == nil means a 2xx response may have any or no body.
func (c *Client) do(ctx context.Context, method, path, token string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	raw = bytes.TrimSpace(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		if len(raw) == 0 || json.Unmarshal(raw, &eb) != nil {
			return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrMalformedResponse)
		}
		apiErr := &APIError{Status: resp.StatusCode}
		if eb.Error != nil {
			apiErr.Message = *eb.Error
		}
		return apiErr
	}

	if len(raw) == 0 {
		if out == nil {
			return nil
		}
		return fmt.Errorf("%s %s: empty body: %w", method, path, ErrMalformedResponse)
	}
	if raw[0] == '{' {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != nil && *eb.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: *eb.Error}
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode: %v: %w", method, path, err, ErrMalformedResponse)
	}
	return nil
}
