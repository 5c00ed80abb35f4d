package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bkcnorm/internal/config"
	"bkcnorm/internal/domain"
	"bkcnorm/internal/port"
	"bkcnorm/internal/portlookup"
)

const (
	providerName   = "http"
	defaultTimeout = 10 * time.Second
	retryBackoff   = 200 * time.Millisecond
	maxBodyBytes   = 1 << 20
)

func init() {
	portlookup.RegisterProvider(providerName, func(cfg *config.PortProviderConfig, _ []config.PortEntry) (port.PortResolver, error) {
		if cfg.URL == "" {
			return nil, fmt.Errorf("%s port lookup: url is required", providerName)
		}
		return NewClient(cfg), nil
	})
}

// Client implements port.PortResolver against a JSON port code lookup API.
type Client struct {
	endpoint   string
	maxRetries int
	client     *http.Client
}

// NewClient creates a client for the endpoint in cfg.
func NewClient(cfg *config.PortProviderConfig) *Client {
	return newClient(cfg, "")
}

// NewClientWithEndpoint creates a client pointing at a custom endpoint (for testing).
func NewClientWithEndpoint(cfg *config.PortProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.PortProviderConfig, endpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if endpoint == "" {
		endpoint = cfg.URL
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		endpoint:   endpoint,
		maxRetries: retries,
		client:     &http.Client{Timeout: timeout},
	}
}

type lookupRequest struct {
	UserDescription string `json:"user_description"`
	CountryCode     string `json:"country_code"`
}

type lookupResponse struct {
	PortCode *string `json:"port_code"`
}

// Resolve posts the description and country code and returns the port code.
// Transport failures and 5xx responses are retried up to maxRetries times;
// a 429 response returns a *portlookup.RateLimitError without retrying.
func (c *Client) Resolve(ctx context.Context, description, countryCode string) (string, error) {
	body, err := json.Marshal(lookupRequest{UserDescription: description, CountryCode: countryCode})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
		code, retryable, err := c.do(ctx, body)
		if err == nil {
			return code, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) do(ctx context.Context, body []byte) (code string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("calling port lookup API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", true, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := portlookup.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return "", false, portlookup.NewRateLimitError(providerName,
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200)), retryAfter)
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", true, fmt.Errorf("port lookup API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", false, fmt.Errorf("port lookup API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	return parseResponse(respBody)
}

func parseResponse(body []byte) (string, bool, error) {
	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false, fmt.Errorf("unmarshaling response: %w (raw: %s)", err, truncate(string(body), 200))
	}
	if resp.PortCode == nil || strings.TrimSpace(*resp.PortCode) == "" {
		return "", false, domain.ErrPortNotResolved
	}
	return strings.TrimSpace(*resp.PortCode), false, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
