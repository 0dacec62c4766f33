// Package logseq is a thin client for the Logseq local HTTP API. It owns
// request plumbing only: auth, retries and response decoding. Turning the
// raw records into markdown is the convert package's job.
package logseq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// DefaultURL is where the Logseq desktop app serves its HTTP API.
const DefaultURL = "http://localhost:12315"

// ErrUnauthorized is returned when the API rejects the configured token.
var ErrUnauthorized = errors.New("invalid API token")

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	attempts   uint
	retryDelay time.Duration
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetry overrides the attempt count and base delay for transient
// failures.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.retryDelay = delay
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
		attempts:   3,
		retryDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do calls one Logseq API method and returns the raw response records.
// Network errors and 5xx responses are retried with backoff; auth
// rejections and malformed responses are not.
func (c *Client) Do(ctx context.Context, method string, args ...any) ([]map[string]any, error) {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(map[string]any{"method": method, "args": args})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	c.logger.Debug("logseq api request", zap.String("method", method))

	var records []map[string]any
	err = retry.Do(
		func() error {
			var doErr error
			records, doErr = c.do(ctx, payload)
			return doErr
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.Warn("retrying logseq api request",
				zap.String("method", method),
				zap.Uint("attempt", attempt+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) do(ctx context.Context, payload []byte) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api", bytes.NewReader(payload))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("logseq api request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, retry.Unrecoverable(ErrUnauthorized)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("logseq api returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Unrecoverable(fmt.Errorf("logseq api returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	return records, nil
}

// decodeRecords accepts the usual JSON array of records and, for
// endpoints that answer with one bare object, wraps it into a
// single-element list. JSON null decodes to no records.
func decodeRecords(body []byte) ([]map[string]any, error) {
	var records []map[string]any
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}
	var single map[string]any
	if err := json.Unmarshal(body, &single); err == nil {
		if single == nil {
			return nil, nil
		}
		return []map[string]any{single}, nil
	}
	return nil, fmt.Errorf("unexpected logseq api response shape")
}
