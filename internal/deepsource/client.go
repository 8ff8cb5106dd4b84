// Package deepsource is a thin client for the DeepSource GraphQL API. It
// builds the queries and mutations the MCP tools need, adapts the response
// shapes into typed domain objects, and normalizes cursor pagination through
// the pagination package.
package deepsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/deepsource-contrib/deepsource-mcp/internal/metrics"
)

// DefaultEndpoint is the public DeepSource GraphQL endpoint.
const DefaultEndpoint = "https://api.deepsource.io/graphql/"

// Client talks to the DeepSource GraphQL API. It holds no per-call state;
// all methods are safe for concurrent use.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint URL.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a DeepSource API client authenticated with the given
// personal access token.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint: DefaultEndpoint,
		apiKey:   apiKey,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// gqlRequest is the JSON envelope POSTed to the GraphQL endpoint.
type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// gqlResponse is the standard GraphQL response envelope.
type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

// APIError represents a failure reported by the DeepSource API, either an
// HTTP-level error or GraphQL errors in an otherwise well-formed response.
type APIError struct {
	Operation string
	Status    int
	Messages  []string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 && len(e.Messages) == 0 {
		return fmt.Sprintf("deepsource: %s: HTTP %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("deepsource: %s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// execute performs a GraphQL call and unmarshals the data payload into
// result. The operation name is used for logging, metrics, and errors.
func (c *Client) execute(ctx context.Context, operation, query string, vars map[string]any, result any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("deepsource: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("deepsource: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.ObserveRequest(operation, "network_error", time.Since(start))
		return fmt.Errorf("deepsource: %s: %w", operation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveRequest(operation, "read_error", time.Since(start))
		return fmt.Errorf("deepsource: read response: %w", err)
	}
	metrics.ObserveRequest(operation, fmt.Sprint(resp.StatusCode), time.Since(start))

	c.logger.Debug().
		Str("operation", operation).
		Int("status_code", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("GraphQL request")

	if resp.StatusCode != http.StatusOK {
		return &APIError{Operation: operation, Status: resp.StatusCode, Messages: bodyMessages(respBody)}
	}

	var envelope gqlResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("deepsource: decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		c.logger.Error().
			Str("operation", operation).
			Strs("errors", msgs).
			Msg("GraphQL errors")
		return &APIError{Operation: operation, Messages: msgs}
	}

	if result != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("deepsource: decode %s result: %w", operation, err)
		}
	}
	return nil
}

// bodyMessages extracts GraphQL error messages from a non-200 body when the
// server still returned an error envelope, else falls back to the raw body.
func bodyMessages(body []byte) []string {
	var envelope gqlResponse
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return msgs
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}
	return []string{trimmed}
}
