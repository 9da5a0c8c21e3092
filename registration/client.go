package registration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"registro/ctxlog"
)

const (
	DefaultEndpoint = "http://localhost:8000/api/registro/"
	RequestIDHeader = "X-Request-ID"
)

var (
	// ErrTransport covers requests that never produced a response body:
	// encoding, connection and read failures.
	ErrTransport = errors.New("registration request failed")
	// ErrMalformedErrorBody is returned when a non-OK response does not
	// carry a JSON object.
	ErrMalformedErrorBody = errors.New("malformed error response")
)

// Sender posts a payload and classifies the response.
type Sender interface {
	Send(ctx context.Context, payload Payload) (*Outcome, error)
}

// Client posts registration payloads to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	headers    map[string]string
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The default has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		headers: map[string]string{
			"Accept": "application/json",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send makes one POST of the payload as JSON. An OK-range status is a
// success and its body is ignored. Any other status must carry a JSON
// object of messages.
func (c *Client) Send(ctx context.Context, payload Payload) (*Outcome, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding payload: %w", ErrTransport, err)
	}

	requestID := uuid.New().String()
	ctx = ctxlog.With(ctx, "request_id", requestID)
	logger := ctxlog.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrTransport, err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger.Debug("Sending registration", "endpoint", c.endpoint, "fields", len(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Registration request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	outcome := &Outcome{StatusCode: resp.StatusCode, RequestID: requestID}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		outcome.Success = true
		logger.Info("Registration accepted", "status", resp.StatusCode)
		return outcome, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", ErrTransport, err)
	}
	outcome.Errors, err = ParseErrorBody(raw)
	if err != nil {
		logger.Warn("Unreadable error response", "status", resp.StatusCode, "error", err)
		return nil, err
	}

	logger.Info("Registration rejected", "status", resp.StatusCode, "errors", len(outcome.Errors))
	return outcome, nil
}
