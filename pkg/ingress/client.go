package ingress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/greener-hub/greener-reporter/pkg/errors"
	"github.com/greener-hub/greener-reporter/pkg/version"
)

// Client performs single request/response exchanges with the ingestion service.
// It never retries.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the service at endpoint.
// A trailing slash on endpoint is ignored.
func NewClient(endpoint, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		userAgent:  "greener-reporter-go/" + version.String(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the normalized base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// CreateSession posts a session and returns the service-assigned session.
func (c *Client) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	var session Session
	if err := c.Do(ctx, http.MethodPost, c.endpoint+SessionsPath, req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ReportTestcases posts one batch of testcases. The reply body is only
// checked for being JSON.
func (c *Client) ReportTestcases(ctx context.Context, testcases []Testcase) error {
	return c.Do(ctx, http.MethodPost, c.endpoint+TestcasesPath, &TestcasesRequest{Testcases: testcases}, nil)
}

// Do sends body as JSON to url and decodes a 200/201 reply into out.
// Every failure of the exchange is returned as *errors.IngressError.
func (c *Client) Do(ctx context.Context, method, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.TransportError(1, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.TransportError(1, 0, err.Error())
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return parseError(resp.StatusCode, respBody)
	}

	if out == nil {
		var discard any
		out = &discard
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.TransportError(1, resp.StatusCode, "failed to parse response: "+err.Error())
	}
	return nil
}

// parseError extracts {detail|message, code} from an error reply.
// Code defaults to 1; an unparsable body becomes the message verbatim.
func parseError(status int, body []byte) *errors.IngressError {
	var parsed struct {
		Detail  *string         `json:"detail"`
		Message *string         `json:"message"`
		Code    json.RawMessage `json:"code"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.TransportError(1, status, string(body))
	}

	code := 1
	if len(parsed.Code) > 0 {
		var n int
		if err := json.Unmarshal(parsed.Code, &n); err == nil {
			code = n
		}
	}

	var message string
	switch {
	case parsed.Detail != nil && *parsed.Detail != "":
		message = *parsed.Detail
	case parsed.Message != nil:
		message = *parsed.Message
	}
	return errors.TransportError(code, status, message)
}
