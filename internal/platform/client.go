package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyHost indicates that no workspace host was configured.
var ErrEmptyHost = errors.New("workspace host cannot be empty")

type (
	// Client is a workspace REST client bound to one principal. The service
	// principal client lives for the whole process; delegated clients are
	// built per request from the forwarded user token.
	Client struct {
		http *resty.Client
	}

	// Option configures a Client during construction.
	Option func(*Client)

	// APIError is a non-2xx response from the workspace, decoded from the
	// standard Databricks error envelope when possible.
	APIError struct {
		StatusCode int    `json:"-"`
		ErrorCode  string `json:"error_code"`
		Message    string `json:"message"`
	}
)

// WithToken authenticates every request with the given bearer token.
// An empty token leaves the client unauthenticated.
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.http.SetAuthToken(token)
		}
	}
}

// NewClient builds a workspace client for the given host. A bare hostname is
// accepted and upgraded to https.
func NewClient(host string, opts ...Option) (*Client, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, ErrEmptyHost
	}

	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(host, "/")).
			SetHeader("Accept", "application/json"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("workspace API error %d (%s): %s", e.StatusCode, e.ErrorCode, e.Message)
	}

	return fmt.Sprintf("workspace API error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		Get(path)

	return checkResponse(resp, err)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		Post(path)

	return checkResponse(resp, err)
}

// checkResponse maps transport failures and non-2xx responses to errors.
// The upstream error text is preserved: the endpoint layer surfaces it
// verbatim in 500 responses.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("workspace request failed: %w", err)
	}

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if jsonErr := json.Unmarshal(resp.Body(), apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(resp.Body()))
		}

		return apiErr
	}

	return nil
}
