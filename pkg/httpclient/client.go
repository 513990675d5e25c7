package httpclient

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client defines an interface for making HTTP requests.
// Webhook delivery and the API SDK depend on it so tests can swap transports.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// StandardHTTPClient wraps the standard http.Client
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardClient creates a new HTTP client with default settings
func NewStandardClient() Client {
	return NewClientWithTimeout(defaultTimeout)
}

// NewClientWithTimeout creates a client with a custom overall request timeout.
func NewClientWithTimeout(timeout time.Duration) Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second

	return &StandardHTTPClient{
		client: &http.Client{Timeout: timeout, Transport: transport},
	}
}

// Wrap adapts an existing *http.Client, e.g. httptest.Server.Client().
func Wrap(c *http.Client) Client {
	return &StandardHTTPClient{client: c}
}

// Do executes an HTTP request
func (c *StandardHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
