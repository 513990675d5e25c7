// Package client is the Go SDK for the mentorship log API. Every request
// goes through Client, which attaches the bearer token, classifies failures
// and tears the session down when its token has expired.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mentorlog/mentorlog-api/pkg/httpclient"
	"github.com/mentorlog/mentorlog-api/pkg/session"
)

const (
	DefaultRedirectDelay      = time.Second
	DefaultRedirectResetAfter = 2 * time.Second
	DefaultLoginView          = "/login"
)

// Notifier shows user-facing notices.
type Notifier interface {
	SessionExpired()
	PermissionDenied(message string)
}

// Navigator performs redirects.
type Navigator interface {
	Navigate(view string)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient httpclient.Client
	Session    *session.Session
	Notifier   Notifier
	Navigator  Navigator
	// Clock defaults to the session clock.
	Clock session.Clock

	LoginView          string
	RedirectDelay      time.Duration
	RedirectResetAfter time.Duration
}

// Client is the single egress point to the API.
type Client struct {
	baseURL    string
	http       httpclient.Client
	session    *session.Session
	notifier   Notifier
	navigator  Navigator
	clock      session.Clock
	loginView  string
	delay      time.Duration
	resetAfter time.Duration

	// redirecting suppresses duplicate redirects while one is pending.
	redirecting atomic.Bool
}

// New creates a client. Session is required.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       cfg.HTTPClient,
		session:    cfg.Session,
		notifier:   cfg.Notifier,
		navigator:  cfg.Navigator,
		clock:      cfg.Clock,
		loginView:  cfg.LoginView,
		delay:      cfg.RedirectDelay,
		resetAfter: cfg.RedirectResetAfter,
	}
	if c.http == nil {
		c.http = httpclient.NewClientWithTimeout(30 * time.Second)
	}
	if c.clock == nil {
		c.clock = cfg.Session.Clock()
	}
	if c.notifier == nil {
		c.notifier = noopNotifier{}
	}
	if c.navigator == nil {
		c.navigator = noopNavigator{}
	}
	if c.loginView == "" {
		c.loginView = DefaultLoginView
	}
	if c.delay <= 0 {
		c.delay = DefaultRedirectDelay
	}
	if c.resetAfter <= 0 {
		c.resetAfter = DefaultRedirectResetAfter
	}
	return c
}

// Session returns the session the client reads its token from.
func (c *Client) Session() *session.Session {
	return c.session
}

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	// token overrides the session token when set.
	token string
	// anonymous requests bypass the 401 session policy.
	anonymous bool
}

// Do sends one request and decodes a 2xx JSON body into out. out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	return c.do(ctx, request{method: method, path: path, query: query, body: body}, out)
}

func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	token := r.token
	if token == "" {
		token = c.session.Token()
	}

	req, err := c.newRequest(ctx, r, token)
	if err != nil {
		return &Error{Kind: KindUnknown, Message: err.Error(), Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "network error", Retryable: true, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "failed to read response", Retryable: true, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: "invalid response body", Err: err}
		}
		return nil
	}

	apiErr := classify(resp.StatusCode, body)
	switch apiErr.Kind {
	case KindAuthentication:
		if !r.anonymous {
			c.handleUnauthorized(token, apiErr)
		}
	case KindAuthorization:
		c.notifier.PermissionDenied(apiErr.Message)
	}
	return apiErr
}

func (c *Client) newRequest(ctx context.Context, r request, token string) (*http.Request, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// handleUnauthorized applies the 401 policy:
//   - no token: log out and redirect now;
//   - token expired locally: log out, notify, redirect after the delay;
//   - token still valid: keep the session, return a retryable error.
func (c *Client) handleUnauthorized(token string, apiErr *Error) {
	if token == "" {
		_ = c.session.Logout()
		c.redirect(0)
		return
	}

	if session.TokenValid(token, c.clock.Now()) {
		apiErr.Retryable = true
		return
	}

	_ = c.session.Logout()
	c.notifier.SessionExpired()
	c.redirect(c.delay)
}

// redirect navigates to the login view at most once per reset window.
func (c *Client) redirect(delay time.Duration) {
	if !c.redirecting.CompareAndSwap(false, true) {
		return
	}
	c.clock.AfterFunc(c.resetAfter, func() { c.redirecting.Store(false) })

	if delay <= 0 {
		c.navigator.Navigate(c.loginView)
		return
	}
	c.clock.AfterFunc(delay, func() { c.navigator.Navigate(c.loginView) })
}

type noopNotifier struct{}

func (noopNotifier) SessionExpired()         {}
func (noopNotifier) PermissionDenied(string) {}

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}
