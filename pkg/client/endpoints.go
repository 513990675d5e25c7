package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mentorlog/mentorlog-api/pkg/session"
	"golang.org/x/sync/errgroup"
)

// Login exchanges credentials for a token, fetches the profile and stores
// both in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*session.UserProfile, error) {
	var tok tokenResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/api/auth/login",
		body:      loginRequest{Email: email, Password: password},
		anonymous: true,
	}, &tok)
	if err != nil {
		return nil, err
	}

	var profile session.UserProfile
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/auth/me", token: tok.AccessToken}, &profile); err != nil {
		return nil, err
	}

	if err := c.session.Login(tok.AccessToken, &profile); err != nil {
		return nil, &Error{Kind: KindUnknown, Message: "failed to store session", Err: err}
	}
	return &profile, nil
}

// Me returns the current user from the server.
func (c *Client) Me(ctx context.Context) (*session.UserProfile, error) {
	var profile session.UserProfile
	if err := c.Do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout revokes the token on the server and always clears the session.
// An expired token is only cleared locally; a 401 here never triggers the
// session-expired flow.
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if token := c.session.Token(); session.TokenValid(token, c.clock.Now()) {
		err = c.do(ctx, request{method: http.MethodPost, path: "/api/auth/logout", token: token, anonymous: true}, nil)
	}
	if clearErr := c.session.Logout(); clearErr != nil {
		return clearErr
	}
	return err
}

// ListLogs returns a page of visible mentorship logs.
func (c *Client) ListLogs(ctx context.Context, opts ListOptions) (*Page[Log], error) {
	var page Page[Log]
	if err := c.Do(ctx, http.MethodGet, "/api/mentorship-logs", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetLog fetches one log.
func (c *Client) GetLog(ctx context.Context, id string) (*Log, error) {
	return c.logRequest(ctx, http.MethodGet, "/api/mentorship-logs/"+url.PathEscape(id), nil, nil)
}

// CreateLog creates a draft log.
func (c *Client) CreateLog(ctx context.Context, req CreateLogRequest) (*Log, error) {
	return c.logRequest(ctx, http.MethodPost, "/api/mentorship-logs", nil, req)
}

// SubmitLog submits a draft for review.
func (c *Client) SubmitLog(ctx context.Context, id string) (*Log, error) {
	return c.logAction(ctx, id, "submit", nil)
}

// ApproveLog approves a submitted log.
func (c *Client) ApproveLog(ctx context.Context, id string) (*Log, error) {
	return c.logAction(ctx, id, "approve", nil)
}

// ReturnLogToDraft sends a submitted log back without a rejection.
func (c *Client) ReturnLogToDraft(ctx context.Context, id string) (*Log, error) {
	return c.logAction(ctx, id, "return-to-draft", nil)
}

// RejectLog returns a submitted log for revision with a reason.
func (c *Client) RejectLog(ctx context.Context, id, reason string) (*Log, error) {
	return c.logAction(ctx, id, "reject", url.Values{"reason": {reason}})
}

// DeleteLog deletes a log.
func (c *Client) DeleteLog(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/api/mentorship-logs/"+url.PathEscape(id), nil, nil, nil)
}

// ListFollowUps returns a page of visible follow-ups.
func (c *Client) ListFollowUps(ctx context.Context, opts ListOptions) (*Page[FollowUp], error) {
	var page Page[FollowUp]
	if err := c.Do(ctx, http.MethodGet, "/api/follow-ups", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UnreadNotificationCount returns the number of unread notifications.
func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var resp unreadCount
	if err := c.Do(ctx, http.MethodGet, "/api/notifications/count", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

// Dashboard fetches the log and follow-up totals concurrently. The result
// does not depend on which request finishes first.
func (c *Client) Dashboard(ctx context.Context) (*DashboardCounts, error) {
	var counts DashboardCounts
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := c.ListLogs(gctx, ListOptions{Limit: 1})
		if err != nil {
			return err
		}
		counts.Logs = page.Total
		return nil
	})
	g.Go(func() error {
		page, err := c.ListFollowUps(gctx, ListOptions{Limit: 1})
		if err != nil {
			return err
		}
		counts.FollowUps = page.Total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (c *Client) logAction(ctx context.Context, id, action string, query url.Values) (*Log, error) {
	return c.logRequest(ctx, http.MethodPost, "/api/mentorship-logs/"+url.PathEscape(id)+"/"+action, query, nil)
}

func (c *Client) logRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*Log, error) {
	var log Log
	if err := c.Do(ctx, method, path, query, body, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Skip > 0 {
		v.Set("skip", strconv.Itoa(o.Skip))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Status != "" {
		v.Set("status", o.Status)
	}
	if o.FacilityID != "" {
		v.Set("facility_id", o.FacilityID)
	}
	if o.MentorID != "" {
		v.Set("mentor_id", o.MentorID)
	}
	return v
}
