package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type manualTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) session.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

type recorder struct {
	mu        sync.Mutex
	views     []string
	expired   int
	forbidden []string
}

func (r *recorder) Navigate(view string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}

func (r *recorder) SessionExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired++
}

func (r *recorder) PermissionDenied(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forbidden = append(r.forbidden, message)
}

func (r *recorder) Views() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.views...)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

var profile = &session.UserProfile{ID: "user-1", Name: "Ada", Email: "ada@example.com", Role: authz.RoleMentor, IsActive: true}

type fixture struct {
	client  *Client
	session *session.Session
	clock   *manualClock
	rec     *recorder
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	clock := &manualClock{now: epoch}
	sess := session.New(session.NewMemoryStore(), session.WithClock(clock))
	rec := &recorder{}

	c := New(Config{
		BaseURL:   srv.URL,
		Session:   sess,
		Notifier:  rec,
		Navigator: rec,
	})
	return &fixture{client: c, session: sess, clock: clock, rec: rec}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		respond(w, http.StatusOK, map[string]int{"unread_count": 3})
	})
	token := signedToken(t, epoch.Add(time.Hour))
	require.NoError(t, f.session.Login(token, profile))

	count, err := f.client.UnreadNotificationCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, "Bearer "+token, gotAuth)
}

func TestDo_NoTokenSendsNoAuthorization(t *testing.T) {
	var gotAuth string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		respond(w, http.StatusOK, map[string]string{})
	})

	require.NoError(t, f.client.Do(context.Background(), http.MethodGet, "/api/constants/all", nil, nil, nil))
	assert.Empty(t, gotAuth)
}

func TestUnauthorized_ValidTokenKeepsSession(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid authentication credentials"})
	})
	require.NoError(t, f.session.Login(signedToken(t, epoch.Add(time.Hour)), profile))

	_, err := f.client.ListLogs(context.Background(), ListOptions{})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindAuthentication, apiErr.Kind)
	assert.True(t, apiErr.Retryable)
	assert.Equal(t, "Invalid authentication credentials", apiErr.Message)

	assert.True(t, f.session.IsAuthenticated())
	assert.NotNil(t, f.session.User())
	f.clock.Advance(5 * time.Second)
	assert.Empty(t, f.rec.Views())
	assert.Zero(t, f.rec.expired)
}

func TestUnauthorized_ExpiredTokenClearsAndRedirectsAfterDelay(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusUnauthorized, map[string]string{"detail": "Token expired"})
	})
	require.NoError(t, f.session.Login(signedToken(t, epoch.Add(-time.Minute)), profile))

	_, err := f.client.ListLogs(context.Background(), ListOptions{})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindAuthentication, apiErr.Kind)
	assert.False(t, apiErr.Retryable)

	assert.Empty(t, f.session.Token())
	assert.Nil(t, f.session.User())
	assert.Equal(t, 1, f.rec.expired)
	assert.Empty(t, f.rec.Views())

	f.clock.Advance(DefaultRedirectDelay)
	assert.Equal(t, []string{DefaultLoginView}, f.rec.Views())
}

func TestUnauthorized_NoTokenRedirectsOnce(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.client.ListLogs(context.Background(), ListOptions{})
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{DefaultLoginView}, f.rec.Views())

	// The in-flight flag resets so a later 401 can redirect again.
	f.clock.Advance(DefaultRedirectResetAfter)
	_, _ = f.client.ListLogs(context.Background(), ListOptions{})
	assert.Len(t, f.rec.Views(), 2)
}

func TestForbiddenNeverLogsOut(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusForbidden, map[string]string{"detail": "Insufficient permissions"})
	})
	require.NoError(t, f.session.Login(signedToken(t, epoch.Add(time.Hour)), profile))

	_, err := f.client.ApproveLog(context.Background(), "log-1")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindAuthorization, apiErr.Kind)
	assert.False(t, apiErr.Retryable)
	assert.True(t, f.session.IsAuthenticated())
	assert.Equal(t, []string{"Insufficient permissions"}, f.rec.forbidden)
	assert.Empty(t, f.rec.Views())
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      interface{}
		kind      Kind
		retryable bool
		message   string
	}{
		{name: "not found", status: 404, body: map[string]string{"detail": "Mentorship log not found"}, kind: KindNotFound, message: "Mentorship log not found"},
		{
			name:   "validation",
			status: 422,
			body: map[string]interface{}{"detail": []map[string]interface{}{
				{"loc": []interface{}{"body", "email"}, "msg": "field required", "type": "value_error.missing"},
				{"loc": []interface{}{"body", "mentees_present", 0, "name"}, "msg": "field required", "type": "value_error.missing"},
			}},
			kind:    KindValidation,
			message: "body.email: field required; body.mentees_present.0.name: field required",
		},
		{name: "server error", status: 503, body: map[string]string{"detail": "Service unavailable"}, kind: KindServer, retryable: true, message: "Service unavailable"},
		{name: "bad request", status: 400, body: map[string]string{"detail": "Rejection reason is required"}, kind: KindUnknown, message: "Rejection reason is required"},
		{name: "no body", status: 500, body: nil, kind: KindServer, retryable: true, message: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				respond(w, tt.status, tt.body)
			})

			_, err := f.client.GetLog(context.Background(), "log-1")

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.retryable, apiErr.Retryable)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestValidationFields(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, 422, map[string]interface{}{"detail": []map[string]interface{}{
			{"loc": []interface{}{"body", "visit_date"}, "msg": "invalid date", "type": "value_error"},
		}})
	})

	_, err := f.client.CreateLog(context.Background(), CreateLogRequest{FacilityID: "f1"})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "body.visit_date", apiErr.Fields[0].Path())
	assert.Equal(t, "value_error", apiErr.Fields[0].Type)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	sess := session.New(session.NewMemoryStore())
	c := New(Config{BaseURL: srv.URL, Session: sess})

	_, err := c.ListLogs(context.Background(), ListOptions{})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.True(t, apiErr.Retryable)
}

func TestLogin_StoresTokenAndProfile(t *testing.T) {
	var token string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body loginRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Password != "secret123" {
				respond(w, 401, map[string]string{"detail": "Incorrect email or password"})
				return
			}
			respond(w, 200, tokenResponse{AccessToken: token, TokenType: "bearer"})
		case "/api/auth/me":
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			respond(w, 200, profile)
		default:
			respond(w, 404, map[string]string{"detail": "Not Found"})
		}
	})
	token = signedToken(t, epoch.Add(24*time.Hour))

	got, err := f.client.Login(context.Background(), "ada@example.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, profile, got)
	assert.True(t, f.session.IsAuthenticated())
	assert.Equal(t, token, f.session.Token())
	assert.Equal(t, profile, f.session.User())
}

func TestLogin_BadPassword(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, 401, map[string]string{"detail": "Incorrect email or password"})
	})

	_, err := f.client.Login(context.Background(), "ada@example.com", "wrong")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Incorrect email or password", apiErr.Message)
	assert.False(t, f.session.IsAuthenticated())
}

func TestLogout_ClearsSessionEvenOnServerError(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, 500, map[string]string{"detail": "boom"})
	})
	require.NoError(t, f.session.Login(signedToken(t, epoch.Add(time.Hour)), profile))

	err := f.client.Logout(context.Background())

	assert.Error(t, err)
	assert.Empty(t, f.session.Token())
	assert.Nil(t, f.session.User())
}

func TestLogout_ExpiredTokenSkipsServer(t *testing.T) {
	calls := 0
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		respond(w, http.StatusUnauthorized, map[string]string{"detail": "Token has expired"})
	})
	require.NoError(t, f.session.Login(signedToken(t, epoch.Add(-time.Minute)), profile))

	require.NoError(t, f.client.Logout(context.Background()))

	assert.Zero(t, calls)
	assert.Empty(t, f.session.Token())
	assert.Zero(t, f.rec.expired)
	f.clock.Advance(5 * time.Second)
	assert.Empty(t, f.rec.Views())
}

func TestLogout_RevokedTokenDoesNotShowExpiry(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusUnauthorized, map[string]string{"detail": "Token has been revoked"})
	})
	require.NoError(t, f.session.Login(signedToken(t, epoch.Add(time.Hour)), profile))

	err := f.client.Logout(context.Background())

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindAuthentication, apiErr.Kind)
	assert.Empty(t, f.session.Token())
	assert.Zero(t, f.rec.expired)
	assert.Empty(t, f.rec.Views())
}

func TestRejectThenResubmit_RendersFromResponse(t *testing.T) {
	rejectedAt := epoch.Add(time.Hour)
	reason := "incomplete assessment"
	var gotReason string

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/mentorship-logs/log-1/reject":
			gotReason = r.URL.Query().Get("reason")
			respond(w, 200, Log{ID: "log-1", Status: "draft", RejectedAt: &rejectedAt, RejectionReason: &reason})
		case "/api/mentorship-logs/log-1/submit":
			respond(w, 200, Log{ID: "log-1", Status: "submitted"})
		}
	})
	require.NoError(t, f.session.Login(signedToken(t, epoch.Add(time.Hour)), profile))

	returned, err := f.client.RejectLog(context.Background(), "log-1", reason)
	require.NoError(t, err)
	assert.Equal(t, reason, gotReason)
	assert.Equal(t, "returned", returned.DisplayStatus())

	resubmitted, err := f.client.SubmitLog(context.Background(), "log-1")
	require.NoError(t, err)
	assert.Equal(t, "submitted", resubmitted.DisplayStatus())
	assert.Nil(t, resubmitted.RejectedAt)
	assert.Nil(t, resubmitted.RejectionReason)
}

func TestDashboard_OrderIndependent(t *testing.T) {
	for _, slowLogs := range []bool{true, false} {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/mentorship-logs":
				if slowLogs {
					time.Sleep(30 * time.Millisecond)
				}
				respond(w, 200, Page[Log]{Items: []Log{{ID: "l1"}}, Total: 42, Limit: 1})
			case "/api/follow-ups":
				if !slowLogs {
					time.Sleep(30 * time.Millisecond)
				}
				respond(w, 200, Page[FollowUp]{Items: []FollowUp{}, Total: 7, Limit: 1})
			}
		})
		require.NoError(t, f.session.Login(signedToken(t, epoch.Add(time.Hour)), profile))

		counts, err := f.client.Dashboard(context.Background())

		require.NoError(t, err)
		assert.Equal(t, &DashboardCounts{Logs: 42, FollowUps: 7}, counts)
	}
}

func TestDashboard_PropagatesError(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/follow-ups" {
			respond(w, 500, map[string]string{"detail": "boom"})
			return
		}
		respond(w, 200, Page[Log]{Total: 1})
	})
	require.NoError(t, f.session.Login(signedToken(t, epoch.Add(time.Hour)), profile))

	_, err := f.client.Dashboard(context.Background())

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindServer, apiErr.Kind)
}

func TestListOptions_Values(t *testing.T) {
	v := ListOptions{Skip: 10, Limit: 5, Status: "submitted", FacilityID: "f1"}.values()
	assert.Equal(t, "facility_id=f1&limit=5&skip=10&status=submitted", v.Encode())
}

func TestLogin_FailureDoesNotRedirect(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respond(w, 401, map[string]string{"detail": "Incorrect email or password"})
	})

	_, _ = f.client.Login(context.Background(), "ada@example.com", "wrong")

	assert.Empty(t, f.rec.Views())
}
