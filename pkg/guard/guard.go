// Package guard gates views on the local session and the viewer's role.
package guard

import (
	"slices"
	"sync"

	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/session"
)

// State of a guarded view.
type State int

const (
	Loading State = iota
	Unauthorized
	Authorized
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthorized:
		return "unauthorized"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Default redirect targets.
const (
	LoginView   = "/login"
	LandingView = "/dashboard"
)

// Navigator performs redirects.
type Navigator interface {
	Navigate(view string)
}

// SessionReader is the part of *session.Session the guard reads.
type SessionReader interface {
	IsAuthenticated() bool
	User() *session.UserProfile
}

// Guard is the state machine for a single mounted view.
type Guard struct {
	mu          sync.Mutex
	session     SessionReader
	nav         Navigator
	roles       []authz.Role
	state       State
	userID      string
	loginView   string
	landingView string
}

// Option configures a Guard.
type Option func(*Guard)

// WithViews overrides the login and landing redirect targets.
func WithViews(login, landing string) Option {
	return func(g *Guard) {
		g.loginView = login
		g.landingView = landing
	}
}

// New creates a guard in the Loading state requiring one of roles. No roles
// means any signed-in user.
func New(sess SessionReader, nav Navigator, roles []authz.Role, opts ...Option) *Guard {
	g := &Guard{
		session:     sess,
		nav:         nav,
		roles:       slices.Clone(roles),
		state:       Loading,
		loginView:   LoginView,
		landingView: LandingView,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current state without evaluating.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Mount evaluates from scratch, as when the view is first shown.
func (g *Guard) Mount() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.evaluateLocked(g.currentUserID())
}

// Evaluate re-checks access if the signed-in user changed since the last
// evaluation, or if nothing has been evaluated yet.
func (g *Guard) Evaluate() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	userID := g.currentUserID()
	if g.state != Loading && userID == g.userID {
		return g.state
	}
	return g.evaluateLocked(userID)
}

// SetRoles changes the required roles and re-evaluates when they differ.
func (g *Guard) SetRoles(roles ...authz.Role) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if slices.Equal(g.roles, roles) && g.state != Loading {
		return g.state
	}
	g.roles = slices.Clone(roles)
	return g.evaluateLocked(g.currentUserID())
}

func (g *Guard) currentUserID() string {
	if u := g.session.User(); u != nil {
		return u.ID
	}
	return ""
}

func (g *Guard) evaluateLocked(userID string) State {
	g.userID = userID

	// A token without a readable profile cannot be authorized; sign in again.
	user := g.session.User()
	if !g.session.IsAuthenticated() || user == nil {
		g.state = Unauthorized
		g.nav.Navigate(g.loginView)
		return g.state
	}

	// Authenticated but not permitted: send to the landing view, not to login.
	if !authz.Authorize(user.Principal(), g.roles...) {
		g.state = Unauthorized
		g.nav.Navigate(g.landingView)
		return g.state
	}

	g.state = Authorized
	return g.state
}
