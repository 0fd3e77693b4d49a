package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/transferdesk/platform/internal/domain"
)

// State is the session resolution state of a Gate.
type State int

const (
	StateUnresolved State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}

// ErrAlreadyResolved is returned by a second call to Gate.Resolve.
var ErrAlreadyResolved = errors.New("session already resolved")

// Identity is a resolved session.
type Identity struct {
	UserID    string
	Email     string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// Outcome classifies a gate decision.
type Outcome int

const (
	Allow Outcome = iota
	// Pending means the session is not resolved yet; nothing protected may render.
	Pending
	// RedirectSignIn means there is no identity.
	RedirectSignIn
	// RedirectDefault means the role is not in the view's allow-list.
	RedirectDefault
)

// Decision is the result of Gate.Admit.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// Allowed reports whether the view may be rendered.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Gate tracks one session from unresolved to anonymous or authenticated and
// answers view admission queries.
type Gate struct {
	mu       sync.Mutex
	state    State
	identity *Identity
}

// NewGate returns an unresolved gate.
func NewGate() *Gate {
	return &Gate{}
}

// Resolve settles the session. A nil identity resolves to anonymous. Only the
// first call has an effect.
func (g *Gate) Resolve(id *Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateUnresolved {
		return ErrAlreadyResolved
	}
	if id == nil {
		g.state = StateAnonymous
		return nil
	}
	cp := *id
	g.identity = &cp
	g.state = StateAuthenticated
	return nil
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Identity returns a copy of the resolved identity, or nil.
func (g *Gate) Identity() *Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.identity == nil {
		return nil
	}
	cp := *g.identity
	return &cp
}

// Role returns the cached role while authenticated.
func (g *Gate) Role() (domain.Role, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateAuthenticated {
		return "", false
	}
	return g.identity.Role, true
}

// Admit decides whether the session may open v.
func (g *Gate) Admit(v View) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateUnresolved:
		return Decision{Outcome: Pending}
	case StateAnonymous:
		return Decision{Outcome: RedirectSignIn, Redirect: SignInPath}
	}
	if !v.Permits(g.identity.Role) {
		return Decision{Outcome: RedirectDefault, Redirect: DefaultPath}
	}
	return Decision{Outcome: Allow}
}

// Logout moves the gate to anonymous and drops the cached role before confirm
// runs. A failing confirm is returned but the gate stays anonymous.
func (g *Gate) Logout(ctx context.Context, confirm func(context.Context) error) error {
	g.mu.Lock()
	g.state = StateAnonymous
	g.identity = nil
	g.mu.Unlock()

	if confirm == nil {
		return nil
	}
	return confirm(ctx)
}
