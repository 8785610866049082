// Package session maintains the authenticated identity as an explicit,
// injectable state machine: anonymous -> authenticating -> authenticated, and
// back to anonymous on logout or forced teardown. Permission checks consult a
// static role table and gate UI affordances only.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/unkn0wn-root/optisync"
	"github.com/unkn0wn-root/optisync/codec"
	"github.com/unkn0wn-root/optisync/entity"
)

// State of the session machine.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Session is a point-in-time snapshot of the manager's state.
type Session struct {
	User            *entity.User
	Token           string
	State           State
	IsAuthenticated bool
	// IsLoading is true only during the initial hydrate and while a login
	// call is in flight.
	IsLoading bool
}

// Credentials for Login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthGateway is the slice of the HTTP gateway the session needs.
// *gateway.Client satisfies it.
type AuthGateway interface {
	Post(ctx context.Context, path string, body any, out any) error
}

// Options tune a Manager. Gateway and Storage are required.
type Options struct {
	Gateway AuthGateway
	Storage Storage

	// Serializes the persisted user record. nil => codec.JSON.
	Codec codec.Codec[entity.User]

	Logger optisync.Logger // nil => NopLogger
	Roles  RoleTable       // nil => DefaultRoles
}

// Manager owns the session singleton for one application root. Safe for
// concurrent use. It implements gateway.TokenSource, so a gateway constructed
// with Token: manager attaches the bearer token automatically.
type Manager struct {
	gw    AuthGateway
	store Storage
	codec codec.Codec[entity.User]
	log   optisync.Logger
	roles RoleTable

	mu       sync.RWMutex
	state    State
	user     *entity.User
	token    string
	hydrated bool
	loading  bool
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("session: gateway is required")
	}
	if opts.Storage == nil {
		return nil, fmt.Errorf("session: storage is required")
	}
	m := &Manager{
		gw:    opts.Gateway,
		store: opts.Storage,
		log:   optisync.Coalesce[optisync.Logger](opts.Logger, optisync.NopLogger{}),
		roles: opts.Roles,
		state: StateAnonymous,
	}
	if opts.Codec != nil {
		m.codec = opts.Codec
	} else {
		m.codec = codec.JSON[entity.User]{}
	}
	if m.roles == nil {
		m.roles = DefaultRoles
	}
	return m, nil
}

// Session returns a snapshot copy of the current state.
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Session{
		Token:           m.token,
		State:           m.state,
		IsAuthenticated: m.state == StateAuthenticated,
		IsLoading:       m.loading,
	}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// Token implements gateway.TokenSource.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// Hydrate restores a persisted session. Call once at process start, before
// the first render. A missing or unreadable persisted session leaves the
// manager anonymous without error; storage IO failures are returned.
func (m *Manager) Hydrate(ctx context.Context) error {
	m.mu.Lock()
	if m.hydrated {
		m.mu.Unlock()
		return nil
	}
	m.loading = true
	m.mu.Unlock()

	token, userRaw, err := m.store.Read(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	m.hydrated = true

	if err != nil {
		return fmt.Errorf("session: hydrate: %w", err)
	}
	if token == "" || len(userRaw) == 0 {
		return nil
	}
	user, err := m.codec.Decode(userRaw)
	if err != nil {
		// corrupt persisted record; stay anonymous, storage will be
		// overwritten on the next login
		m.log.Warn("persisted user record unreadable", optisync.Fields{"err": err})
		return nil
	}
	m.token = token
	m.user = &user
	m.state = StateAuthenticated
	m.log.Info("session hydrated", optisync.Fields{"user": user.Email, "role": user.Role})
	return nil
}

type loginPayload struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

// Login authenticates against the backend. On success the token and user are
// persisted and the manager transitions to authenticated. On any failure
// (invalid credentials, network, server) the error is returned unchanged for
// the form to display, state does not transition, and nothing is retried;
// resubmission is an explicit user action.
func (m *Manager) Login(ctx context.Context, creds Credentials) error {
	m.mu.Lock()
	m.state = StateAuthenticating
	m.loading = true
	m.mu.Unlock()

	var payload loginPayload
	err := m.gw.Post(ctx, "/login", creds, &payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false

	if err != nil {
		m.state = StateAnonymous
		return err
	}

	userRaw, encErr := m.codec.Encode(payload.User)
	if encErr == nil {
		if werr := m.store.Write(ctx, payload.Token, userRaw); werr != nil {
			// session still works for this process; it just won't survive a
			// restart
			m.log.Warn("persisting session failed", optisync.Fields{"err": werr})
		}
	}

	m.token = payload.Token
	user := payload.User
	m.user = &user
	m.state = StateAuthenticated
	m.log.Info("logged in", optisync.Fields{"user": user.Email, "role": user.Role})
	return nil
}

// Logout clears durable storage and transitions to anonymous. Unconditional:
// it cannot fail, and a storage error only means the cleared state may
// resurrect on restart.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn("clearing session storage failed", optisync.Fields{"err": err})
	}

	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.state = StateAnonymous
	m.loading = false
	m.mu.Unlock()
	m.log.Info("logged out", nil)
}

// ForceTeardown is Logout for the gateway's 401 path. Wire it to
// gateway.Config.OnUnauthorized.
func (m *Manager) ForceTeardown() { m.Logout(context.Background()) }

// UpdateProfile pushes a profile change and re-persists the confirmed user
// record.
func (m *Manager) UpdateProfile(ctx context.Context, patch entity.User) error {
	var updated entity.User
	if err := m.gw.Post(ctx, "/profile", patch, &updated); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &updated
	if raw, err := m.codec.Encode(updated); err == nil {
		if werr := m.store.Write(ctx, m.token, raw); werr != nil {
			m.log.Warn("persisting profile update failed", optisync.Fields{"err": werr})
		}
	}
	return nil
}

// ChangePassword submits a password change. Validation failures come back as
// a *gateway.ValidationError for field-level display.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{
		"current_password": current,
		"password":         next,
	}
	return m.gw.Post(ctx, "/profile/password", body, nil)
}

// HasPermission reports whether the current user's role holds ANY of the
// given permissions (OR semantics, see RoleTable.Allows). Anonymous sessions
// hold nothing.
func (m *Manager) HasPermission(perms ...string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated || m.user == nil {
		return false
	}
	return m.roles.Allows(m.user.Role, perms...)
}
