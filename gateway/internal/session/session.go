// Package session holds the authenticated identity of a front end client.
//
// The session travels explicitly in context.Context. The terminal front end
// keeps a single Manager backed by a Persister; the gateway keeps a Registry
// of sessions keyed by token.
package session

import (
	"context"
	"sync"

	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Session struct {
	Token string
	User  model.User
}

func New(token string, user model.User) Session {
	return Session{Token: token, User: user}
}

func (s Session) Valid() bool {
	return s.Token != ""
}

func (s Session) Role() role.Role {
	return s.User.Role
}

type ctxKey struct{}

func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	if !ok || !s.Valid() {
		return Session{}, false
	}
	return s, true
}

type Persister interface {
	Load() (Session, error)
	Save(s Session) error
	Clear() error
}

// Manager owns the single session of a terminal client.
type Manager struct {
	mu  sync.RWMutex
	cur Session
	p   Persister
	log *zap.Logger
}

func NewManager(p Persister, log *zap.Logger) *Manager {
	return &Manager{p: p, log: log.Named("session")}
}

// Restore loads the persisted session. A missing or empty one is ErrNoSession.
func (m *Manager) Restore() (Session, error) {
	s, err := m.p.Load()
	if err != nil {
		return Session{}, err
	}
	if !s.Valid() {
		return Session{}, errs.ErrNoSession
	}
	m.mu.Lock()
	m.cur = s
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) Begin(resp model.LoginResponse) (Session, error) {
	if resp.Token == "" {
		return Session{}, errors.Wrap(errs.ErrUnauthorized, "login response without token")
	}
	s := New(resp.Token, resp.User)
	if err := m.p.Save(s); err != nil {
		return Session{}, errors.Wrap(err, "save session")
	}
	m.mu.Lock()
	m.cur = s
	m.mu.Unlock()
	m.log.Debug("session started", zap.String("user", s.User.Email), zap.Stringer("role", s.Role()))
	return s, nil
}

func (m *Manager) End() error {
	m.mu.Lock()
	m.cur = Session{}
	m.mu.Unlock()
	return m.p.Clear()
}

// Invalidate ends the session after the API rejected its token.
func (m *Manager) Invalidate(reason error) {
	m.log.Info("session invalidated", zap.Error(reason))
	if err := m.End(); err != nil {
		m.log.Warn("clear session", zap.Error(err))
	}
}

func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur, m.cur.Valid()
}

// Registry maps bearer tokens to sessions for the gateway.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

func (r *Registry) Put(s Session) {
	if !s.Valid() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Token] = s
}

func (r *Registry) Get(token string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	return s, ok
}

func (r *Registry) Drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
