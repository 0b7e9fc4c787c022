package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// ErrEmptyToken is returned by Login for a blank token.
var ErrEmptyToken = errors.New("session: empty token")

// Manager is the process-wide session. Token is safe for concurrent use and never
// blocks; Open, Login and Clear write through to the Store.
type Manager struct {
	store  Store
	token  atomic.Pointer[string]
	logger *slog.Logger
}

type ManagerOption func(*Manager)

func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager returns a Manager over store. A nil store means NewMemoryStore().
func NewManager(store Store, opts ...ManagerOption) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	m := &Manager{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		if o != nil {
			o(m)
		}
	}
	return m
}

// Open loads the persisted token, if any, into memory.
func (m *Manager) Open(ctx context.Context) error {
	tok, err := m.store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		m.token.Store(nil)
		return nil
	}
	if err != nil {
		return err
	}
	m.set(tok)
	m.logger.Debug("session restored")
	return nil
}

// Token returns the current token or "" when signed out.
func (m *Manager) Token() string {
	if p := m.token.Load(); p != nil {
		return *p
	}
	return ""
}

func (m *Manager) LoggedIn() bool { return m.Token() != "" }

// Login persists token and makes it current.
func (m *Manager) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := m.store.Save(ctx, token); err != nil {
		return err
	}
	m.set(token)
	m.logger.Info("session started")
	return nil
}

// Clear drops the token from memory and from the store. The in-memory token is
// dropped even when the store fails.
func (m *Manager) Clear(ctx context.Context) error {
	m.token.Store(nil)
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("session store clear failed", "err", err)
		return err
	}
	m.logger.Info("session cleared")
	return nil
}

// Logout is Clear under the name callers expect.
func (m *Manager) Logout(ctx context.Context) error { return m.Clear(ctx) }

func (m *Manager) set(tok string) {
	if tok == "" {
		m.token.Store(nil)
		return
	}
	m.token.Store(&tok)
}
