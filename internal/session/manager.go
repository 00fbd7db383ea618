package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// Session is the authenticated identity of the current process: an
// opaque bearer token plus the cached profile snapshot. The user is
// only trusted for display while the token is present.
type Session struct {
	Token string
	User  *model.User
}

// Manager is the single source of truth for session state. Resource
// services read the token through it; only the manager itself, the
// 401 interceptor (via Clear) and the profile reconciliation engine
// (via SetUser) ever write.
type Manager struct {
	mu      sync.RWMutex
	storage Storage
	logger  *slog.Logger
	current *Session
}

// NewManager builds a manager over the given storage and restores any
// persisted session. Corrupt persisted data self-heals: the session is
// cleared and the manager starts logged out instead of failing.
func NewManager(ctx context.Context, storage Storage, logger *slog.Logger) (*Manager, error) {
	if storage == nil {
		return nil, errors.New("session storage is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{storage: storage, logger: logger}
	if err := m.restore(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// restore loads the persisted token/user pair. A missing pair means
// logged out; an unparsable pair is cleared rather than surfaced.
func (m *Manager) restore(ctx context.Context) error {
	tok, err := m.storage.Get(ctx, KeyToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("restore session token: %w", err)
	}

	raw, err := m.storage.Get(ctx, KeyUser)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("restore session user: %w", err)
	}

	var user model.User
	if err != nil || json.Unmarshal(raw, &user) != nil {
		// Token without a parsable user is not a usable session.
		m.logger.WarnContext(ctx, "persisted session unreadable, clearing", "key", KeyUser)
		return m.Clear(ctx)
	}

	m.current = &Session{Token: string(tok), User: &user}
	return nil
}

// Set stores the token and user atomically. A token is never retained
// without its user or vice versa.
func (m *Manager) Set(ctx context.Context, token string, user *model.User) error {
	if token == "" || user == nil {
		return errors.New("session requires both token and user")
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err = m.storage.Set(ctx, KeyToken, []byte(token)); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	if err = m.storage.Set(ctx, KeyUser, raw); err != nil {
		// Do not leave a dangling token behind.
		_ = m.storage.Delete(ctx, KeyToken)
		return fmt.Errorf("persist session user: %w", err)
	}

	m.current = &Session{Token: token, User: user}
	return nil
}

// SetUser replaces the cached user while keeping the current token.
// This is the write path the profile reconciliation engine uses after a
// merge; it fails when no session is active.
func (m *Manager) SetUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("session user is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return errors.New("no active session")
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	if err = m.storage.Set(ctx, KeyUser, raw); err != nil {
		return fmt.Errorf("persist session user: %w", err)
	}

	m.current = &Session{Token: m.current.Token, User: user}
	return nil
}

// Get returns a copy of the current session, or nil when logged out.
// Mutating the returned user never touches the cached session; writes
// go through Set and SetUser.
func (m *Manager) Get(_ context.Context) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	return &Session{Token: m.current.Token, User: cloneUser(m.current.User)}
}

// Clear removes both halves of the session. Safe to call when already
// cleared.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	if err := m.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the current bearer token. The second return is false
// when logged out.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", false
	}
	return m.current.Token, true
}

// IsAuthenticated reports whether a token is present.
func (m *Manager) IsAuthenticated(context.Context) bool {
	_, ok := m.Token()
	return ok
}

// cloneUser deep-copies a user through its JSON form so callers cannot
// alias the cached slices and profile. Falls back to the original on a
// marshal failure, which the round-trippable User cannot produce.
func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return u
	}
	var out model.User
	if err = json.Unmarshal(raw, &out); err != nil {
		return u
	}
	return &out
}

// IsAdmin reports whether the cached user carries the admin role.
func (m *Manager) IsAdmin(ctx context.Context) bool {
	s := m.Get(ctx)
	return s != nil && s.User.IsAdmin()
}
