package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/petermazzocco/prompt-image-app/models"
)

const (
	SessionName = "prompt_session"

	userIDKey = "user_id"
)

var ErrUnauthenticated = errors.New("not authenticated")

// UserLoader resolves a session's user id to a stored user.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Manager tracks the logged-in user in a signed cookie session.
type Manager struct {
	store sessions.Store
	users UserLoader
}

func NewManager(store sessions.Store, users UserLoader) *Manager {
	return &Manager{store: store, users: users}
}

// NewCookieStore returns the signed cookie store used for sessions.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	maxAge := 86400 * 30
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(maxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	return store
}

// Login records user as the session's identity.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("getting session: %w", err)
	}
	session.Values[userIDKey] = user.ID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Logout clears the session and expires its cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("getting session: %w", err)
	}
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// CurrentUser returns the logged-in user or ErrUnauthenticated.
func (m *Manager) CurrentUser(r *http.Request) (*models.User, error) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		// Tampered or stale cookies are treated as no session.
		return nil, ErrUnauthenticated
	}

	userID, ok := session.Values[userIDKey].(uint)
	if !ok || userID == 0 {
		return nil, ErrUnauthenticated
	}

	user, err := m.users.GetByID(r.Context(), userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return user, nil
}

// AddFlash queues a one-shot message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("getting session: %w", err)
	}
	session.AddFlash(msg)
	return session.Save(r, w)
}

// Flashes pops the queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		return nil
	}

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
