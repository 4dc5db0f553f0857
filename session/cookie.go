package session

import (
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "reviewboard_session"

// Manager issues and clears the session cookie and begins/ends sessions
// against the backing store.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
}

// NewManager creates a Manager over store. ttl bounds both the session row
// and the cookie; secure controls the cookie's Secure attribute.
func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure}
}

// Store exposes the backing store, e.g. for the gate middleware.
func (m *Manager) Store() Store {
	return m.store
}

// Begin creates a session for userID and sets the session cookie.
func (m *Manager) Begin(w http.ResponseWriter, r *http.Request, userID int) error {
	sess := New(userID, m.ttl)
	if err := m.store.Create(r.Context(), sess); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// End destroys the caller's session, if any, and clears the cookie. It is
// unconditional: a missing or already-dead session is not an error.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	var storeErr error
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		storeErr = m.store.Delete(r.Context(), cookie.Value)
	}
	// The cookie is cleared even when the store delete failed.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return storeErr
}
