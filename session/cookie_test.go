package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	created []*Session
	deleted []string
	findFn  func(ctx context.Context, id string) (*Session, error)
	delErr  error
}

func (f *fakeStore) Create(_ context.Context, s *Session) error {
	f.created = append(f.created, s)
	return nil
}

func (f *fakeStore) Find(ctx context.Context, id string) (*Session, error) {
	if f.findFn != nil {
		return f.findFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.delErr
}

func (f *fakeStore) DeleteByUser(_ context.Context, _ int) error {
	return nil
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", CookieName)
	return nil
}

func TestNew(t *testing.T) {
	before := time.Now()
	sess := New(42, time.Hour)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 42, sess.UserID)
	assert.WithinDuration(t, before.Add(time.Hour), sess.ExpiresAt, 2*time.Second)

	// Identifiers must be unique across sessions.
	other := New(42, time.Hour)
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestManagerBegin(t *testing.T) {
	store := &fakeStore{}
	mgr := NewManager(store, time.Hour, false)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, mgr.Begin(rec, r, 42))

	require.Len(t, store.created, 1)
	assert.Equal(t, 42, store.created[0].UserID)

	cookie := sessionCookie(t, rec)
	assert.Equal(t, store.created[0].ID, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
}

func TestManagerBeginSecure(t *testing.T) {
	store := &fakeStore{}
	mgr := NewManager(store, time.Hour, true)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, mgr.Begin(rec, r, 1))

	assert.True(t, sessionCookie(t, rec).Secure)
}

func TestManagerEnd(t *testing.T) {
	t.Run("deletes the session and clears the cookie", func(t *testing.T) {
		store := &fakeStore{}
		mgr := NewManager(store, time.Hour, false)

		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/logout", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "sess-1"})

		require.NoError(t, mgr.End(rec, r))
		assert.Equal(t, []string{"sess-1"}, store.deleted)

		cookie := sessionCookie(t, rec)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	})

	t.Run("no cookie is not an error", func(t *testing.T) {
		store := &fakeStore{}
		mgr := NewManager(store, time.Hour, false)

		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/logout", nil)

		require.NoError(t, mgr.End(rec, r))
		assert.Empty(t, store.deleted)
	})

	t.Run("cookie is cleared even when the store delete fails", func(t *testing.T) {
		store := &fakeStore{delErr: errors.New("connection refused")}
		mgr := NewManager(store, time.Hour, false)

		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/logout", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "sess-1"})

		require.Error(t, mgr.End(rec, r))

		cookie := sessionCookie(t, rec)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	})
}
