package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/reviewboard-go/session"
)

type mockStore struct {
	createFn       func(ctx context.Context, s *session.Session) error
	findFn         func(ctx context.Context, id string) (*session.Session, error)
	deleteFn       func(ctx context.Context, id string) error
	deleteByUserFn func(ctx context.Context, userID int) error
}

func (m *mockStore) Create(ctx context.Context, s *session.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockStore) Find(ctx context.Context, id string) (*session.Session, error) {
	if m.findFn != nil {
		return m.findFn(ctx, id)
	}
	return nil, nil
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockStore) DeleteByUser(ctx context.Context, userID int) error {
	if m.deleteByUserFn != nil {
		return m.deleteByUserFn(ctx, userID)
	}
	return nil
}

func liveSession(userID int) *session.Session {
	return &session.Session{
		ID:        "sess-1",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
}

// echoUserID is a terminal handler recording the user id it saw.
func echoUserID(sawUserID *int, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if id, ok := UserIDFromContext(r.Context()); ok {
			*sawUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithSessionCookie(value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	if value != "" {
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
	}
	return r
}

func TestRequirePage(t *testing.T) {
	t.Run("no cookie redirects home", func(t *testing.T) {
		store := &mockStore{}
		var called bool
		var sawUserID int
		handler := RequirePage(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie(""))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.False(t, called)
	})

	t.Run("dead session redirects home", func(t *testing.T) {
		store := &mockStore{
			findFn: func(ctx context.Context, id string) (*session.Session, error) {
				return nil, nil
			},
		}
		var called bool
		var sawUserID int
		handler := RequirePage(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie("expired"))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.False(t, called)
	})

	t.Run("live session passes with user id in context", func(t *testing.T) {
		store := &mockStore{
			findFn: func(ctx context.Context, id string) (*session.Session, error) {
				assert.Equal(t, "sess-1", id)
				return liveSession(42), nil
			},
		}
		var called bool
		var sawUserID int
		handler := RequirePage(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie("sess-1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
		assert.Equal(t, 42, sawUserID)
	})

	t.Run("store failure is a 500, not a redirect", func(t *testing.T) {
		store := &mockStore{
			findFn: func(ctx context.Context, id string) (*session.Session, error) {
				return nil, errors.New("connection refused")
			},
		}
		var called bool
		var sawUserID int
		handler := RequirePage(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie("sess-1"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, called)
	})
}

func TestRequireAPI(t *testing.T) {
	t.Run("no cookie yields 401 JSON", func(t *testing.T) {
		store := &mockStore{}
		var called bool
		var sawUserID int
		handler := RequireAPI(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie(""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unauthorized", body["error"])
		assert.False(t, called)
	})

	t.Run("dead session yields 401 JSON", func(t *testing.T) {
		store := &mockStore{}
		var called bool
		var sawUserID int
		handler := RequireAPI(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie("expired"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("live session passes with user id in context", func(t *testing.T) {
		store := &mockStore{
			findFn: func(ctx context.Context, id string) (*session.Session, error) {
				return liveSession(7), nil
			},
		}
		var called bool
		var sawUserID int
		handler := RequireAPI(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie("sess-1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
		assert.Equal(t, 7, sawUserID)
	})
}

func TestRedirectIfAuthenticated(t *testing.T) {
	t.Run("anonymous caller reaches the page", func(t *testing.T) {
		store := &mockStore{}
		var called bool
		var sawUserID int
		handler := RedirectIfAuthenticated(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie(""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("authenticated caller is bounced to the feed", func(t *testing.T) {
		store := &mockStore{
			findFn: func(ctx context.Context, id string) (*session.Session, error) {
				return liveSession(42), nil
			},
		}
		var called bool
		var sawUserID int
		handler := RedirectIfAuthenticated(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie("sess-1"))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/feed", rec.Header().Get("Location"))
		assert.False(t, called)
	})

	t.Run("store failure keeps the page reachable", func(t *testing.T) {
		store := &mockStore{
			findFn: func(ctx context.Context, id string) (*session.Session, error) {
				return nil, errors.New("connection refused")
			},
		}
		var called bool
		var sawUserID int
		handler := RedirectIfAuthenticated(store)(echoUserID(&sawUserID, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithSessionCookie("sess-1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithUserID(context.Background(), 99)
	id, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, 99, id)
}
