package render

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesAllViews(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, name := range views {
		rec := httptest.NewRecorder()
		r.Page(rec, http.StatusOK, name, PageData{})
		assert.Equal(t, http.StatusOK, rec.Code, "view %s", name)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", "view %s", name)
	}
}

func TestPageBanner(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	t.Run("message is shown with its class", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.Page(rec, http.StatusBadRequest, "login", PageData{Class: "error", Msg: "Password is required"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Password is required")
		assert.Contains(t, rec.Body.String(), "error")
	})

	t.Run("no banner without a message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.Page(rec, http.StatusOK, "login", PageData{})

		assert.NotContains(t, rec.Body.String(), `class="notice"`)
	})

	t.Run("message content is escaped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.Page(rec, http.StatusOK, "login", PageData{Class: "error", Msg: "<script>alert(1)</script>"})

		assert.NotContains(t, rec.Body.String(), "<script>")
	})
}

func TestPageUnknownView(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.Page(rec, http.StatusOK, "no-such-view", PageData{})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
