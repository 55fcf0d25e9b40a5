package tenant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	id, ok := FromContext(WithTenant(context.Background(), "clinic-1"))
	assert.True(t, ok)
	assert.Equal(t, "clinic-1", id)

	_, ok = FromContext(WithTenant(context.Background(), ""))
	assert.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	missing := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}

	t.Run("stores the header value", func(t *testing.T) {
		h := Middleware("", missing)(next)
		req := httptest.NewRequest(http.MethodGet, "/webhooks", nil)
		req.Header.Set(DefaultHeader, " clinic-7 ")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "clinic-7", seen)
	})

	t.Run("custom header", func(t *testing.T) {
		h := Middleware("X-Clinic", missing)(next)
		req := httptest.NewRequest(http.MethodGet, "/webhooks", nil)
		req.Header.Set("X-Clinic", "clinic-9")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, "clinic-9", seen)
	})

	t.Run("missing header stops the chain", func(t *testing.T) {
		seen = ""
		h := Middleware("", missing)(next)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhooks", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, seen)
	})
}
