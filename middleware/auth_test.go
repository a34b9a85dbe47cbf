package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminAuthMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := AdminAuthMiddleware(okHandler)

	t.Run("unconfigured admin access is unavailable", func(t *testing.T) {
		os.Unsetenv("ADMIN_USER")
		os.Unsetenv("ADMIN_PASS")

		req := httptest.NewRequest(http.MethodPut, "/api/v1/puzzle/config", nil)
		req.SetBasicAuth("anyone", "anything")
		rr := httptest.NewRecorder()

		guarded.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	os.Setenv("ADMIN_USER", "admin")
	os.Setenv("ADMIN_PASS", "secret")
	defer os.Unsetenv("ADMIN_USER")
	defer os.Unsetenv("ADMIN_PASS")

	t.Run("missing credentials rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/puzzle/config", nil)
		rr := httptest.NewRecorder()

		guarded.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")
	})

	t.Run("wrong credentials rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/puzzle/config", nil)
		req.SetBasicAuth("admin", "wrong")
		rr := httptest.NewRecorder()

		guarded.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid credentials pass through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/puzzle/config", nil)
		req.SetBasicAuth("admin", "secret")
		rr := httptest.NewRecorder()

		guarded.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestClerkAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	guarded := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	rr := httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestClerkAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	guarded := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Token abc123")
	rr := httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
