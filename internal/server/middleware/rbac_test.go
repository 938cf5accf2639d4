package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/techtransfer/internal/domain"
	"github.com/gosuda/techtransfer/internal/server/middleware"
)

// setRole injects a role into the request context using the same context key
// that the Auth middleware uses.
func setRole(r *http.Request, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyUserRole, role)
	return r.WithContext(ctx)
}

// okHandler is a simple handler that writes 200 OK.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { //nolint:gochecknoglobals // test fixture
	w.WriteHeader(http.StatusOK)
})

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		allowed    []string
		role       string
		wantStatus int
		wantBody   string
	}{
		{name: "admin allowed for admin-only", allowed: []string{domain.RoleAdmin}, role: domain.RoleAdmin, wantStatus: http.StatusOK},
		{name: "user blocked for admin-only", allowed: []string{domain.RoleAdmin}, role: domain.RoleUser, wantStatus: http.StatusForbidden, wantBody: "insufficient permissions"},
		{name: "user allowed when listed", allowed: []string{domain.RoleAdmin, domain.RoleUser}, role: domain.RoleUser, wantStatus: http.StatusOK},
		{name: "unknown role blocked", allowed: []string{domain.RoleAdmin, domain.RoleUser}, role: "viewer", wantStatus: http.StatusForbidden},
		{name: "empty role is unauthenticated", allowed: []string{domain.RoleAdmin}, role: "", wantStatus: http.StatusUnauthorized, wantBody: "authentication required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := middleware.RequireRole(tt.allowed...)(okHandler)
			req := setRole(httptest.NewRequest(http.MethodGet, "/", http.NoBody), tt.role)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	handler := middleware.RequireAdmin()(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, setRole(httptest.NewRequest(http.MethodGet, "/", http.NoBody), domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, setRole(httptest.NewRequest(http.MethodGet, "/", http.NoBody), domain.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_NoUserInContext_Returns401(t *testing.T) {
	t.Parallel()

	handler := middleware.RequireRole(domain.RoleAdmin)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "authentication required")
}
