package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/techtransfer/internal/auth"
	"github.com/gosuda/techtransfer/internal/domain"
	"github.com/gosuda/techtransfer/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// contextHandler captures context values set by middleware so tests can
// assert that the correct user, role, and name were injected.
type contextHandler struct {
	userID uuid.UUID
	role   string
	name   string
	actor  *domain.Actor
	called bool
}

func (h *contextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.userID, _ = middleware.UserIDFromContext(r.Context())
	h.role, _ = middleware.RoleFromContext(r.Context())
	h.name, _ = middleware.UserNameFromContext(r.Context())
	h.actor = middleware.ActorFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

// setUser injects a user ID into the request context.
func setUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyUserID, userID)
	return r.WithContext(ctx)
}

func testUser(admin bool) *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Dana Cruz", Email: "dana@example.edu", IsAdmin: admin, IsActive: true}
}

// ===========================================================================
// 1. Context helpers
// ===========================================================================

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	t.Run("absent", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		_, ok := middleware.UserIDFromContext(ctx)
		assert.False(t, ok)
		_, ok = middleware.RoleFromContext(ctx)
		assert.False(t, ok)
		assert.Nil(t, middleware.ActorFromContext(ctx), "unauthenticated requests act as System")
		assert.False(t, middleware.IsAdmin(ctx))
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()
		ctx := context.WithValue(context.Background(), middleware.ContextKeyUserID, "not-a-uuid")

		_, ok := middleware.UserIDFromContext(ctx)
		assert.False(t, ok)
	})

	t.Run("actor from user", func(t *testing.T) {
		t.Parallel()
		id := uuid.New()
		ctx := context.WithValue(context.Background(), middleware.ContextKeyUserID, id)
		ctx = context.WithValue(ctx, middleware.ContextKeyUserName, "Dana Cruz")
		ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, domain.RoleAdmin)

		actor := middleware.ActorFromContext(ctx)
		require.NotNil(t, actor)
		assert.Equal(t, domain.KindUser, actor.Kind)
		assert.Equal(t, id, actor.ID)
		assert.Equal(t, "Dana Cruz", actor.Name)
		assert.True(t, middleware.IsAdmin(ctx))
	})
}

// ===========================================================================
// 2. RateLimit middleware
// ===========================================================================

func TestRateLimit_NoUserInContext_PassesThrough(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimit(t.Context(), 1, 1)(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_BurstExceeded_Returns429(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	// Very low rate (effectively zero refill during the test) with burst of 2.
	handler := middleware.RateLimit(t.Context(), 0.001, 2)(okHandler)

	for i := range 2 {
		req := setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equalf(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	req := setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimit_IndependentPerUser(t *testing.T) {
	t.Parallel()

	userA := uuid.New()
	userB := uuid.New()
	handler := middleware.RateLimit(t.Context(), 0.001, 1)(okHandler)

	recA := httptest.NewRecorder()
	handler.ServeHTTP(recA, setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userA))
	require.Equal(t, http.StatusOK, recA.Code)

	recA2 := httptest.NewRecorder()
	handler.ServeHTTP(recA2, setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userA))
	assert.Equal(t, http.StatusTooManyRequests, recA2.Code)

	recB := httptest.NewRecorder()
	handler.ServeHTTP(recB, setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userB))
	assert.Equal(t, http.StatusOK, recB.Code)
}

func TestRateLimitByIP_IgnoresPort(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimitByIP(t.Context(), 0.001, 1)(okHandler)

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", http.NoBody)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5001"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000"))
}

// ===========================================================================
// 3. Auth middleware
// ===========================================================================

const testJWTSecret = "test-jwt-secret-for-middleware-tests"

func TestAuth_ValidToken_PopulatesContext(t *testing.T) {
	t.Parallel()

	u := testUser(true)
	token, err := auth.IssueAccessToken(testJWTSecret, u, 15*time.Minute)
	require.NoError(t, err)

	capture := &contextHandler{}
	handler := middleware.Auth(testJWTSecret)(capture)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.True(t, capture.called, "inner handler must be called")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID, capture.userID)
	assert.Equal(t, domain.RoleAdmin, capture.role)
	assert.Equal(t, "Dana Cruz", capture.name)
	require.NotNil(t, capture.actor)
	assert.Equal(t, u.ID, capture.actor.ID)
}

func TestAuth_QueryToken(t *testing.T) {
	t.Parallel()

	u := testUser(false)
	token, err := auth.IssueAccessToken(testJWTSecret, u, 15*time.Minute)
	require.NoError(t, err)

	capture := &contextHandler{}
	handler := middleware.Auth(testJWTSecret)(capture)

	req := httptest.NewRequest(http.MethodGet, "/ws/audit?access_token="+token, http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, capture.called)
	assert.Equal(t, domain.RoleUser, capture.role)
}

func TestAuth_RejectedTokens(t *testing.T) {
	t.Parallel()

	u := testUser(false)
	expired, err := auth.IssueAccessToken(testJWTSecret, u, -time.Minute)
	require.NoError(t, err)
	wrongSecret, err := auth.IssueAccessToken("another-secret", u, time.Minute)
	require.NoError(t, err)
	refresh, err := auth.IssueRefreshToken(testJWTSecret, u, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no credentials", header: ""},
		{name: "malformed", header: "Bearer not-a-jwt"},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong secret", header: "Bearer " + wrongSecret},
		{name: "refresh token", header: "Bearer " + refresh},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			capture := &contextHandler{}
			handler := middleware.Auth(testJWTSecret)(capture)

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.False(t, capture.called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuth_BearerCaseInsensitive(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testJWTSecret, testUser(false), time.Minute)
	require.NoError(t, err)

	for _, scheme := range []string{"Bearer ", "bearer ", "BEARER "} {
		capture := &contextHandler{}
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set("Authorization", scheme+token)
		rec := httptest.NewRecorder()

		middleware.Auth(testJWTSecret)(capture).ServeHTTP(rec, req)

		assert.Truef(t, capture.called, "scheme %q", scheme)
	}
}
