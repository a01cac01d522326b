package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_MissingAuthorizationHeader(t *testing.T) {
	registry, _ := testRegistry(t)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	mw := Middleware(registry, Config{}, zerolog.Nop())
	handler := mw(next)

	req := httptest.NewRequest(http.MethodGet, "/bucket/object", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MissingSecurityHeader")
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
}

func TestMiddleware_SkipPath(t *testing.T) {
	registry, _ := testRegistry(t)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	mw := Middleware(registry, Config{SkipPaths: []string{"/healthz"}}, zerolog.Nop())
	handler := mw(next)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_SuccessAttachesAuthContext(t *testing.T) {
	registry, cred := testRegistry(t)
	requestTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var gotCtx *AuthContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtx, _ = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	mw := Middleware(registry, Config{Now: func() time.Time { return requestTime }}, zerolog.Nop())
	handler := mw(next)

	req := buildSignedRequest(t, cred, http.MethodGet, "/bucket/object", requestTime,
		[]string{"host", "x-amz-content-sha256", "x-amz-date"}, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotCtx)
	assert.Equal(t, testAccessKeyID, gotCtx.AccessKeyID)
	assert.Equal(t, AuthTypeSignedV4, gotCtx.AuthType)
}
