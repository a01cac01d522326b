package gatemetrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_HandlerServesRegisteredSeries(t *testing.T) {
	m := New()
	m.ObserveAuthResult("success")
	m.ObserveAuthResult("signature_verification_failed")
	m.ObserveValidateDuration("header", 2*time.Millisecond)
	m.ObservePresignResult("success")
	m.SetRegistrySize(3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sigv4gate_auth_requests_total")
	assert.Contains(t, body, "sigv4gate_auth_validate_duration_seconds")
	assert.Contains(t, body, "sigv4gate_presign_issued_total")
	assert.Contains(t, body, "sigv4gate_registry_credentials 3")
}
