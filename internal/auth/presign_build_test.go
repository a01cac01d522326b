package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildPresignedURL_ValidatesAgainstIssuer grounds the contract the
// presign package depends on: a URL built by BuildPresignedURL must be
// accepted by ValidatePresignedRequest.
func TestBuildPresignedURL_ValidatesAgainstIssuer(t *testing.T) {
	registry, cred := testRegistry(t)
	requestTime := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	query, signedHeaders, err := BuildPresignedURL(PresignedURLParams{
		Credential:    cred,
		Method:        http.MethodGet,
		Host:          "example.com",
		Path:          "/bucket/object",
		RequestTime:   requestTime,
		ExpirySeconds: 900,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"host"}, signedHeaders)

	r := httptest.NewRequest(http.MethodGet, "/bucket/object?"+query, nil)
	r.Header.Set("Host", "example.com")

	v := NewValidator(registry)
	accessKeyID, err := v.ValidatePresignedRequest(r, requestTime.Add(1*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, testAccessKeyID, accessKeyID)
}
