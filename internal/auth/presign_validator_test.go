package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPresignedRequestHelper(t *testing.T, cred Credential, method, path string, requestTime time.Time, expires int64) *http.Request {
	t.Helper()

	scope := credentialScopeString(requestTime, cred.Region)
	credentialParam := cred.AccessKeyID + "/" + scope

	query := url.Values{}
	query.Set(XAmzAlgorithmHeader, SignV4Algorithm)
	query.Set(XAmzCredentialHeader, credentialParam)
	query.Set(XAmzDateHeader, requestTime.Format(ISO8601BasicFormat))
	query.Set(XAmzExpiresHeader, fmt.Sprintf("%d", expires))
	query.Set(XAmzSignedHeadersHeader, "host")

	r := httptest.NewRequest(method, path+"?"+query.Encode(), nil)
	r.Header.Set("Host", "example.com")

	canonicalRequest := buildCanonicalRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header, []string{"host"}, UnsignedPayload)
	sts := stringToSign(requestTime.Format(ISO8601BasicFormat), scope, canonicalRequest)
	key := signingKey(cred.SecretAccessKey, requestTime.Format(YYYYMMDD), cred.Region)
	sig := signature(key, sts)

	query.Set(XAmzSignatureHeader, sig)
	r.URL.RawQuery = query.Encode()
	return r
}

// S4 / property 2: a presigned URL is accepted at now == request time.
func TestValidatePresignedRequest_RoundTrip(t *testing.T) {
	registry, cred := testRegistry(t)
	requestTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := buildPresignedRequestHelper(t, cred, http.MethodGet, "/bucket/object", requestTime, 3600)

	v := NewValidator(registry)
	accessKeyID, err := v.ValidatePresignedRequest(r, requestTime)
	require.NoError(t, err)
	assert.Equal(t, testAccessKeyID, accessKeyID)
}

// S5: evaluated 1s past expiry fails PresignedUrlExpired.
func TestValidatePresignedRequest_Expired(t *testing.T) {
	registry, cred := testRegistry(t)
	requestTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := buildPresignedRequestHelper(t, cred, http.MethodGet, "/bucket/object", requestTime, 3600)

	evalAt := requestTime.Add(3601 * time.Second)
	v := NewValidator(registry)
	_, err := v.ValidatePresignedRequest(r, evalAt)
	require.Error(t, err)
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindPresignedURLExpired, ae.Kind)
}

// property 8: expiry boundary, now < date+expires passes, now > date+expires fails.
func TestValidatePresignedRequest_ExpiryBoundary(t *testing.T) {
	registry, cred := testRegistry(t)
	requestTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := buildPresignedRequestHelper(t, cred, http.MethodGet, "/bucket/object", requestTime, 3600)
	v := NewValidator(registry)

	_, err := v.ValidatePresignedRequest(r, requestTime.Add(3599*time.Second))
	require.NoError(t, err)

	_, err = v.ValidatePresignedRequest(r, requestTime.Add(3601*time.Second))
	require.Error(t, err)
}

func TestValidatePresignedRequest_MissingParameter(t *testing.T) {
	registry, _ := testRegistry(t)
	r := httptest.NewRequest(http.MethodGet, "/bucket/object?X-Amz-Algorithm=AWS4-HMAC-SHA256", nil)

	v := NewValidator(registry)
	_, err := v.ValidatePresignedRequest(r, time.Now())
	require.Error(t, err)
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindMissingPresignedParameter, ae.Kind)
}

func TestValidatePresignedRequest_InvalidExpiration(t *testing.T) {
	registry, cred := testRegistry(t)
	requestTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := buildPresignedRequestHelper(t, cred, http.MethodGet, "/bucket/object", requestTime, 3600)

	q := r.URL.Query()
	q.Set(XAmzExpiresHeader, "999999999")
	r.URL.RawQuery = q.Encode()

	v := NewValidator(registry)
	_, err := v.ValidatePresignedRequest(r, requestTime)
	require.Error(t, err)
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindInvalidExpiration, ae.Kind)
}

func TestIsPresignedRequest(t *testing.T) {
	presigned := httptest.NewRequest(http.MethodGet, "/x?X-Amz-Algorithm=a&X-Amz-Signature=b", nil)
	assert.True(t, IsPresignedRequest(presigned))

	headerSigned := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.False(t, IsPresignedRequest(headerSigned))
}
