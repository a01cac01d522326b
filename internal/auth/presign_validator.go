package auth

import (
	"net/http"
	"time"
)

// ValidatePresignedRequest implements the query-string (pre-signed URL)
// validation algorithm (spec §4.5) and returns the authenticated
// access-key-id, or a *Error.
func (v *Validator) ValidatePresignedRequest(r *http.Request, now time.Time) (string, error) {
	parsed, err := ParsePresignedParams(r.URL.Query())
	if err != nil {
		return "", err
	}

	if parsed.Algorithm != SignV4Algorithm {
		return "", errInvalidAuthorizationHeader()
	}

	cred, err := v.registry.Lookup(parsed.AccessKeyID)
	if err != nil {
		return "", err
	}

	requestTime, err := time.Parse(ISO8601BasicFormat, parsed.Date)
	if err != nil {
		return "", errInvalidDateFormat()
	}

	expiration := requestTime.Add(time.Duration(parsed.Expires) * time.Second)
	if now.After(expiration) {
		return "", errPresignedURLExpired()
	}

	canonicalRequest := buildCanonicalRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header, parsed.SignedHeaders, UnsignedPayload)
	scope := credentialScopeString(requestTime, cred.Region)
	sts := stringToSign(parsed.Date, scope, canonicalRequest)

	key := v.derivedSigningKey(cred.SecretAccessKey, requestTime, cred.Region)
	expected := signature(key, sts)

	if !constantTimeEqual(expected, parsed.Signature) {
		return "", errSignatureVerificationFailed()
	}

	return cred.AccessKeyID, nil
}
