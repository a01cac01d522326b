package auth

import (
	"net/http"
	"time"
)

// SigningKeyCache caches the derived per-day signing key for a
// (secret_key, date, region) tuple. A miss is not an error — callers fall
// through to deriving the key fresh, so a Validator's correctness never
// depends on the cache being populated or even present.
type SigningKeyCache interface {
	Get(secretKey, date, region string) ([]byte, bool)
	Set(secretKey, date, region string, key []byte)
}

// Validator orchestrates parsing, timestamp checks, canonicalization,
// re-signing, and constant-time comparison for both signing modes. It holds
// only a reference to the immutable Registry; it carries no other state and
// is safe for concurrent use by many request goroutines.
type Validator struct {
	registry *Registry
	keyCache SigningKeyCache
}

// NewValidator builds a Validator against a frozen Registry.
func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// WithSigningKeyCache attaches an optional signing-key cache and returns the
// same Validator for chaining.
func (v *Validator) WithSigningKeyCache(cache SigningKeyCache) *Validator {
	v.keyCache = cache
	return v
}

// derivedSigningKey consults the cache before falling back to signingKey.
func (v *Validator) derivedSigningKey(secretKey string, requestTime time.Time, region string) []byte {
	date := requestTime.Format(YYYYMMDD)
	if v.keyCache != nil {
		if key, ok := v.keyCache.Get(secretKey, date, region); ok {
			return key
		}
	}
	key := signingKey(secretKey, date, region)
	if v.keyCache != nil {
		v.keyCache.Set(secretKey, date, region, key)
	}
	return key
}

// ValidateRequest implements the header-signed algorithm (spec §4.4) and
// returns the authenticated access-key-id, or a *Error.
//
// now is injected rather than read from time.Now() internally so clock-skew
// boundary tests (property 7) can pin it exactly.
func (v *Validator) ValidateRequest(r *http.Request, body []byte, now time.Time) (string, error) {
	authHeader := r.Header.Get(AuthorizationHeader)
	if authHeader == "" {
		return "", errMissingAuthorizationHeader()
	}

	parsed, err := ParseAuthorizationHeader(authHeader)
	if err != nil {
		return "", err
	}

	cred, err := v.registry.Lookup(parsed.AccessKeyID)
	if err != nil {
		return "", err
	}

	xAmzDate := r.Header.Get(XAmzDateHeader)
	if xAmzDate == "" {
		return "", errMissingRequiredHeader(XAmzDateHeader)
	}
	requestTime, err := time.Parse(ISO8601BasicFormat, xAmzDate)
	if err != nil {
		return "", errInvalidDateFormat()
	}

	if err := validateRequestTime(requestTime, now); err != nil {
		return "", err
	}

	payloadHash := payloadHashForHeaderSigned(r.Header, body)
	canonicalRequest := buildCanonicalRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header, parsed.SignedHeaders, payloadHash)
	scope := credentialScopeString(requestTime, cred.Region)
	sts := stringToSign(xAmzDate, scope, canonicalRequest)

	key := v.derivedSigningKey(cred.SecretAccessKey, requestTime, cred.Region)
	expected := signature(key, sts)

	if !constantTimeEqual(expected, parsed.Signature) {
		return "", errSignatureVerificationFailed()
	}

	return cred.AccessKeyID, nil
}

// validateRequestTime enforces the one-directional clock-skew bound: a
// request is too old only if it is more than MaxSkewTime in the past
// relative to now. A request whose timestamp is in the future is not
// rejected here — the signature itself is the guard against a forged
// timestamp, matching the reference implementation's check of
// now - request_time rather than the symmetric absolute difference.
func validateRequestTime(requestTime, now time.Time) error {
	if now.Sub(requestTime) > MaxSkewTime {
		return errRequestTooOld()
	}
	return nil
}
