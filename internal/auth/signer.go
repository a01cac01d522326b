package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// signingKey derives the per-day, per-region, per-service signing key via
// the four-step HMAC chain. date is YYYYMMDD. The chain must match AWS
// byte-for-byte; there is no shortcut.
func signingKey(secretKey, date, region string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), []byte(date))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(ServiceS3))
	kSigning := hmacSHA256(kService, []byte(AWS4Request))
	return kSigning
}

// signature hex-encodes HMAC-SHA256(signingKey, stringToSign).
func signature(key []byte, stringToSign string) string {
	return hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))
}

// credentialScopeString builds "date/region/s3/aws4_request" for a given day.
func credentialScopeString(date time.Time, region string) string {
	return date.Format(YYYYMMDD) + "/" + region + "/" + ServiceS3 + "/" + AWS4Request
}

// Sign computes the AWS4-HMAC-SHA256 signature for a request's canonical
// form. Callers that need the full pipeline from raw request fields should
// use Canonicalize below; Sign is the last step, exposed separately so the
// Pre-signed URL Issuer (which builds its own canonical request shape) can
// reuse exactly this arithmetic.
func Sign(secretKey string, requestTime time.Time, region, strToSign string) string {
	key := signingKey(secretKey, requestTime.Format(YYYYMMDD), region)
	return signature(key, strToSign)
}

// constantTimeEqual compares two hex signature strings without
// short-circuiting on the first mismatched byte, per the specification's
// timing-attack resistance requirement.
func constantTimeEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
