// Package auth implements AWS Signature Version 4 request signing and
// verification for the gateway's S3-compatible surface.
package auth

import "time"

// =============================================================================
// Constants
// =============================================================================

const (
	// SignV4Algorithm is the algorithm identifier for AWS Signature Version 4.
	SignV4Algorithm = "AWS4-HMAC-SHA256"

	// ISO8601BasicFormat is the date format used in AWS v4 signatures.
	ISO8601BasicFormat = "20060102T150405Z"

	// YYYYMMDD is the short date format used in credential scope.
	YYYYMMDD = "20060102"

	// ServiceS3 is the service name bound into every credential scope.
	ServiceS3 = "s3"

	// AWS4Request is the termination string for credential scope.
	AWS4Request = "aws4_request"

	// MaxSkewTime is the maximum allowed age of a header-signed request
	// before it is rejected as too old. Checked one-directionally:
	// only now-request_time is compared, not the symmetric absolute value.
	MaxSkewTime = 15 * time.Minute

	// PresignedURLMaxExpiry is the maximum expiry time for presigned URLs (7 days).
	PresignedURLMaxExpiry = 604800 * time.Second

	// PresignedURLMinExpiry is the minimum expiry time for presigned URLs (1 second).
	PresignedURLMinExpiry = 1 * time.Second
)

// =============================================================================
// Header / Query Parameter Names
// =============================================================================

const (
	AuthorizationHeader     = "Authorization"
	XAmzDateHeader          = "X-Amz-Date"
	XAmzContentSHA256Header = "X-Amz-Content-Sha256"
	XAmzSignedHeadersHeader = "X-Amz-SignedHeaders"
	XAmzAlgorithmHeader     = "X-Amz-Algorithm"
	XAmzCredentialHeader    = "X-Amz-Credential"
	XAmzExpiresHeader       = "X-Amz-Expires"
	XAmzSignatureHeader     = "X-Amz-Signature"
)

// =============================================================================
// Special Payload Hash Values
// =============================================================================

const (
	// UnsignedPayload marks a request whose body is not covered by the signature.
	// Pre-signed URLs always use this literal.
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	// EmptyStringSHA256 is the SHA-256 hash of an empty string, lowercase hex.
	EmptyStringSHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)
