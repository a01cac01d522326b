package auth

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of ways a signature verification can fail.
// Every member maps to exactly one HTTP status and S3 error code; see
// NewAuthError.
type ErrorKind int

const (
	KindMissingAuthorizationHeader ErrorKind = iota
	KindInvalidAuthorizationHeader
	KindMissingRequiredHeader
	KindInvalidDateFormat
	KindSignatureVerificationFailed
	KindInvalidAccessKey
	KindRequestTooOld
	KindMalformedRequest
	KindMissingPresignedParameter
	KindInvalidExpiration
	KindPresignedURLExpired
	KindInvalidAccessKeyIDFormat
	KindInvalidSecretAccessKeyFormat
)

// String returns a short, stable, metrics-label-safe name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingAuthorizationHeader:
		return "missing_authorization_header"
	case KindInvalidAuthorizationHeader:
		return "invalid_authorization_header"
	case KindMissingRequiredHeader:
		return "missing_required_header"
	case KindInvalidDateFormat:
		return "invalid_date_format"
	case KindSignatureVerificationFailed:
		return "signature_verification_failed"
	case KindInvalidAccessKey:
		return "invalid_access_key"
	case KindRequestTooOld:
		return "request_too_old"
	case KindMalformedRequest:
		return "malformed_request"
	case KindMissingPresignedParameter:
		return "missing_presigned_parameter"
	case KindInvalidExpiration:
		return "invalid_expiration"
	case KindPresignedURLExpired:
		return "presigned_url_expired"
	case KindInvalidAccessKeyIDFormat:
		return "invalid_access_key_id_format"
	case KindInvalidSecretAccessKeyFormat:
		return "invalid_secret_access_key_format"
	default:
		return "unknown"
	}
}

// Error is the error type every validator and registry operation returns.
// Detail carries the associated data some kinds need (a header name, a
// format violation) without widening the Kind enum itself.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingAuthorizationHeader:
		return "missing Authorization header"
	case KindInvalidAuthorizationHeader:
		return "the authorization header is malformed"
	case KindMissingRequiredHeader:
		return fmt.Sprintf("missing required header: %s", e.Detail)
	case KindInvalidDateFormat:
		return "the date header is malformed"
	case KindSignatureVerificationFailed:
		return "the request signature we calculated does not match the signature you provided"
	case KindInvalidAccessKey:
		return "the access key ID you provided does not exist in our records"
	case KindRequestTooOld:
		return "the difference between the request time and the current time is too large"
	case KindMalformedRequest:
		return "the request is malformed"
	case KindMissingPresignedParameter:
		return fmt.Sprintf("pre-signed URL is missing required parameter: %s", e.Detail)
	case KindInvalidExpiration:
		return "invalid expiration time for pre-signed URL"
	case KindPresignedURLExpired:
		return "pre-signed URL has expired"
	case KindInvalidAccessKeyIDFormat:
		return fmt.Sprintf("invalid access key ID format: %s", e.Detail)
	case KindInvalidSecretAccessKeyFormat:
		return fmt.Sprintf("invalid secret access key format: %s", e.Detail)
	default:
		return "authentication failed"
	}
}

// Is reports whether target is an *Error of the same Kind, so callers can
// use errors.Is(err, &auth.Error{Kind: auth.KindInvalidAccessKey}) without
// caring about Detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func errMissingAuthorizationHeader() *Error { return &Error{Kind: KindMissingAuthorizationHeader} }
func errInvalidAuthorizationHeader() *Error { return &Error{Kind: KindInvalidAuthorizationHeader} }
func errMissingRequiredHeader(name string) *Error {
	return &Error{Kind: KindMissingRequiredHeader, Detail: name}
}
func errInvalidDateFormat() *Error            { return &Error{Kind: KindInvalidDateFormat} }
func errSignatureVerificationFailed() *Error  { return &Error{Kind: KindSignatureVerificationFailed} }
func errInvalidAccessKey() *Error             { return &Error{Kind: KindInvalidAccessKey} }
func errRequestTooOld() *Error                { return &Error{Kind: KindRequestTooOld} }
func errMalformedRequest() *Error             { return &Error{Kind: KindMalformedRequest} }
func errMissingPresignedParameter(name string) *Error {
	return &Error{Kind: KindMissingPresignedParameter, Detail: name}
}
func errInvalidExpiration() *Error     { return &Error{Kind: KindInvalidExpiration} }
func errPresignedURLExpired() *Error   { return &Error{Kind: KindPresignedURLExpired} }
func errInvalidAccessKeyIDFormat(detail string) *Error {
	return &Error{Kind: KindInvalidAccessKeyIDFormat, Detail: detail}
}
func errInvalidSecretAccessKeyFormat(detail string) *Error {
	return &Error{Kind: KindInvalidSecretAccessKeyFormat, Detail: detail}
}

// S3ErrorCode is the S3-compatible error code string rendered in the XML body.
type S3ErrorCode string

const (
	S3MissingSecurityHeader  S3ErrorCode = "MissingSecurityHeader"
	S3InvalidRequest         S3ErrorCode = "InvalidRequest"
	S3SignatureDoesNotMatch  S3ErrorCode = "SignatureDoesNotMatch"
	S3InvalidAccessKeyId     S3ErrorCode = "InvalidAccessKeyId"
	S3RequestTimeTooSkewed   S3ErrorCode = "RequestTimeTooSkewed"
	S3MalformedRequest       S3ErrorCode = "MalformedRequest"
	S3AccessDenied           S3ErrorCode = "AccessDenied"
	S3InvalidSecretAccessKey S3ErrorCode = "InvalidSecretAccessKey"
)

// AuthError is the response-shaped view of an Error: everything the
// middleware needs to render an XML error body and pick an HTTP status.
type AuthError struct {
	Code       S3ErrorCode
	Message    string
	HTTPStatus int
	Resource   string
	RequestID  string
}

func (e *AuthError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewAuthError maps a validator error to its S3 error code and HTTP status,
// per the closed table in the specification. Any error not produced by this
// package (should not happen on the auth path) degrades to a 403 AccessDenied.
func NewAuthError(err error) *AuthError {
	var ae *Error
	if !errors.As(err, &ae) {
		return &AuthError{Code: S3AccessDenied, Message: err.Error(), HTTPStatus: 403}
	}

	switch ae.Kind {
	case KindMissingAuthorizationHeader:
		return &AuthError{Code: S3MissingSecurityHeader, Message: ae.Error(), HTTPStatus: 401}
	case KindInvalidAuthorizationHeader:
		return &AuthError{Code: S3InvalidRequest, Message: ae.Error(), HTTPStatus: 401}
	case KindMissingRequiredHeader:
		return &AuthError{Code: S3MissingSecurityHeader, Message: ae.Error(), HTTPStatus: 400}
	case KindInvalidDateFormat:
		return &AuthError{Code: S3InvalidRequest, Message: ae.Error(), HTTPStatus: 401}
	case KindSignatureVerificationFailed:
		return &AuthError{Code: S3SignatureDoesNotMatch, Message: ae.Error(), HTTPStatus: 403}
	case KindInvalidAccessKey:
		return &AuthError{Code: S3InvalidAccessKeyId, Message: ae.Error(), HTTPStatus: 403}
	case KindRequestTooOld:
		return &AuthError{Code: S3RequestTimeTooSkewed, Message: ae.Error(), HTTPStatus: 403}
	case KindMalformedRequest:
		return &AuthError{Code: S3MalformedRequest, Message: ae.Error(), HTTPStatus: 400}
	case KindMissingPresignedParameter:
		return &AuthError{Code: S3InvalidRequest, Message: ae.Error(), HTTPStatus: 400}
	case KindInvalidExpiration:
		return &AuthError{Code: S3InvalidRequest, Message: ae.Error(), HTTPStatus: 400}
	case KindPresignedURLExpired:
		return &AuthError{Code: S3AccessDenied, Message: ae.Error(), HTTPStatus: 403}
	case KindInvalidAccessKeyIDFormat:
		return &AuthError{Code: S3InvalidAccessKeyId, Message: ae.Error(), HTTPStatus: 400}
	case KindInvalidSecretAccessKeyFormat:
		return &AuthError{Code: S3InvalidSecretAccessKey, Message: ae.Error(), HTTPStatus: 400}
	default:
		return &AuthError{Code: S3AccessDenied, Message: ae.Error(), HTTPStatus: 403}
	}
}

