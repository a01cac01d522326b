// Package presign implements the stand-alone Pre-signed URL Issuer: given a
// registered credential and a request shape, it produces a query string an
// unauthenticated client can use once, until it expires, without ever
// holding the secret key itself.
package presign

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborlane/s3gate/internal/auth"
)

// Config controls defaults the issuer applies when a caller doesn't
// override them per-request.
type Config struct {
	Region        string
	Endpoint      string // e.g. "https://s3.example.com"
	DefaultExpiry time.Duration

	// Now, if set, replaces time.Now for the request timestamp. Tests pin
	// this; production leaves it nil.
	Now func() time.Time
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

// Issuer generates pre-signed URLs against a single registered credential.
// It holds no mutable state and is safe for concurrent use.
type Issuer struct {
	registry *auth.Registry
	config   Config
	logger   zerolog.Logger
}

// NewIssuer builds an Issuer backed by registry. The issuer signs on behalf
// of whatever access key ID callers pass to Issue; it does not require a
// single fixed "issuing" credential, but a deployment that wants one simply
// never passes a different access key ID to Issue.
func NewIssuer(registry *auth.Registry, config Config, logger zerolog.Logger) *Issuer {
	if config.DefaultExpiry == 0 {
		config.DefaultExpiry = 15 * time.Minute
	}
	config.Endpoint = strings.TrimSuffix(config.Endpoint, "/")
	return &Issuer{
		registry: registry,
		config:   config,
		logger:   logger.With().Str("component", "presign_issuer").Logger(),
	}
}

// Request describes the pre-signed URL to produce.
type Request struct {
	AccessKeyID string
	Method      string
	Bucket      string
	Key         string
	Expiry      time.Duration // zero uses Config.DefaultExpiry

	// Headers are additional request headers the signature must cover;
	// the caller is responsible for sending them verbatim.
	Headers map[string]string

	// QueryParams are additional query parameters folded into the signed
	// query string (e.g. response-content-disposition overrides).
	QueryParams map[string]string
}

// Result is the outcome of a successful Issue call.
type Result struct {
	URL           string
	Method        string
	ExpiresAt     time.Time
	SignedHeaders []string
}

var (
	// ErrMissingAccessKeyID is returned when Request.AccessKeyID is empty.
	ErrMissingAccessKeyID = fmt.Errorf("presign: access_key_id is required")
	// ErrMissingBucket is returned when Request.Bucket is empty.
	ErrMissingBucket = fmt.Errorf("presign: bucket is required")
	// ErrUnsupportedMethod is returned for any method other than GET, PUT, DELETE, HEAD.
	ErrUnsupportedMethod = fmt.Errorf("presign: unsupported method")
	// ErrInvalidExpiration is returned when the requested expiry falls
	// outside [auth.PresignedURLMinExpiry, auth.PresignedURLMaxExpiry].
	ErrInvalidExpiration = fmt.Errorf("presign: expiry out of range")
)

// Issue validates req, looks up the signing credential, and builds a
// pre-signed URL whose canonicalization exactly matches what
// auth.Validator.ValidatePresignedRequest accepts.
func (i *Issuer) Issue(req Request) (*Result, error) {
	if req.AccessKeyID == "" {
		return nil, ErrMissingAccessKeyID
	}
	if req.Bucket == "" {
		return nil, ErrMissingBucket
	}
	switch req.Method {
	case http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodHead:
	default:
		return nil, ErrUnsupportedMethod
	}

	cred, err := i.registry.Lookup(req.AccessKeyID)
	if err != nil {
		return nil, err
	}

	expiry := req.Expiry
	if expiry == 0 {
		expiry = i.config.DefaultExpiry
	}
	if expiry < auth.PresignedURLMinExpiry || expiry > auth.PresignedURLMaxExpiry {
		return nil, ErrInvalidExpiration
	}

	path := "/" + req.Bucket
	if req.Key != "" {
		path += "/" + req.Key
	}

	endpoint, err := url.Parse(i.config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("presign: invalid endpoint: %w", err)
	}

	extraQuery := url.Values{}
	for k, v := range req.QueryParams {
		extraQuery.Set(k, v)
	}

	requestTime := i.config.now()
	query, signedHeaders, err := auth.BuildPresignedURL(auth.PresignedURLParams{
		Credential:    cred,
		Method:        req.Method,
		Host:          endpoint.Host,
		Path:          path,
		ExtraQuery:    extraQuery,
		SignedHeaders: req.Headers,
		RequestTime:   requestTime,
		ExpirySeconds: int64(expiry.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("presign: %w", err)
	}

	finalURL := i.config.Endpoint + path + "?" + query

	i.logger.Debug().
		Str("access_key_id", req.AccessKeyID).
		Str("method", req.Method).
		Str("bucket", req.Bucket).
		Str("key", req.Key).
		Time("expires_at", requestTime.Add(expiry)).
		Msg("issued presigned URL")

	return &Result{
		URL:           finalURL,
		Method:        req.Method,
		ExpiresAt:     requestTime.Add(expiry),
		SignedHeaders: signedHeaders,
	}, nil
}

// GetObjectURL is a convenience wrapper for a GET request.
func (i *Issuer) GetObjectURL(accessKeyID, bucket, key string, expiry time.Duration) (*Result, error) {
	return i.Issue(Request{AccessKeyID: accessKeyID, Method: http.MethodGet, Bucket: bucket, Key: key, Expiry: expiry})
}

// PutObjectURL is a convenience wrapper for a PUT request with an optional
// Content-Type bound into the signature.
func (i *Issuer) PutObjectURL(accessKeyID, bucket, key, contentType string, expiry time.Duration) (*Result, error) {
	req := Request{AccessKeyID: accessKeyID, Method: http.MethodPut, Bucket: bucket, Key: key, Expiry: expiry}
	if contentType != "" {
		req.Headers = map[string]string{"content-type": contentType}
	}
	return i.Issue(req)
}

// DeleteObjectURL is a convenience wrapper for a DELETE request.
func (i *Issuer) DeleteObjectURL(accessKeyID, bucket, key string, expiry time.Duration) (*Result, error) {
	return i.Issue(Request{AccessKeyID: accessKeyID, Method: http.MethodDelete, Bucket: bucket, Key: key, Expiry: expiry})
}
