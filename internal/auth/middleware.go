package auth

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MetricsRecorder is the subset of gatemetrics.Metrics the middleware needs.
// Kept as a small interface here rather than importing gatemetrics directly
// so the auth package has no dependency on the metrics library.
type MetricsRecorder interface {
	ObserveAuthResult(result string)
	ObserveValidateDuration(mode string, d time.Duration)
}

// Config controls middleware behavior that is deployment-specific rather
// than part of the signing algorithm itself.
type Config struct {
	// SkipPaths bypasses authentication entirely for exact path matches
	// (health checks and similar).
	SkipPaths []string

	// Now, if set, is used instead of time.Now for timestamp checks. Tests
	// inject this to pin clock-skew boundaries; production leaves it nil.
	Now func() time.Time

	// SigningKeyCache, if set, is attached to the internal Validator.
	SigningKeyCache SigningKeyCache

	// Metrics, if set, records auth outcomes and validation latency.
	Metrics MetricsRecorder
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

func (c Config) skip(path string) bool {
	for _, p := range c.SkipPaths {
		if p == path {
			return true
		}
	}
	return false
}

// errorXML is the S3-compatible error body shape (spec §6.2).
type errorXML struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	Resource  string   `xml:"Resource"`
	RequestID string   `xml:"RequestId"`
}

// Middleware buffers the request body, dispatches to header-signed or
// pre-signed validation, and on success forwards a reconstructed request
// (with the body reattached) to next, storing an *AuthContext in its
// context. On failure it renders the XML error body with the correct S3
// error code and HTTP status, short-circuiting the pipeline. It never
// panics on malformed input.
func Middleware(registry *Registry, config Config, logger zerolog.Logger) func(http.Handler) http.Handler {
	validator := NewValidator(registry)
	if config.SigningKeyCache != nil {
		validator = validator.WithSigningKeyCache(config.SigningKeyCache)
	}
	log := logger.With().Str("component", "auth_middleware").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			if config.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				log.Warn().Err(err).Str("request_id", requestID).Msg("failed to read request body")
				writeAuthError(w, NewAuthError(errMalformedRequest()), r.URL.Path, requestID)
				return
			}
			r.Body.Close()

			now := config.now()

			var accessKeyID string
			var authType AuthType
			mode := "header"
			start := time.Now()
			if IsPresignedRequest(r) {
				authType = AuthTypePresignedV4
				mode = "presigned"
				accessKeyID, err = validator.ValidatePresignedRequest(r, now)
			} else {
				authType = AuthTypeSignedV4
				accessKeyID, err = validator.ValidateRequest(r, body, now)
			}
			if config.Metrics != nil {
				config.Metrics.ObserveValidateDuration(mode, time.Since(start))
			}

			if err != nil {
				// Access-key-ids are never logged on the failure path to
				// avoid aiding enumeration; no secret or signature is ever
				// logged on any path.
				log.Warn().Err(err).Str("request_id", requestID).Msg("authentication failed")
				if config.Metrics != nil {
					var ae *Error
					if errors.As(err, &ae) {
						config.Metrics.ObserveAuthResult(ae.Kind.String())
					} else {
						config.Metrics.ObserveAuthResult("unknown")
					}
				}
				writeAuthError(w, NewAuthError(err), r.URL.Path, requestID)
				return
			}

			if config.Metrics != nil {
				config.Metrics.ObserveAuthResult("success")
			}

			log.Info().Str("access_key_id", accessKeyID).Str("request_id", requestID).Msg("request authenticated")

			r.Body = io.NopCloser(bytes.NewReader(body))
			ctx := context.WithValue(r.Context(), AuthContextKey, &AuthContext{
				AccessKeyID: accessKeyID,
				AuthType:    authType,
				RequestTime: now,
				RequestID:   requestID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, ae *AuthError, resource, requestID string) {
	ae.Resource = resource
	ae.RequestID = requestID

	body := errorXML{
		Code:      string(ae.Code),
		Message:   ae.Message,
		Resource:  ae.Resource,
		RequestID: ae.RequestID,
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(ae.HTTPStatus)
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	_ = enc.Encode(body)
}

// GetAuthContext retrieves the *AuthContext a successful Middleware call
// attached to ctx, if any.
func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(AuthContextKey).(*AuthContext)
	return ac, ok
}
