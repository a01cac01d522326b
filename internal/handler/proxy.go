package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/harborlane/s3gate/internal/origin"
)

// OriginClient is the subset of origin.Client the proxy handler needs,
// kept as an interface so tests can substitute a hand-rolled fake instead
// of standing up a real S3-compatible origin.
type OriginClient interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, string, error)
	PutObject(ctx context.Context, key, contentType string, body io.Reader) error
	DeleteObject(ctx context.Context, key string) error
}

// ProxyHandler forwards an authenticated request to the origin bucket,
// standing in for the bucket/object storage layer spec.md excludes. It
// trusts the auth middleware has already validated the caller; it performs
// no authorization decisions of its own beyond the method switch.
type ProxyHandler struct {
	origin OriginClient
	logger zerolog.Logger
}

// NewProxyHandler builds a ProxyHandler.
func NewProxyHandler(client OriginClient, logger zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{origin: client, logger: logger.With().Str("handler", "proxy").Logger()}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, key := origin.ParseBucketAndKey(r.URL.Path)
	if key == "" {
		http.Error(w, "object key is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		body, contentType, err := h.origin.GetObject(r.Context(), key)
		if err != nil {
			h.logger.Warn().Err(err).Str("key", key).Msg("origin get object failed")
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer body.Close()
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.Copy(w, body)

	case http.MethodPut:
		defer r.Body.Close()
		if err := h.origin.PutObject(r.Context(), key, r.Header.Get("Content-Type"), r.Body); err != nil {
			h.logger.Warn().Err(err).Str("key", key).Msg("origin put object failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)

	case http.MethodDelete:
		if err := h.origin.DeleteObject(r.Context(), key); err != nil {
			h.logger.Warn().Err(err).Str("key", key).Msg("origin delete object failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
