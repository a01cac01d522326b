package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborlane/s3gate/internal/presign"
)

// PresignHandler exposes the Pre-signed URL Issuer over HTTP, authenticated
// by the same SigV4 middleware protecting the proxy route (spec.md's
// "operator credential known to the server" case).
type PresignHandler struct {
	issuer *presign.Issuer
	logger zerolog.Logger
}

// NewPresignHandler builds a PresignHandler.
func NewPresignHandler(issuer *presign.Issuer, logger zerolog.Logger) *PresignHandler {
	return &PresignHandler{issuer: issuer, logger: logger.With().Str("handler", "presign").Logger()}
}

type presignRequest struct {
	AccessKeyID   string            `json:"access_key_id"`
	Method        string            `json:"method"`
	Bucket        string            `json:"bucket"`
	Key           string            `json:"key"`
	ContentType   string            `json:"content_type,omitempty"`
	ExpirySeconds int64             `json:"expiry_seconds,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
}

type presignResponse struct {
	URL           string `json:"url"`
	ExpiresAt     string `json:"expires_at"`
	SignedHeaders string `json:"signed_headers,omitempty"`
}

// ServeHTTP decodes a JSON presign request, issues the URL, and returns it.
func (h *PresignHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	headers := req.Headers
	if req.ContentType != "" {
		if headers == nil {
			headers = map[string]string{}
		}
		headers["content-type"] = req.ContentType
	}

	var expiry time.Duration
	if req.ExpirySeconds > 0 {
		expiry = time.Duration(req.ExpirySeconds) * time.Second
	}

	result, err := h.issuer.Issue(presign.Request{
		AccessKeyID: req.AccessKeyID,
		Method:      strings.ToUpper(req.Method),
		Bucket:      req.Bucket,
		Key:         req.Key,
		Headers:     headers,
		Expiry:      expiry,
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("bucket", req.Bucket).Str("key", req.Key).Msg("presign request failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(presignResponse{
		URL:           result.URL,
		ExpiresAt:     result.ExpiresAt.Format(time.RFC3339),
		SignedHeaders: strings.Join(result.SignedHeaders, ";"),
	})
}
