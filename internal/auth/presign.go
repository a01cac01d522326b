package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PresignedURLParams are the inputs the Pre-signed URL Issuer (package
// presign) supplies; everything about canonicalization and signing stays
// here so the issuer never duplicates the Validator's arithmetic.
type PresignedURLParams struct {
	Credential    Credential
	Method        string
	Host          string
	Path          string
	ExtraQuery    url.Values
	SignedHeaders map[string]string // lowercase header name -> value, "host" required
	RequestTime   time.Time
	ExpirySeconds int64
}

// BuildPresignedURL returns the query string (including the signature) for
// a pre-signed request, and the sorted list of header names the caller must
// send verbatim. It mirrors ValidatePresignedRequest's canonicalization
// exactly, so anything this builds, the Validator accepts.
func BuildPresignedURL(p PresignedURLParams) (query string, signedHeaderNames []string, err error) {
	scope := credentialScopeString(p.RequestTime, p.Credential.Region)
	credentialParam := p.Credential.AccessKeyID + "/" + scope

	headers := make(http.Header, len(p.SignedHeaders)+1)
	names := []string{"host"}
	headers.Set("host", p.Host)
	for k, v := range p.SignedHeaders {
		lk := strings.ToLower(k)
		if lk == "host" {
			continue
		}
		headers.Set(lk, v)
		names = append(names, lk)
	}
	signedHeaderNames = lowercasedSorted(names)
	signedHeadersParam := strings.Join(signedHeaderNames, ";")

	q := url.Values{}
	if p.ExtraQuery != nil {
		for k, v := range p.ExtraQuery {
			q[k] = v
		}
	}
	q.Set(XAmzAlgorithmHeader, SignV4Algorithm)
	q.Set(XAmzCredentialHeader, credentialParam)
	q.Set(XAmzDateHeader, p.RequestTime.Format(ISO8601BasicFormat))
	q.Set(XAmzExpiresHeader, fmt.Sprintf("%d", p.ExpirySeconds))
	q.Set(XAmzSignedHeadersHeader, signedHeadersParam)

	canonicalRequest := buildCanonicalRequest(p.Method, p.Path, q.Encode(), headers, signedHeaderNames, UnsignedPayload)
	sts := stringToSign(p.RequestTime.Format(ISO8601BasicFormat), scope, canonicalRequest)
	sig := Sign(p.Credential.SecretAccessKey, p.RequestTime, p.Credential.Region, sts)

	q.Set(XAmzSignatureHeader, sig)
	return q.Encode(), signedHeaderNames, nil
}
