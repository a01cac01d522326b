package auth

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// parsedAuthorization is what ParseAuthorizationHeader extracts from the
// Authorization header before any credential lookup happens.
type parsedAuthorization struct {
	AccessKeyID   string
	CredentialRaw string // e.g. "AKIA.../20240101/us-east-1/s3/aws4_request"
	SignedHeaders []string
	Signature     string
}

var signatureHexPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// ParseAuthorizationHeader parses the four whitespace-separated tokens of a
// SigV4 Authorization header: the literal algorithm, then three
// comma-terminated key=value tokens (Credential, SignedHeaders, Signature)
// in any order.
func ParseAuthorizationHeader(header string) (*parsedAuthorization, error) {
	fields := strings.Fields(header)
	if len(fields) != 4 {
		return nil, errInvalidAuthorizationHeader()
	}
	if fields[0] != SignV4Algorithm {
		return nil, errInvalidAuthorizationHeader()
	}

	parsed := &parsedAuthorization{}
	seen := map[string]bool{}

	for _, token := range fields[1:] {
		token = strings.TrimSuffix(token, ",")
		idx := strings.IndexByte(token, '=')
		if idx < 0 {
			return nil, errInvalidAuthorizationHeader()
		}
		key, value := token[:idx], token[idx+1:]
		switch key {
		case "Credential":
			parsed.CredentialRaw = value
			seen["Credential"] = true
		case "SignedHeaders":
			parsed.SignedHeaders = strings.Split(value, ";")
			seen["SignedHeaders"] = true
		case "Signature":
			parsed.Signature = value
			seen["Signature"] = true
		default:
			return nil, errInvalidAuthorizationHeader()
		}
	}

	if !seen["Credential"] || !seen["SignedHeaders"] || !seen["Signature"] {
		return nil, errInvalidAuthorizationHeader()
	}

	credParts := strings.Split(parsed.CredentialRaw, "/")
	if len(credParts) != 5 || credParts[0] == "" {
		return nil, errInvalidAuthorizationHeader()
	}
	parsed.AccessKeyID = credParts[0]

	if !signatureHexPattern.MatchString(parsed.Signature) {
		return nil, errInvalidAuthorizationHeader()
	}

	return parsed, nil
}

// parsedPresigned is what ParsePresignedParams extracts from the query
// string of a pre-signed request.
type parsedPresigned struct {
	Algorithm     string
	AccessKeyID   string
	CredentialRaw string
	Date          string
	Expires       int64
	SignedHeaders []string
	Signature     string
}

// ParsePresignedParams extracts the six required X-Amz-* query parameters.
// Each missing parameter fails with KindMissingPresignedParameter naming it.
func ParsePresignedParams(query map[string][]string) (*parsedPresigned, error) {
	get := func(name string) (string, bool) {
		v, ok := query[name]
		if !ok || len(v) == 0 || v[0] == "" {
			return "", false
		}
		return v[0], true
	}

	algorithm, ok := get(XAmzAlgorithmHeader)
	if !ok {
		return nil, errMissingPresignedParameter(XAmzAlgorithmHeader)
	}
	credential, ok := get(XAmzCredentialHeader)
	if !ok {
		return nil, errMissingPresignedParameter(XAmzCredentialHeader)
	}
	date, ok := get(XAmzDateHeader)
	if !ok {
		return nil, errMissingPresignedParameter(XAmzDateHeader)
	}
	expiresStr, ok := get(XAmzExpiresHeader)
	if !ok {
		return nil, errMissingPresignedParameter(XAmzExpiresHeader)
	}
	signedHeadersStr, ok := get(XAmzSignedHeadersHeader)
	if !ok {
		return nil, errMissingPresignedParameter(XAmzSignedHeadersHeader)
	}
	sig, ok := get(XAmzSignatureHeader)
	if !ok {
		return nil, errMissingPresignedParameter(XAmzSignatureHeader)
	}

	credParts := strings.Split(credential, "/")
	if len(credParts) != 5 || credParts[0] == "" || credParts[4] != AWS4Request {
		return nil, errInvalidAuthorizationHeader()
	}

	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil || expires < 1 || expires > 604800 {
		return nil, errInvalidExpiration()
	}

	return &parsedPresigned{
		Algorithm:     algorithm,
		AccessKeyID:   credParts[0],
		CredentialRaw: credential,
		Date:          date,
		Expires:       expires,
		SignedHeaders: strings.Split(signedHeadersStr, ";"),
		Signature:     sig,
	}, nil
}

// IsPresignedRequest reports whether r's query string carries both
// X-Amz-Algorithm and X-Amz-Signature, the discriminator between the two
// signing modes.
func IsPresignedRequest(r *http.Request) bool {
	q := r.URL.Query()
	_, hasAlgorithm := q[XAmzAlgorithmHeader]
	_, hasSignature := q[XAmzSignatureHeader]
	return hasAlgorithm && hasSignature
}
