package auth

import (
	"fmt"
	"regexp"
)

var (
	accessKeyIDPattern     = regexp.MustCompile(`^AKIA[A-Z0-9]{16}$`)
	secretAccessKeyPattern = regexp.MustCompile(`^[A-Za-z0-9+/]{40}$`)
)

// Credential is a single long-term access key/secret key pair, scoped to a
// region. Both fields are format-validated at construction; there is no way
// to obtain a Credential value that fails the AWS IAM long-term key shape.
type Credential struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// NewCredential validates accessKeyID and secretAccessKey against the AWS
// IAM long-term credential format and returns a Credential, or an *Error
// with Kind KindInvalidAccessKeyIDFormat / KindInvalidSecretAccessKeyFormat.
//
// Access key: exactly 20 chars, AKIA-prefixed, remainder in [A-Z0-9].
// Secret key: exactly 40 chars, base64 alphabet [A-Za-z0-9+/].
// STS-style temporary credentials (ASIA-prefixed) are rejected by this
// pattern deliberately; session tokens are out of scope.
func NewCredential(accessKeyID, secretAccessKey, region string) (Credential, error) {
	if !accessKeyIDPattern.MatchString(accessKeyID) {
		return Credential{}, errInvalidAccessKeyIDFormat(accessKeyID)
	}
	if !secretAccessKeyPattern.MatchString(secretAccessKey) {
		return Credential{}, errInvalidSecretAccessKeyFormat("secret access key must be 40 base64-alphabet characters")
	}
	return Credential{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		Region:          region,
	}, nil
}

// Registry is an immutable-after-build, concurrency-safe mapping from
// access-key-id to Credential. Once Build is called no further inserts are
// accepted; concurrent reads need no locking because the map is never
// mutated after construction.
type Registry struct {
	credentials map[string]Credential
}

// NewRegistryBuilder starts an empty, mutable registry under construction.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{credentials: make(map[string]Credential)}
}

// RegistryBuilder accumulates credentials before the registry is frozen.
type RegistryBuilder struct {
	credentials map[string]Credential
}

// Insert adds a credential under the given access-key-id. It fails with
// KindInvalidAccessKeyIDFormat if accessKeyID does not equal the
// credential's own AccessKeyID field — the registry key and the credential's
// self-reported identity must agree. Inserting the same access-key-id twice
// is a configuration error, not a silent overwrite.
func (b *RegistryBuilder) Insert(accessKeyID string, cred Credential) error {
	if accessKeyID != cred.AccessKeyID {
		return errInvalidAccessKeyIDFormat(accessKeyID)
	}
	if _, exists := b.credentials[accessKeyID]; exists {
		return fmt.Errorf("auth: access key %s already registered", accessKeyID)
	}
	b.credentials[accessKeyID] = cred
	return nil
}

// Build freezes the accumulated credentials into a read-only Registry.
func (b *RegistryBuilder) Build() *Registry {
	frozen := make(map[string]Credential, len(b.credentials))
	for k, v := range b.credentials {
		frozen[k] = v
	}
	return &Registry{credentials: frozen}
}

// Lookup returns the credential for accessKeyID, or KindInvalidAccessKey if
// no such key was registered at startup.
func (r *Registry) Lookup(accessKeyID string) (Credential, error) {
	cred, ok := r.credentials[accessKeyID]
	if !ok {
		return Credential{}, errInvalidAccessKey()
	}
	return cred, nil
}

// Len reports the number of registered credentials. Registries in this
// gateway are expected to hold O(10) entries; a map lookup is specified
// for O(1) access rather than a linear scan.
func (r *Registry) Len() int {
	return len(r.credentials)
}
