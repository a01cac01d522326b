// Package credsource loads credentials at boot time and assembles them into
// a frozen auth.Registry. Sources never participate in the request path:
// the Registry built from them is immutable once Build() returns, matching
// the auth package's concurrency model.
package credsource

import (
	"context"
	"fmt"

	"github.com/harborlane/s3gate/internal/auth"
)

// Source produces the set of credentials active at the moment Load is
// called. Implementations are boot-time only; nothing about the request
// path calls Source again.
type Source interface {
	Load(ctx context.Context) ([]auth.Credential, error)
}

// BuildRegistry loads every source in order and freezes the result into a
// Registry. A later source inserting an access key ID already inserted by
// an earlier one is an error — callers should partition access key IDs
// across sources, not rely on override semantics.
func BuildRegistry(ctx context.Context, sources ...Source) (*auth.Registry, error) {
	builder := auth.NewRegistryBuilder()

	for _, src := range sources {
		creds, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("credsource: load failed: %w", err)
		}
		for _, cred := range creds {
			if err := builder.Insert(cred.AccessKeyID, cred); err != nil {
				return nil, fmt.Errorf("credsource: inserting %s: %w", cred.AccessKeyID, err)
			}
		}
	}

	return builder.Build(), nil
}
