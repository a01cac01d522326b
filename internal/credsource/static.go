package credsource

import (
	"context"

	"github.com/harborlane/s3gate/internal/auth"
)

// StaticEntry is one credential defined directly in configuration, for
// deployments that don't run a credential database at all — including the
// single issuing credential the Pre-signed URL Issuer needs when presign
// issuance runs standalone.
type StaticEntry struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// staticSource serves a fixed, config-supplied credential list.
type staticSource struct {
	entries []StaticEntry
}

// NewStaticSource builds a Source from in-config credential entries.
func NewStaticSource(entries []StaticEntry) Source {
	return &staticSource{entries: entries}
}

func (s *staticSource) Load(ctx context.Context) ([]auth.Credential, error) {
	creds := make([]auth.Credential, 0, len(s.entries))
	for _, e := range s.entries {
		cred, err := auth.NewCredential(e.AccessKeyID, e.SecretAccessKey, e.Region)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	return creds, nil
}
