// Package signingcache caches derived AWS SigV4 signing keys so repeated
// requests from the same credential on the same day don't re-run the
// four-step HMAC chain. It is an optimization only: every implementation's
// Get may always report a miss without affecting correctness.
package signingcache

// Key identifies a cached signing key by the inputs that determine it.
type Key struct {
	SecretAccessKey string
	Date            string
	Region          string
}

func (k Key) cacheKey() string {
	return k.Date + "/" + k.Region + "/" + k.SecretAccessKey
}
