package signingcache

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is a signing-key cache backed by go-redis, for multi-instance
// deployments where an in-memory cache would miss on every instance but
// the one that last derived a given day's key.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger zerolog.Logger
}

// NewRedis builds a Redis-backed cache. client is expected to already be
// configured and reachable; NewRedis does not ping it, matching the
// optimization-only contract (a down Redis just means every Get misses).
func NewRedis(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		prefix: "sigv4:signingkey:",
		logger: logger.With().Str("component", "signingcache_redis").Logger(),
	}
}

// Get implements auth.SigningKeyCache. Any Redis error is treated as a
// miss: a cache failure must never turn into a signature verification
// failure.
func (r *Redis) Get(secretKey, date, region string) ([]byte, bool) {
	k := Key{SecretAccessKey: secretKey, Date: date, Region: region}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	encoded, err := r.client.Get(ctx, r.prefix+k.cacheKey()).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Debug().Err(err).Msg("signing key cache get failed, falling back to fresh derivation")
		}
		return nil, false
	}

	decoded, err := hex.DecodeString(encoded)
	if err != nil {
		r.logger.Warn().Err(err).Msg("signing key cache returned malformed value")
		return nil, false
	}
	return decoded, true
}

// Set implements auth.SigningKeyCache. Failures are logged and swallowed.
func (r *Redis) Set(secretKey, date, region string, key []byte) {
	k := Key{SecretAccessKey: secretKey, Date: date, Region: region}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+k.cacheKey(), hex.EncodeToString(key), r.ttl).Err(); err != nil {
		r.logger.Debug().Err(err).Msg("signing key cache set failed")
	}
}
