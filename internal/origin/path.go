package origin

import "strings"

// ParseBucketAndKey splits a request path into a bucket and an object key,
// the same way the reference implementation's parse_bucket_and_object_from_uri
// does it: first path segment is the bucket, everything after is rejoined as
// the key. This is routing, not bucket/object name validation — the origin
// proxy needs it to build the upstream S3 key, nothing more.
func ParseBucketAndKey(path string) (bucket, key string) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "", ""
	}
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		key = parts[1]
	}
	return bucket, key
}
