package origin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBucketAndKey(t *testing.T) {
	cases := []struct {
		name       string
		path       string
		wantBucket string
		wantKey    string
	}{
		{"root", "/", "", ""},
		{"empty", "", "", ""},
		{"bucket_only", "/my-bucket", "my-bucket", ""},
		{"bucket_and_key", "/my-bucket/path/to/object.txt", "my-bucket", "path/to/object.txt"},
		{"no_leading_slash", "my-bucket/key", "my-bucket", "key"},
		{"trailing_slash", "/my-bucket/", "my-bucket", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bucket, key := ParseBucketAndKey(tc.path)
			assert.Equal(t, tc.wantBucket, bucket)
			assert.Equal(t, tc.wantKey, key)
		})
	}
}
