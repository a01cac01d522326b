package signingcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetThenGet(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Stop()

	key := []byte("derived-signing-key")
	m.Set("secret", "20260730", "us-east-1", key)

	got, ok := m.Get("secret", "20260730", "us-east-1")
	require.True(t, ok)
	assert.Equal(t, key, got)
}

func TestMemory_MissOnUnknownKey(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Stop()

	_, ok := m.Get("secret", "20260730", "us-east-1")
	assert.False(t, ok)
}

func TestMemory_ExpiresAfterTTL(t *testing.T) {
	m := NewMemory(time.Millisecond)
	defer m.Stop()

	m.Set("secret", "20260730", "us-east-1", []byte("key"))
	time.Sleep(5 * time.Millisecond)

	_, ok := m.Get("secret", "20260730", "us-east-1")
	assert.False(t, ok)
}

func TestMemory_ReturnedSliceIsACopy(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Stop()

	original := []byte("derived-signing-key")
	m.Set("secret", "20260730", "us-east-1", original)

	got, ok := m.Get("secret", "20260730", "us-east-1")
	require.True(t, ok)
	got[0] = 'X'

	again, ok := m.Get("secret", "20260730", "us-east-1")
	require.True(t, ok)
	assert.Equal(t, []byte("derived-signing-key"), again)
}
