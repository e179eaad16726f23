package idgen

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FormatAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		id, err := New()
		require.NoError(t, err)

		parts := strings.SplitN(id, "-", 2)
		require.Len(t, parts, 2)

		ms, err := strconv.ParseInt(parts[0], 36, 64)
		require.NoError(t, err)
		assert.InDelta(t, time.Now().UnixMilli(), ms, float64(time.Minute.Milliseconds()))
		assert.Len(t, parts[1], 12)

		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %q", id)
		seen[id] = struct{}{}
	}
}

func TestStorageKey_Layout(t *testing.T) {
	key := StorageKey()

	parts := strings.Split(key, "/")
	require.Len(t, parts, 5)
	assert.Equal(t, "users", parts[0])

	now := time.Now().UTC()
	assert.Equal(t, strconv.Itoa(now.Year()), parts[1])

	other := StorageKey()
	assert.NotEqual(t, key, other)
}
