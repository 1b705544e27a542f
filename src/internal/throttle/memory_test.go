package throttle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlocksAfterLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Settings{Limit: 3, Window: time.Minute})
	key := Key("user", "10.0.0.1", "Ann@Example.com")

	for i := 0; i < 3; i++ {
		blocked, err := m.Blocked(ctx, key)
		require.NoError(t, err)
		assert.False(t, blocked, "attempt %d should be allowed", i+1)
		require.NoError(t, m.Fail(ctx, key))
	}

	blocked, err := m.Blocked(ctx, key)
	require.NoError(t, err)
	assert.True(t, blocked)

	other, err := m.Blocked(ctx, Key("user", "10.0.0.2", "ann@example.com"))
	require.NoError(t, err)
	assert.False(t, other)
}

func TestMemoryWindowExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemory(Settings{Limit: 1, Window: time.Minute})
	m.now = func() time.Time { return now }

	require.NoError(t, m.Fail(ctx, "k"))
	blocked, _ := m.Blocked(ctx, "k")
	assert.True(t, blocked)

	now = now.Add(2 * time.Minute)
	blocked, _ = m.Blocked(ctx, "k")
	assert.False(t, blocked)
}

func TestMemorySweepsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemory(Settings{Limit: 3, Window: time.Minute})
	m.now = func() time.Time { return now }

	for i := 0; i < sweepEvery-1; i++ {
		require.NoError(t, m.Fail(ctx, Key("user", "10.0.0.1", fmt.Sprintf("user%d@example.com", i))))
	}
	assert.Len(t, m.attempts, sweepEvery-1)

	now = now.Add(2 * time.Minute)
	require.NoError(t, m.Fail(ctx, "fresh"))
	assert.Len(t, m.attempts, 1)
}

func TestMemoryReset(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Settings{Limit: 1, Window: time.Minute})

	require.NoError(t, m.Fail(ctx, "k"))
	require.NoError(t, m.Reset(ctx, "k"))

	blocked, _ := m.Blocked(ctx, "k")
	assert.False(t, blocked)
}

func TestKeyNormalizesEmail(t *testing.T) {
	assert.Equal(t, Key("admin", "1.2.3.4", "ROOT@example.com"), Key("admin", "1.2.3.4", "root@example.com"))
	assert.NotEqual(t, Key("admin", "1.2.3.4", "root@example.com"), Key("user", "1.2.3.4", "root@example.com"))
}

func TestSettingsEnabled(t *testing.T) {
	assert.True(t, Settings{Limit: 5, Window: time.Minute}.Enabled())
	assert.False(t, Settings{Limit: 0, Window: time.Minute}.Enabled())
	assert.False(t, Settings{Limit: 5}.Enabled())

	blocked, err := Noop{}.Blocked(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, blocked)
}
