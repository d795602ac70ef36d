package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBlacklist(t *testing.T) (*RedisTokenBlacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTokenBlacklist(client), mr
}

func TestTokenBlacklists(t *testing.T) {
	redisList, _ := newRedisBlacklist(t)
	impls := map[string]TokenBlacklist{
		"redis":     redisList,
		"in-memory": NewInMemoryTokenBlacklist(),
	}

	for name, bl := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			revoked, err := bl.IsBlacklisted(ctx, "jti-1")
			require.NoError(t, err)
			assert.False(t, revoked)

			require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", time.Hour))
			revoked, err = bl.IsBlacklisted(ctx, "jti-1")
			require.NoError(t, err)
			assert.True(t, revoked)

			require.NoError(t, bl.AddToBlacklist(ctx, "jti-expired", 0))
			revoked, err = bl.IsBlacklisted(ctx, "jti-expired")
			require.NoError(t, err)
			assert.False(t, revoked, "already expired tokens need no entry")

			issued := time.Now().Add(-time.Minute)
			invalid, err := bl.IsUserTokenInvalidated(ctx, 7, issued)
			require.NoError(t, err)
			assert.False(t, invalid)

			require.NoError(t, bl.InvalidateUser(ctx, 7, time.Hour))
			invalid, err = bl.IsUserTokenInvalidated(ctx, 7, issued)
			require.NoError(t, err)
			assert.True(t, invalid)

			invalid, err = bl.IsUserTokenInvalidated(ctx, 7, time.Now().Add(2*time.Second))
			require.NoError(t, err)
			assert.False(t, invalid, "tokens issued after the cut-off stay valid")
		})
	}
}

func TestRedisTokenBlacklist_EntriesExpire(t *testing.T) {
	bl, mr := newRedisBlacklist(t)
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-2", time.Minute))
	mr.FastForward(2 * time.Minute)

	revoked, err := bl.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_Unavailable(t *testing.T) {
	bl, mr := newRedisBlacklist(t)
	mr.Close()

	_, err := bl.IsBlacklisted(context.Background(), "jti-3")
	assert.Error(t, err)
}
