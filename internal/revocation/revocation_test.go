package revocation

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist_RevokeUntilExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewMemoryDenylist()
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "token-a", time.Hour))

	revoked, err := d.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	require.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, err = d.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestMemoryDenylist_PrunesExpiredOnRevoke(t *testing.T) {
	now := time.Now()
	d := NewMemoryDenylist()
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "old", time.Minute))
	now = now.Add(time.Hour)
	require.NoError(t, d.Revoke(ctx, "new", time.Minute))

	require.Len(t, d.entries, 1)
}

func TestRedisDenylist_RevokeUntilExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()

	d := NewRedisDenylist(client)
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "access-token-1", 2*time.Second))
	require.False(t, m.Exists("denylist:access:access-token-1"), "raw token must not be stored")

	ok, err := d.IsRevoked(ctx, "access-token-1")
	require.NoError(t, err)
	require.True(t, ok)

	m.FastForward(3 * time.Second)

	ok, err = d.IsRevoked(ctx, "access-token-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisDenylist_Unavailable(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	defer client.Close()
	m.Close()

	_, err = NewRedisDenylist(client).IsRevoked(context.Background(), "t")
	require.Error(t, err)
}

func TestNoop(t *testing.T) {
	var d Denylist = Noop{}
	require.NoError(t, d.Revoke(context.Background(), "t", time.Minute))
	ok, err := d.IsRevoked(context.Background(), "t")
	require.NoError(t, err)
	require.False(t, ok)
}
