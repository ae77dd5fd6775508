package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestQuoteCache_SetGet(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewQuoteCache(client)
	ctx := context.Background()

	quote := domain.Quote{
		Ticker:        "KRW=X",
		Close:         1391.25,
		Change:        5.75,
		ChangePercent: 0.41,
		At:            time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Set(ctx, quote, time.Minute))

	got, found, err := cache.Get(ctx, "KRW=X")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, quote, got)
}

func TestQuoteCache_MissingKey(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewQuoteCache(client)

	_, found, err := cache.Get(context.Background(), "KRW=X")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQuoteCache_TTLExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewQuoteCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, domain.Quote{Ticker: "KRW=X", Close: 1391.25}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, found, err := cache.Get(ctx, "KRW=X")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSlotLock_AtMostOnce(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	first := NewSlotLock(client, "instance-a")
	second := NewSlotLock(client, "instance-b")

	acquired, err := first.Acquire(ctx, "2026-08-21/morning", time.Hour)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = second.Acquire(ctx, "2026-08-21/morning", time.Hour)
	require.NoError(t, err)
	assert.False(t, acquired)

	// A different slot is free.
	acquired, err = second.Acquire(ctx, "2026-08-21/evening", time.Hour)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestSlotLock_ReleaseOnlyOwn(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	owner := NewSlotLock(client, "instance-a")
	other := NewSlotLock(client, "instance-b")

	acquired, err := owner.Acquire(ctx, "2026-08-21/morning", time.Hour)
	require.NoError(t, err)
	require.True(t, acquired)

	// A non-owner release is a no-op.
	require.NoError(t, other.Release(ctx, "2026-08-21/morning"))
	assert.True(t, mr.Exists("slot:2026-08-21/morning"))

	require.NoError(t, owner.Release(ctx, "2026-08-21/morning"))
	assert.False(t, mr.Exists("slot:2026-08-21/morning"))
}

func TestSlotLock_ExpiresWithTTL(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	lock := NewSlotLock(client, "instance-a")
	acquired, err := lock.Acquire(ctx, "2026-08-21/morning", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(2 * time.Minute)

	acquired, err = lock.Acquire(ctx, "2026-08-21/morning", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestLeaderElection_SingleLeader(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	a := NewLeaderElection(client, "instance-a", "leader:scheduler", time.Minute)
	b := NewLeaderElection(client, "instance-b", "leader:scheduler", time.Minute)

	became, err := a.TryBecomeLeader(ctx)
	require.NoError(t, err)
	assert.True(t, became)

	became, err = b.TryBecomeLeader(ctx)
	require.NoError(t, err)
	assert.False(t, became)

	isLeader, err := a.IsLeader(ctx)
	require.NoError(t, err)
	assert.True(t, isLeader)

	isLeader, err = b.IsLeader(ctx)
	require.NoError(t, err)
	assert.False(t, isLeader)
}

func TestLeaderElection_RenewOnlyAsLeader(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	a := NewLeaderElection(client, "instance-a", "leader:scheduler", time.Minute)
	b := NewLeaderElection(client, "instance-b", "leader:scheduler", time.Minute)

	became, err := a.TryBecomeLeader(ctx)
	require.NoError(t, err)
	require.True(t, became)

	require.NoError(t, a.RenewLease(ctx))
	assert.ErrorIs(t, b.RenewLease(ctx), ErrNotLeader)

	// Leadership passes after expiry.
	mr.FastForward(2 * time.Minute)
	became, err = b.TryBecomeLeader(ctx)
	require.NoError(t, err)
	assert.True(t, became)
}

func TestLeaderElection_Release(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	a := NewLeaderElection(client, "instance-a", "leader:scheduler", time.Minute)
	b := NewLeaderElection(client, "instance-b", "leader:scheduler", time.Minute)

	became, err := a.TryBecomeLeader(ctx)
	require.NoError(t, err)
	require.True(t, became)

	require.NoError(t, a.ReleaseLease(ctx))

	became, err = b.TryBecomeLeader(ctx)
	require.NoError(t, err)
	assert.True(t, became)
}
