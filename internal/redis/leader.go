package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seyoungseyoung/blog-KRW/internal/metrics"
)

// LeaderElection implements single-leader election using Redis SETNX.
// The leader holds a key with a TTL; followers take over when the key
// expires (previous leader crashed or got partitioned). Only the leader
// runs the posting schedule.
type LeaderElection struct {
	rdb        *redis.Client
	instanceID string
	ttl        time.Duration
	key        string
}

// NewLeaderElection creates a new leader election instance. key is the
// Redis key used for the election (e.g., "leader:scheduler").
func NewLeaderElection(client *Client, instanceID string, key string, ttl time.Duration) *LeaderElection {
	return &LeaderElection{
		rdb:        client.Underlying(),
		instanceID: instanceID,
		ttl:        ttl,
		key:        key,
	}
}

// TryBecomeLeader attempts to acquire leadership. Returns true if this
// instance is now the leader.
func (l *LeaderElection) TryBecomeLeader(ctx context.Context) (bool, error) {
	success, err := l.rdb.SetNX(ctx, l.key, l.instanceID, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if success {
		metrics.LeaderElections.Inc()
		metrics.IsLeader.Set(1)
	}
	return success, nil
}

// RenewLease extends the leader's TTL. Only succeeds if this instance is
// still the leader; call periodically (e.g., every ttl/2).
func (l *LeaderElection) RenewLease(ctx context.Context) error {
	// Lua script ensures atomic check-and-renew
	script := `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("EXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
	`

	result, err := l.rdb.Eval(ctx, script, []string{l.key}, l.instanceID, int(l.ttl.Seconds())).Result()
	if err != nil {
		return err
	}

	if result == int64(0) {
		metrics.IsLeader.Set(0)
		return ErrNotLeader
	}

	return nil
}

// IsLeader checks if this instance is currently the leader.
func (l *LeaderElection) IsLeader(ctx context.Context) (bool, error) {
	currentLeader, err := l.rdb.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return currentLeader == l.instanceID, nil
}

// ReleaseLease voluntarily gives up leadership during graceful shutdown.
func (l *LeaderElection) ReleaseLease(ctx context.Context) error {
	err := l.rdb.Eval(ctx, releaseScript, []string{l.key}, l.instanceID).Err()
	if err == nil {
		metrics.IsLeader.Set(0)
	}
	return err
}

// ErrNotLeader is returned by RenewLease when this instance is no longer the leader.
var ErrNotLeader = &notLeaderError{}

type notLeaderError struct{}

func (e *notLeaderError) Error() string {
	return "not leader"
}
