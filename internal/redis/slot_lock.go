package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
	"github.com/seyoungseyoung/blog-KRW/internal/metrics"
)

// releaseScript deletes the lock only if this instance still owns it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// SlotLock implements domain.SlotLock using SETNX with a TTL. One lock
// per posting slot guarantees at-most-once publishing across instances.
type SlotLock struct {
	rdb        *redis.Client
	instanceID string
}

// NewSlotLock creates a SlotLock on the shared client. instanceID
// identifies this process so Release cannot drop another instance's lock.
func NewSlotLock(client *Client, instanceID string) *SlotLock {
	return &SlotLock{rdb: client.Underlying(), instanceID: instanceID}
}

func slotKey(slot string) string {
	return "slot:" + slot
}

func (l *SlotLock) Acquire(ctx context.Context, slot string, ttl time.Duration) (bool, error) {
	acquired, err := l.rdb.SetNX(ctx, slotKey(slot), l.instanceID, ttl).Result()
	if err != nil {
		metrics.SlotLocksTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	if !acquired {
		metrics.SlotLocksTotal.WithLabelValues("taken").Inc()
		return false, nil
	}
	metrics.SlotLocksTotal.WithLabelValues("acquired").Inc()
	return true, nil
}

func (l *SlotLock) Release(ctx context.Context, slot string) error {
	if err := l.rdb.Eval(ctx, releaseScript, []string{slotKey(slot)}, l.instanceID).Err(); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}

var _ domain.SlotLock = (*SlotLock)(nil)
