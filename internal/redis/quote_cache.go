package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

// QuoteCache implements domain.QuoteCache: the latest quote per ticker as
// JSON under a TTL, so the API can answer without hitting Yahoo.
type QuoteCache struct {
	rdb *redis.Client
}

// NewQuoteCache creates a QuoteCache on the shared client.
func NewQuoteCache(client *Client) *QuoteCache {
	return &QuoteCache{rdb: client.Underlying()}
}

func quoteKey(ticker string) string {
	return "quote:" + ticker
}

func (c *QuoteCache) Set(ctx context.Context, q domain.Quote, ttl time.Duration) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	if err := c.rdb.Set(ctx, quoteKey(q.Ticker), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}
	return nil
}

func (c *QuoteCache) Get(ctx context.Context, ticker string) (domain.Quote, bool, error) {
	payload, err := c.rdb.Get(ctx, quoteKey(ticker)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quote{}, false, nil
	}
	if err != nil {
		return domain.Quote{}, false, fmt.Errorf("failed to read cached quote: %w", err)
	}

	var q domain.Quote
	if err := json.Unmarshal(payload, &q); err != nil {
		return domain.Quote{}, false, fmt.Errorf("failed to unmarshal cached quote: %w", err)
	}
	return q, true, nil
}
