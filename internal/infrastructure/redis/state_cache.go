package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"petaria-auction/internal/domain"
)

// RedisStateCache mirrors auction status for cheap read-path checks, mainly
// websocket admission. It is advisory only: every business decision re-reads
// the locked auction row inside its transaction.
type RedisStateCache struct {
	client *redis.Client
}

func NewRedisStateCache(client *redis.Client) *RedisStateCache {
	return &RedisStateCache{client: client}
}

func (r *RedisStateCache) SetAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	key := fmt.Sprintf("auction:%s:status", auctionID)
	return r.client.Set(ctx, key, string(status), 0).Err()
}

func (r *RedisStateCache) GetAuctionStatus(ctx context.Context, auctionID string) (domain.AuctionStatus, bool, error) {
	key := fmt.Sprintf("auction:%s:status", auctionID)

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}

	return domain.AuctionStatus(result), true, nil
}
