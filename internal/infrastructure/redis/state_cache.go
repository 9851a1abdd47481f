package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStateCache mirrors each listing's open flag so closed listings can be
// rejected without touching MySQL. The repository row stays authoritative.
type RedisStateCache struct {
	client *redis.Client
}

func NewStateCache(client *redis.Client) *RedisStateCache {
	return &RedisStateCache{client: client}
}

func stateKey(listingID string) string {
	return fmt.Sprintf("listing:%s:open", listingID)
}

func (r *RedisStateCache) SetListingOpen(ctx context.Context, listingID string, open bool) error {
	value := "0"
	if open {
		value = "1"
	}
	return r.client.Set(ctx, stateKey(listingID), value, 0).Err()
}

func (r *RedisStateCache) GetListingOpen(ctx context.Context, listingID string) (bool, bool, error) {
	result, err := r.client.Get(ctx, stateKey(listingID)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, false, nil
		}
		return false, false, err
	}
	return result == "1", true, nil
}
