package leader

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const leaderKey = "bidmarket_sweep_leader"

// Both scripts act only while the lease still belongs to this instance, so a
// takeover after expiry is never renewed or deleted from here.
const (
	renewScript = `
        if redis.call("GET", KEYS[1]) == ARGV[1] then
            return redis.call("EXPIRE", KEYS[1], ARGV[2])
        end
        return 0
    `
	releaseScript = `
        if redis.call("GET", KEYS[1]) == ARGV[1] then
            return redis.call("DEL", KEYS[1])
        end
        return 0
    `
)

// RedisLeaderElection keeps a single instance responsible for the resolution
// sweep when several API instances share one store. The lease is a SetNX key
// with a TTL, renewed at a third of the TTL while held. The renewal loop
// stops as soon as the lease is lost or released; a later BecomeLeader
// contends again from scratch.
type RedisLeaderElection struct {
	client *redis.Client
	ttl    time.Duration

	mu        sync.Mutex
	stopRenew chan struct{}
}

func NewRedisLeaderElection(client *redis.Client, ttl time.Duration) *RedisLeaderElection {
	return &RedisLeaderElection{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisLeaderElection) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	acquired, err := r.client.SetNX(ctx, leaderKey, instanceID, r.ttl).Result()
	if err != nil || !acquired {
		return false, err
	}

	r.mu.Lock()
	if r.stopRenew == nil {
		r.stopRenew = make(chan struct{})
		go r.renewLease(instanceID, r.stopRenew)
	}
	r.mu.Unlock()
	return true, nil
}

func (r *RedisLeaderElection) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	holder, err := r.client.Get(ctx, leaderKey).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return holder == instanceID, nil
}

// ReleaseLeadership stops the renewal loop first, then deletes the lease if
// this instance still holds it.
func (r *RedisLeaderElection) ReleaseLeadership(ctx context.Context, instanceID string) error {
	r.mu.Lock()
	if r.stopRenew != nil {
		close(r.stopRenew)
		r.stopRenew = nil
	}
	r.mu.Unlock()

	_, err := r.client.Eval(ctx, releaseScript, []string{leaderKey}, instanceID).Result()
	return err
}

func (r *RedisLeaderElection) renewLease(instanceID string, stop chan struct{}) {
	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			result, err := r.client.Eval(ctx, renewScript, []string{leaderKey},
				instanceID, int(r.ttl.Seconds())).Result()
			cancel()

			renewed, ok := result.(int64)
			if err != nil || !ok || renewed == 0 {
				// Lease expired or was taken over. The sweeper contends
				// again on its next tick; clear the channel so a later
				// BecomeLeader can start a fresh loop.
				r.mu.Lock()
				if r.stopRenew == stop {
					r.stopRenew = nil
				}
				r.mu.Unlock()
				return
			}
		}
	}
}
