package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisThrottle struct {
	client *redis.Client
	policy Policy
	prefix string
}

func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedisThrottle(client *redis.Client, policy Policy) *RedisThrottle {
	return &RedisThrottle{client: client, policy: policy, prefix: "login"}
}

func (t *RedisThrottle) failKey(id string) string {
	return fmt.Sprintf("%s:fail:%s", t.prefix, id)
}

func (t *RedisThrottle) lockKey(id string) string {
	return fmt.Sprintf("%s:lock:%s", t.prefix, id)
}

func (t *RedisThrottle) Locked(ctx context.Context, id string) (time.Duration, error) {
	ttl, err := t.client.PTTL(ctx, t.lockKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis pttl failed: %w", err)
	}
	// -2 means no key, -1 a key without expiry; neither is an active lock
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (t *RedisThrottle) Fail(ctx context.Context, id string) (time.Duration, error) {
	key := t.failKey(id)

	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis record failure: %w", err)
	}

	lock := t.policy.LockFor(incr.Val())
	if lock > 0 {
		if err := t.client.Set(ctx, t.lockKey(id), incr.Val(), lock).Err(); err != nil {
			return 0, fmt.Errorf("redis set lock: %w", err)
		}
	}
	return lock, nil
}

func (t *RedisThrottle) Reset(ctx context.Context, id string) error {
	if err := t.client.Del(ctx, t.failKey(id), t.lockKey(id)).Err(); err != nil {
		return fmt.Errorf("redis reset: %w", err)
	}
	return nil
}

func (t *RedisThrottle) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}
