package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quizhub-service/internal/domain"
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmissionLocker implements app.SubmissionLocker with SET NX PX, so the
// lock is shared by every instance using the same Redis.
type SubmissionLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSubmissionLocker(client *redis.Client, ttl time.Duration) *SubmissionLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SubmissionLocker{client: client, ttl: ttl}
}

func (l *SubmissionLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(key), token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}
	return func() {
		// The TTL frees the key if this fails.
		_ = releaseScript.Run(context.Background(), l.client, []string{l.key(key)}, token).Err()
	}, nil
}

func (l *SubmissionLocker) key(key string) string {
	return "lock:" + key
}
