package attempt

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "failed_attempts:"

// RedisLedger stores failed attempts in a per-identifier sorted set with
// the attempt timestamp as score. Same contract as the Postgres
// repository; selected via RATE_LIMIT_STORE.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

// Record appends one failed attempt for the identifier.
func (l *RedisLedger) Record(ctx context.Context, identifier string) error {
	err := l.client.ZAdd(ctx, redisKeyPrefix+identifier, redis.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: uuid.New().String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("%w: record attempt: %v", ErrInternal, err)
	}

	return nil
}

// CountSince returns the number of failed attempts for the identifier
// with a timestamp at or after since.
func (l *RedisLedger) CountSince(ctx context.Context, identifier string, since time.Time) (int, error) {
	min := strconv.FormatInt(since.UnixNano(), 10)
	count, err := l.client.ZCount(ctx, redisKeyPrefix+identifier, min, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("%w: count attempts: %v", ErrInternal, err)
	}

	return int(count), nil
}
