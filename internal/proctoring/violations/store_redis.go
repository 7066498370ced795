package violations

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"proctor/internal/proctoring/models"
)

const (
	redisListPrefix   = "proctor:violations:"
	redisCountsPrefix = "proctor:violation_counts:"
	defaultRedisTTL   = 7 * 24 * time.Hour
)

// RedisStore keeps a session's violations as a JSON list plus a per-type
// count hash, both expiring after ttl.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Append(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal violation record: %w", err)
	}
	listKey := redisListPrefix + rec.SessionID
	countsKey := redisCountsPrefix + rec.SessionID

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, listKey, payload)
	pipe.HIncrBy(ctx, countsKey, string(rec.Type), 1)
	pipe.Expire(ctx, listKey, s.ttl)
	pipe.Expire(ctx, countsKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append violation to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	raw, err := s.client.LRange(ctx, redisListPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list violations from redis: %w", err)
	}
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode violation record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// CountsBySession returns the per-type totals without decoding the list.
func (s *RedisStore) CountsBySession(ctx context.Context, sessionID string) (map[models.ViolationType]int, error) {
	raw, err := s.client.HGetAll(ctx, redisCountsPrefix+sessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("read violation counts from redis: %w", err)
	}
	out := make(map[models.ViolationType]int, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("decode violation count for %s: %w", k, err)
		}
		out[models.ViolationType(k)] = n
	}
	return out, nil
}
