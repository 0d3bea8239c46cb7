package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/quizgrid/backend/internal/models"
)

const cacheKeyPrefix = "question:public:"

// Cache is a redis read-through cache of public question views. Concurrent
// fills for the same id set are collapsed with singleflight. A cache failure
// degrades to a direct store read, never to a request failure.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	logger *zap.Logger
}

// NewCache creates a question cache with the given entry TTL.
func NewCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

// GetPublic returns the public views for ids, filling misses through fill.
// Resolvable ids come back in input order; unresolvable ids are dropped.
func (c *Cache) GetPublic(ctx context.Context, ids []int64,
	fill func(ctx context.Context, ids []int64) ([]models.PublicQuestion, error)) ([]models.PublicQuestion, error) {

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKeyPrefix + strconv.FormatInt(id, 10)
	}

	hits := make(map[int64]models.PublicQuestion, len(ids))
	var missing []int64

	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("question cache read failed", zap.Error(err))
		missing = ids
	} else {
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var pq models.PublicQuestion
			if err := json.Unmarshal([]byte(raw), &pq); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			hits[ids[i]] = pq
		}
	}

	if len(missing) > 0 {
		loaded, err := c.fillMissing(ctx, missing, fill)
		if err != nil {
			return nil, err
		}
		for _, pq := range loaded {
			hits[pq.ID] = pq
		}
	}

	out := make([]models.PublicQuestion, 0, len(hits))
	for _, id := range ids {
		if pq, ok := hits[id]; ok {
			out = append(out, pq)
		}
	}
	return out, nil
}

func (c *Cache) fillMissing(ctx context.Context, missing []int64,
	fill func(ctx context.Context, ids []int64) ([]models.PublicQuestion, error)) ([]models.PublicQuestion, error) {

	result, err, _ := c.sf.Do(sfKey(missing), func() (interface{}, error) {
		loaded, err := fill(ctx, missing)
		if err != nil {
			return nil, err
		}
		pipe := c.rdb.Pipeline()
		for _, pq := range loaded {
			raw, err := json.Marshal(pq)
			if err != nil {
				continue
			}
			pipe.Set(ctx, cacheKeyPrefix+strconv.FormatInt(pq.ID, 10), raw, c.ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			c.logger.Warn("question cache write failed", zap.Error(err))
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.PublicQuestion), nil
}

func sfKey(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("fill:%s", strings.Join(parts, ","))
}
