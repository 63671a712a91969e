package articles

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	articleKeyPrefix = "warta:article:"
	viewsKeyPrefix   = "warta:article:views:"
)

// Cache is a read-through cache for single-article fetches plus a counter
// buffer for article views. Both tolerate redis being down: cache misses
// and dropped counts, never request failures.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with the given entry TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached article, or nil on a miss.
func (c *Cache) Get(ctx context.Context, id int64) *Article {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := c.client.Get(ctx, articleKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var article Article
	if err := json.Unmarshal(payload, &article); err != nil {
		return nil
	}
	return &article
}

// Set stores the article under its id.
func (c *Cache) Set(ctx context.Context, article *Article) {
	if c == nil || c.client == nil || article == nil {
		return
	}
	payload, err := json.Marshal(article)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, articleKey(article.ID), payload, c.ttl).Err()
}

// Invalidate drops the cached entry after a mutation.
func (c *Cache) Invalidate(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, articleKey(id)).Err()
}

// IncrView buffers one article view in redis for the flush job.
func (c *Cache) IncrView(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Incr(ctx, viewsKeyPrefix+strconv.FormatInt(id, 10)).Err()
}

// DrainViews atomically collects and resets all buffered view counters.
func (c *Cache) DrainViews(ctx context.Context) (map[int64]int64, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	counts := make(map[int64]int64)
	iter := c.client.Scan(ctx, 0, viewsKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := c.client.GetDel(ctx, key).Result()
		if err != nil {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(key, viewsKeyPrefix), 10, 64)
		if err != nil {
			continue
		}
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || count <= 0 {
			continue
		}
		counts[id] += count
	}
	if err := iter.Err(); err != nil {
		return counts, fmt.Errorf("articles: drain views: %w", err)
	}
	return counts, nil
}

func articleKey(id int64) string {
	return articleKeyPrefix + strconv.FormatInt(id, 10)
}
