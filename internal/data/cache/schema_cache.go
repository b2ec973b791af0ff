package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

// SchemaCache holds the metadata schema of each content type. Get reports ok=false on a miss.
type SchemaCache interface {
	Get(ctx context.Context, contentType types.ContentType) ([]*types.MetadataSchema, bool, error)
	Set(ctx context.Context, contentType types.ContentType, defs []*types.MetadataSchema) error
	Invalidate(ctx context.Context, contentType types.ContentType) error
}

type memorySchemaCache struct {
	mu      sync.RWMutex
	entries map[types.ContentType][]*types.MetadataSchema
}

func NewMemorySchemaCache() SchemaCache {
	return &memorySchemaCache{entries: map[types.ContentType][]*types.MetadataSchema{}}
}

func (c *memorySchemaCache) Get(ctx context.Context, contentType types.ContentType) ([]*types.MetadataSchema, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	defs, ok := c.entries[contentType]
	if !ok {
		return nil, false, nil
	}
	return cloneDefs(defs), true, nil
}

func (c *memorySchemaCache) Set(ctx context.Context, contentType types.ContentType, defs []*types.MetadataSchema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[contentType] = cloneDefs(defs)
	return nil
}

func (c *memorySchemaCache) Invalidate(ctx context.Context, contentType types.ContentType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, contentType)
	return nil
}

// Callers may mutate what they get back; the cache keeps its own copies.
func cloneDefs(defs []*types.MetadataSchema) []*types.MetadataSchema {
	out := make([]*types.MetadataSchema, 0, len(defs))
	for _, d := range defs {
		if d == nil {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out
}

const redisKeyPrefix = "schema:"

type redisSchemaCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewRedisSchemaCache stores each type's schema as JSON under schema:<type>. A zero ttl keeps
// entries until they are invalidated.
func NewRedisSchemaCache(rdb *goredis.Client, ttl time.Duration, baseLog *logger.Logger) SchemaCache {
	return &redisSchemaCache{rdb: rdb, ttl: ttl, log: baseLog.With("cache", "RedisSchemaCache")}
}

func RedisKey(contentType types.ContentType) string {
	return redisKeyPrefix + string(contentType)
}

func (c *redisSchemaCache) Get(ctx context.Context, contentType types.ContentType) ([]*types.MetadataSchema, bool, error) {
	raw, err := c.rdb.Get(ctx, RedisKey(contentType)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var defs []*types.MetadataSchema
	if err := json.Unmarshal(raw, &defs); err != nil {
		c.log.Warn("dropping undecodable schema cache entry", "content_type", contentType, "error", err)
		_ = c.rdb.Del(ctx, RedisKey(contentType)).Err()
		return nil, false, nil
	}
	return defs, true, nil
}

func (c *redisSchemaCache) Set(ctx context.Context, contentType types.ContentType, defs []*types.MetadataSchema) error {
	if defs == nil {
		defs = []*types.MetadataSchema{}
	}
	raw, err := json.Marshal(defs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, RedisKey(contentType), raw, c.ttl).Err()
}

func (c *redisSchemaCache) Invalidate(ctx context.Context, contentType types.ContentType) error {
	return c.rdb.Del(ctx, RedisKey(contentType)).Err()
}
