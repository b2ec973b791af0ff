package cache

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

func sampleDefs() []*types.MetadataSchema {
	return []*types.MetadataSchema{
		{ContentType: types.ContentTypePhilosopher, Key: "birth", DisplayName: "Born", DataType: types.DataTypeNumber, DisplayOrder: 1},
		{ContentType: types.ContentTypePhilosopher, Key: "school", DisplayName: "School", DataType: types.DataTypeString, DisplayOrder: 2},
	}
}

func exerciseCache(t *testing.T, c SchemaCache) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, types.ContentTypePhilosopher); err != nil || ok {
		t.Fatalf("Get on empty cache: ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, types.ContentTypePhilosopher, sampleDefs()); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, types.ContentTypePhilosopher)
	if err != nil || !ok || len(got) != 2 {
		t.Fatalf("Get after Set: got=%v ok=%v err=%v", got, ok, err)
	}
	if got[0].Key != "birth" || got[0].DataType != types.DataTypeNumber {
		t.Fatalf("Get after Set: first entry=%+v", got[0])
	}

	if err := c.Set(ctx, types.ContentTypeTerm, nil); err != nil {
		t.Fatalf("Set(empty): %v", err)
	}
	got, ok, err = c.Get(ctx, types.ContentTypeTerm)
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("Get(empty): got=%v ok=%v err=%v", got, ok, err)
	}

	if err := c.Invalidate(ctx, types.ContentTypePhilosopher); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, err := c.Get(ctx, types.ContentTypePhilosopher); err != nil || ok {
		t.Fatalf("Get after Invalidate: ok=%v err=%v", ok, err)
	}
}

func TestMemorySchemaCache(t *testing.T) {
	exerciseCache(t, NewMemorySchemaCache())
}

func TestMemorySchemaCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySchemaCache()
	if err := c.Set(ctx, types.ContentTypePhilosopher, sampleDefs()); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, _, _ := c.Get(ctx, types.ContentTypePhilosopher)
	got[0].Key = "mutated"

	again, _, _ := c.Get(ctx, types.ContentTypePhilosopher)
	if again[0].Key != "birth" {
		t.Fatalf("cached entry was mutated through a returned slice: key=%q", again[0].Key)
	}
}

func TestRedisSchemaCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis cache tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	for _, ct := range []types.ContentType{types.ContentTypePhilosopher, types.ContentTypeTerm} {
		if err := rdb.Del(ctx, RedisKey(ct)).Err(); err != nil {
			t.Fatalf("Del: %v", err)
		}
	}
	exerciseCache(t, NewRedisSchemaCache(rdb, time.Minute, logger.Nop()))
}

func TestRedisKey(t *testing.T) {
	if got := RedisKey(types.ContentTypeQuestion); got != "schema:question" {
		t.Fatalf("RedisKey = %q", got)
	}
}
