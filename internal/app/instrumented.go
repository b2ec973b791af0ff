package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/philoatlas-backend/internal/data/cache"
	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/observability"
	"github.com/yungbote/philoatlas-backend/internal/services"
)

type instrumentedSchemaCache struct {
	backend string
	inner   cache.SchemaCache
	metrics *observability.Metrics
}

func instrumentSchemaCache(backend string, inner cache.SchemaCache, metrics *observability.Metrics) cache.SchemaCache {
	if inner == nil || metrics == nil {
		return inner
	}
	return &instrumentedSchemaCache{backend: backend, inner: inner, metrics: metrics}
}

func (c *instrumentedSchemaCache) Get(ctx context.Context, contentType types.ContentType) ([]*types.MetadataSchema, bool, error) {
	start := time.Now()
	defs, ok, err := c.inner.Get(ctx, contentType)
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case ok:
		result = "hit"
	}
	c.metrics.ObserveSchemaCache(c.backend, "get", result, time.Since(start))
	return defs, ok, err
}

func (c *instrumentedSchemaCache) Set(ctx context.Context, contentType types.ContentType, defs []*types.MetadataSchema) error {
	start := time.Now()
	err := c.inner.Set(ctx, contentType, defs)
	c.metrics.ObserveSchemaCache(c.backend, "set", okOrError(err), time.Since(start))
	return err
}

func (c *instrumentedSchemaCache) Invalidate(ctx context.Context, contentType types.ContentType) error {
	start := time.Now()
	err := c.inner.Invalidate(ctx, contentType)
	c.metrics.ObserveSchemaCache(c.backend, "invalidate", okOrError(err), time.Since(start))
	return err
}

func okOrError(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type instrumentedGraphMirror struct {
	inner   services.ContentGraphMirror
	metrics *observability.Metrics
}

func instrumentGraphMirror(inner services.ContentGraphMirror, metrics *observability.Metrics) services.ContentGraphMirror {
	if inner == nil || metrics == nil {
		return inner
	}
	return &instrumentedGraphMirror{inner: inner, metrics: metrics}
}

func (g *instrumentedGraphMirror) SyncNeighborhood(ctx context.Context, center *types.Content, related []*types.RelatedContent) error {
	err := g.inner.SyncNeighborhood(ctx, center, related)
	g.metrics.ObserveGraphSync("sync_neighborhood", err)
	return err
}

func (g *instrumentedGraphMirror) Link(ctx context.Context, a, b *types.Content) error {
	err := g.inner.Link(ctx, a, b)
	g.metrics.ObserveGraphSync("link", err)
	return err
}

func (g *instrumentedGraphMirror) Delete(ctx context.Context, ids []uuid.UUID) error {
	err := g.inner.Delete(ctx, ids)
	g.metrics.ObserveGraphSync("delete", err)
	return err
}
