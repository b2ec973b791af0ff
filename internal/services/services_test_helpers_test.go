package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/philoatlas-backend/internal/data/aggregates"
	"github.com/yungbote/philoatlas-backend/internal/data/cache"
	"github.com/yungbote/philoatlas-backend/internal/data/repos"
	"github.com/yungbote/philoatlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/philoatlas-backend/internal/domain"
)

type recordingGraph struct {
	mu      sync.Mutex
	synced  []uuid.UUID
	links   [][2]uuid.UUID
	deleted []uuid.UUID
}

func (g *recordingGraph) SyncNeighborhood(ctx context.Context, center *types.Content, related []*types.RelatedContent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.synced = append(g.synced, center.ID)
	return nil
}

func (g *recordingGraph) Link(ctx context.Context, a, b *types.Content) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.links = append(g.links, [2]uuid.UUID{a.ID, b.ID})
	return nil
}

func (g *recordingGraph) Delete(ctx context.Context, ids []uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, ids...)
	return nil
}

type testEnv struct {
	db      *gorm.DB
	cache   cache.SchemaCache
	graph   *recordingGraph
	schemas MetadataSchemaService
	content ContentService
	auth    AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := aggregates.NewGormTxRunner(db, log)

	schemaCache := cache.NewMemorySchemaCache()
	graph := &recordingGraph{}
	schemas := NewMetadataSchemaService(log, tx, repos.NewMetadataSchemaRepo(db, log), repos.NewMetadataEntryRepo(db, log), schemaCache)
	content := NewContentService(
		log,
		tx,
		repos.NewContentRepo(db, log),
		repos.NewMetadataEntryRepo(db, log),
		repos.NewContentRelationshipRepo(db, log),
		schemas,
		graph,
	)
	auth := NewAuthService(log, repos.NewUserRepo(db, log), "test-secret", 0)

	return &testEnv{db: db, cache: schemaCache, graph: graph, schemas: schemas, content: content, auth: auth}
}

func (e *testEnv) countRelationships(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&types.ContentRelationship{}).Count(&n).Error)
	return n
}
