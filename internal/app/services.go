package app

import (
	"github.com/yungbote/philoatlas-backend/internal/data/aggregates"
	"github.com/yungbote/philoatlas-backend/internal/data/cache"
	"github.com/yungbote/philoatlas-backend/internal/data/graph"
	"github.com/yungbote/philoatlas-backend/internal/observability"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
	"github.com/yungbote/philoatlas-backend/internal/services"
)

type Services struct {
	Auth           services.AuthService
	MetadataSchema services.MetadataSchemaService
	Content        services.ContentService
}

func wireSchemaCache(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics) cache.SchemaCache {
	if clients.Redis != nil {
		log.Info("Using redis schema cache", "ttl", cfg.SchemaCacheTTL.String())
		return instrumentSchemaCache("redis", cache.NewRedisSchemaCache(clients.Redis, cfg.SchemaCacheTTL, log), metrics)
	}
	log.Info("Using in-memory schema cache")
	return instrumentSchemaCache("memory", cache.NewMemorySchemaCache(), metrics)
}

func wireGraphMirror(log *logger.Logger, clients Clients, metrics *observability.Metrics) services.ContentGraphMirror {
	if clients.Neo4j == nil {
		log.Info("Neo4j not configured, relationship mirror disabled")
		return nil
	}
	return instrumentGraphMirror(graph.NewContentGraph(clients.Neo4j, log), metrics)
}

func wireServices(log *logger.Logger, cfg Config, tx aggregates.TxRunner, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	schemaService := services.NewMetadataSchemaService(
		log,
		tx,
		repos.MetadataSchema,
		repos.MetadataEntry,
		wireSchemaCache(log, cfg, clients, metrics),
	)
	contentService := services.NewContentService(
		log,
		tx,
		repos.Content,
		repos.MetadataEntry,
		repos.ContentRelationship,
		schemaService,
		wireGraphMirror(log, clients, metrics),
	)
	authService := services.NewAuthService(log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)

	return Services{
		Auth:           authService,
		MetadataSchema: schemaService,
		Content:        contentService,
	}
}
