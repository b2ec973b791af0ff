package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/philoatlas-backend/internal/clients/redis"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
	"github.com/yungbote/philoatlas-backend/internal/platform/neo4jdb"
)

// Clients holds optional external connections. Either field may be nil when unconfigured.
type Clients struct {
	Redis *goredis.Client
	Neo4j *neo4jdb.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	graph, err := neo4jdb.New(log, cfg.Neo4j)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}

	return Clients{Redis: rdb, Neo4j: graph}, nil
}

func (c Clients) Close(ctx context.Context) {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}
