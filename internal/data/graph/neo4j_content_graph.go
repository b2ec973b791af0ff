package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
	"github.com/yungbote/philoatlas-backend/internal/platform/neo4jdb"
)

// ContentGraph mirrors content nodes and RELATED edges into Neo4j. A nil client turns every
// method into a no-op.
type ContentGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewContentGraph(client *neo4jdb.Client, baseLog *logger.Logger) *ContentGraph {
	return &ContentGraph{client: client, log: baseLog.With("graph", "ContentGraph")}
}

func (g *ContentGraph) enabled() bool {
	return g != nil && g.client != nil && g.client.Driver != nil
}

// SyncNeighborhood makes the graph around center match the given related set.
func (g *ContentGraph) SyncNeighborhood(ctx context.Context, center *types.Content, related []*types.RelatedContent) error {
	if !g.enabled() || center == nil || center.ID == uuid.Nil {
		return nil
	}
	return UpsertContentNeighborhood(ctx, g.client, g.log, center, related)
}

func (g *ContentGraph) Link(ctx context.Context, a, b *types.Content) error {
	if !g.enabled() || a == nil || b == nil {
		return nil
	}
	return UpsertContentLink(ctx, g.client, g.log, a, b)
}

func (g *ContentGraph) Delete(ctx context.Context, ids []uuid.UUID) error {
	if !g.enabled() || len(ids) == 0 {
		return nil
	}
	return DeleteContentNodes(ctx, g.client, g.log, ids)
}

func contentNode(id uuid.UUID, title string, t types.ContentType, now string) map[string]any {
	return map[string]any{
		"id":        id.String(),
		"title":     title,
		"type":      string(t),
		"synced_at": now,
	}
}

func ensureContentSchema(ctx context.Context, session neo4j.SessionWithContext, log *logger.Logger) {
	res, err := session.Run(ctx, `CREATE CONSTRAINT content_id_unique IF NOT EXISTS FOR (c:Content) REQUIRE c.id IS UNIQUE`, nil)
	if err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
		return
	}
	_, _ = res.Consume(ctx)
}

func runConsume(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func UpsertContentNeighborhood(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, center *types.Content, related []*types.RelatedContent) error {
	if client == nil || client.Driver == nil || center == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	node := contentNode(center.ID, center.Title, center.Type, now)
	others := make([]map[string]any, 0, len(related))
	for _, r := range related {
		if r == nil || r.ID == uuid.Nil || r.ID == center.ID {
			continue
		}
		others = append(others, contentNode(r.ID, r.Title, r.Type, now))
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)
	ensureContentSchema(ctx, session, log)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := runConsume(ctx, tx, `
MERGE (c:Content {id: $node.id})
SET c += $node
WITH c
OPTIONAL MATCH (c)-[e:RELATED]-()
DELETE e
`, map[string]any{"node": node}); err != nil {
			return nil, err
		}
		if len(others) == 0 {
			return nil, nil
		}
		return nil, runConsume(ctx, tx, `
MATCH (c:Content {id: $id})
UNWIND $others AS o
MERGE (x:Content {id: o.id})
SET x += o
MERGE (c)-[:RELATED]->(x)
MERGE (x)-[:RELATED]->(c)
`, map[string]any{"id": node["id"], "others": others})
	})
	return err
}

func UpsertContentLink(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, a, b *types.Content) error {
	if client == nil || client.Driver == nil || a == nil || b == nil || a.ID == b.ID {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)
	ensureContentSchema(ctx, session, log)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, `
MERGE (a:Content {id: $a.id})
SET a += $a
MERGE (b:Content {id: $b.id})
SET b += $b
MERGE (a)-[:RELATED]->(b)
MERGE (b)-[:RELATED]->(a)
`, map[string]any{
			"a": contentNode(a.ID, a.Title, a.Type, now),
			"b": contentNode(b.ID, b.Title, b.Type, now),
		})
	})
	return err
}

func DeleteContentNodes(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, ids []uuid.UUID) error {
	if client == nil || client.Driver == nil || len(ids) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil {
			raw = append(raw, id.String())
		}
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, runConsume(ctx, tx, `
MATCH (c:Content)
WHERE c.id IN $ids
DETACH DELETE c
`, map[string]any{"ids": raw})
	})
	if err != nil && log != nil {
		log.Warn("neo4j content delete failed", "error", err, "count", len(raw))
	}
	return err
}
