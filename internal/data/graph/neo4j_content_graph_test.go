package graph

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

func TestContentGraphWithoutClientIsNoop(t *testing.T) {
	g := NewContentGraph(nil, logger.Nop())
	ctx := context.Background()

	a := &types.Content{ID: uuid.New(), Title: "Plato", Type: types.ContentTypePhilosopher}
	b := &types.Content{ID: uuid.New(), Title: "Justice", Type: types.ContentTypeTerm}

	if err := g.SyncNeighborhood(ctx, a, []*types.RelatedContent{{ID: b.ID, Title: b.Title, Type: b.Type}}); err != nil {
		t.Fatalf("SyncNeighborhood: %v", err)
	}
	if err := g.Link(ctx, a, b); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := g.Delete(ctx, []uuid.UUID{a.ID}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var nilGraph *ContentGraph
	if err := nilGraph.Link(ctx, a, b); err != nil {
		t.Fatalf("Link on nil graph: %v", err)
	}
}

func TestContentNode(t *testing.T) {
	id := uuid.New()
	n := contentNode(id, "Justice", types.ContentTypeTerm, "now")
	if n["id"] != id.String() || n["type"] != "term" || n["title"] != "Justice" {
		t.Fatalf("contentNode = %v", n)
	}
}
