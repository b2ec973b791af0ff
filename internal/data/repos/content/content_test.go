package content

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/philoatlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
)

func TestContentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewContentRepo(db, testutil.Logger(t))

	rows, err := repo.Create(dbc, []*types.Content{
		{Title: "Plato", Type: types.ContentTypePhilosopher, Body: "b", Description: "d"},
		{Title: "Aristotle", Type: types.ContentTypePhilosopher},
		{Title: "Justice", Type: types.ContentTypeTerm},
		{Title: "100%_sure", Type: types.ContentTypeQuestion},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, r := range rows {
		if r.ID == uuid.Nil {
			t.Fatalf("Create: expected id to be assigned")
		}
	}
	plato := rows[0]

	got, err := repo.GetByID(dbc, plato.ID)
	if err != nil || got == nil || got.Title != "Plato" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", got, err)
	}

	ids, err := repo.ExistingIDs(dbc, []uuid.UUID{plato.ID, uuid.New()})
	if err != nil || len(ids) != 1 || ids[0] != plato.ID {
		t.Fatalf("ExistingIDs: ids=%v err=%v", ids, err)
	}

	page, total, err := repo.List(dbc, ListFilter{Type: types.ContentTypePhilosopher, Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(page) != 1 || page[0].Title != "Aristotle" {
		t.Fatalf("List: total=%d page=%+v", total, page)
	}
	page, _, err = repo.List(dbc, ListFilter{Type: types.ContentTypePhilosopher, Offset: 1, Limit: 1})
	if err != nil || len(page) != 1 || page[0].Title != "Plato" {
		t.Fatalf("List(offset): page=%+v err=%v", page, err)
	}

	page, total, err = repo.List(dbc, ListFilter{Search: "PLA"})
	if err != nil || total != 1 || page[0].ID != plato.ID {
		t.Fatalf("List(search): total=%d err=%v", total, err)
	}
	page, total, err = repo.List(dbc, ListFilter{Search: "%"})
	if err != nil || total != 1 || page[0].Title != "100%_sure" {
		t.Fatalf("List(search literal %%): total=%d err=%v", total, err)
	}
	_, total, err = repo.List(dbc, ListFilter{Search: "zzz"})
	if err != nil || total != 0 {
		t.Fatalf("List(no match): total=%d err=%v", total, err)
	}

	if err := repo.UpdateFields(dbc, plato.ID, map[string]any{"title": "Plato of Athens"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ = repo.GetByID(dbc, plato.ID)
	if got.Title != "Plato of Athens" {
		t.Fatalf("UpdateFields: title=%q", got.Title)
	}

	if err := repo.FullDeleteByIDs(dbc, []uuid.UUID{plato.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if got, _ := repo.GetByID(dbc, plato.ID); got != nil {
		t.Fatalf("FullDeleteByIDs: expected row gone")
	}
}

func TestTitleMatch(t *testing.T) {
	cases := []struct {
		dialect, search, cond, pattern string
	}{
		{"postgres", "Être_%", `title ILIKE ? ESCAPE '\'`, `%Être\_\%%`},
		{"sqlite", "PLATO", `LOWER(title) LIKE ? ESCAPE '\'`, "%plato%"},
		{"sqlite", "Être", `LOWER(title) LIKE ? ESCAPE '\'`, "%être%"},
	}
	for _, tc := range cases {
		cond, pattern := titleMatch(tc.dialect, tc.search)
		if cond != tc.cond || pattern != tc.pattern {
			t.Fatalf("titleMatch(%q, %q) = %q, %q", tc.dialect, tc.search, cond, pattern)
		}
	}
}

func TestContentRepoSearchFoldsASCIICase(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, db)}
	repo := NewContentRepo(db, testutil.Logger(t))

	if _, err := repo.Create(dbc, []*types.Content{
		{Title: "Being and Time", Type: types.ContentTypeTerm},
		{Title: "being-in-the-world", Type: types.ContentTypeTerm},
		{Title: "Nothingness", Type: types.ContentTypeTerm},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	page, total, err := repo.List(dbc, ListFilter{Search: "BeInG"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(page) != 2 || page[0].Title != "Being and Time" || page[1].Title != "being-in-the-world" {
		t.Fatalf("List(search): total=%d page=%+v", total, page)
	}
}

func TestMetadataEntryRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMetadataEntryRepo(db, testutil.Logger(t))

	plato := testutil.SeedContent(t, ctx, tx, types.ContentTypePhilosopher, "Plato", map[string]string{"era": "Ancient"})
	justice := testutil.SeedContent(t, ctx, tx, types.ContentTypeTerm, "Justice", map[string]string{"origin": "Greek"})

	rows, err := repo.ReplaceForContent(dbc, plato.ID, map[string]string{"birth": "-428", "school": "Academy"})
	if err != nil || len(rows) != 2 {
		t.Fatalf("ReplaceForContent: rows=%d err=%v", len(rows), err)
	}
	got, err := repo.GetByContentIDs(dbc, []uuid.UUID{plato.ID})
	if err != nil || len(got) != 2 || got[0].Key != "birth" || got[1].Key != "school" {
		t.Fatalf("GetByContentIDs: got=%+v err=%v", got, err)
	}

	keys, err := repo.DistinctKeys(dbc, "")
	if err != nil || len(keys) != 3 {
		t.Fatalf("DistinctKeys(all): keys=%v err=%v", keys, err)
	}
	keys, err = repo.DistinctKeys(dbc, types.ContentTypeTerm)
	if err != nil || len(keys) != 1 || keys[0] != "origin" {
		t.Fatalf("DistinctKeys(term): keys=%v err=%v", keys, err)
	}

	if err := repo.FullDeleteByContentIDs(dbc, []uuid.UUID{plato.ID, justice.ID}); err != nil {
		t.Fatalf("FullDeleteByContentIDs: %v", err)
	}
	got, _ = repo.GetByContentIDs(dbc, []uuid.UUID{plato.ID, justice.ID})
	if len(got) != 0 {
		t.Fatalf("FullDeleteByContentIDs: %d rows remain", len(got))
	}
}

func TestContentRelationshipRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewContentRelationshipRepo(db, testutil.Logger(t))

	plato := testutil.SeedContent(t, ctx, tx, types.ContentTypePhilosopher, "Plato", nil)
	justice := testutil.SeedContent(t, ctx, tx, types.ContentTypeTerm, "Justice", nil)
	good := testutil.SeedContent(t, ctx, tx, types.ContentTypeQuestion, "What is the good?", nil)

	n, err := repo.CreatePairs(dbc, []Pair{{A: plato.ID, B: justice.ID}, {A: plato.ID, B: good.ID}, {A: plato.ID, B: plato.ID}})
	if err != nil || n != 4 {
		t.Fatalf("CreatePairs: n=%d err=%v", n, err)
	}
	n, err = repo.CreatePairs(dbc, []Pair{{A: justice.ID, B: plato.ID}})
	if err != nil || n != 0 {
		t.Fatalf("CreatePairs(duplicate): n=%d err=%v", n, err)
	}

	related, err := repo.GetRelatedContents(dbc, plato.ID, "")
	if err != nil || len(related) != 2 {
		t.Fatalf("GetRelatedContents: related=%+v err=%v", related, err)
	}
	related, err = repo.GetRelatedContents(dbc, plato.ID, types.ContentTypeTerm)
	if err != nil || len(related) != 1 || related[0].ID != justice.ID || related[0].Title != "Justice" {
		t.Fatalf("GetRelatedContents(term): related=%+v err=%v", related, err)
	}
	back, err := repo.GetRelatedContents(dbc, justice.ID, types.ContentTypePhilosopher)
	if err != nil || len(back) != 1 || back[0].ID != plato.ID {
		t.Fatalf("GetRelatedContents(reverse): related=%+v err=%v", back, err)
	}

	edges, err := repo.GetByContentIDs(dbc, []uuid.UUID{justice.ID})
	if err != nil || len(edges) != 2 {
		t.Fatalf("GetByContentIDs: edges=%d err=%v", len(edges), err)
	}

	if err := repo.FullDeleteByContentIDs(dbc, []uuid.UUID{justice.ID}); err != nil {
		t.Fatalf("FullDeleteByContentIDs: %v", err)
	}
	related, _ = repo.GetRelatedContents(dbc, plato.ID, "")
	if len(related) != 1 || related[0].ID != good.ID {
		t.Fatalf("FullDeleteByContentIDs: related=%+v", related)
	}
}

func TestMetadataSchemaRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMetadataSchemaRepo(db, testutil.Logger(t))

	rows, err := repo.Create(dbc, []*types.MetadataSchema{
		{ContentType: types.ContentTypePhilosopher, Key: "school", DisplayName: "School", DataType: types.DataTypeString, DisplayOrder: 2},
		{ContentType: types.ContentTypePhilosopher, Key: "birth", DisplayName: "Born", DataType: types.DataTypeNumber, DisplayOrder: 1},
		{ContentType: types.ContentTypeTerm, Key: "origin", DisplayName: "Origin", DataType: types.DataTypeString},
	})
	if err != nil || len(rows) != 3 {
		t.Fatalf("Create: err=%v", err)
	}

	n, err := repo.Count(dbc)
	if err != nil || n != 3 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}

	byType, err := repo.GetByType(dbc, types.ContentTypePhilosopher)
	if err != nil || len(byType) != 2 || byType[0].Key != "birth" {
		t.Fatalf("GetByType: rows=%+v err=%v", byType, err)
	}

	got, err := repo.GetByTypeAndKey(dbc, types.ContentTypeTerm, "origin")
	if err != nil || got == nil || got.ID != rows[2].ID {
		t.Fatalf("GetByTypeAndKey: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByTypeAndKey(dbc, types.ContentTypeQuestion, "origin"); err != nil || got != nil {
		t.Fatalf("GetByTypeAndKey(missing): got=%v err=%v", got, err)
	}

	got.DisplayName = "Etymology"
	got.IsRequired = true
	if err := repo.Update(dbc, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, err := repo.GetByID(dbc, got.ID)
	if err != nil || again == nil || again.DisplayName != "Etymology" || !again.IsRequired {
		t.Fatalf("GetByID after Update: got=%+v err=%v", again, err)
	}

	if _, err := repo.Create(dbc, []*types.MetadataSchema{{ContentType: types.ContentTypeTerm, Key: "origin", DisplayName: "dup", DataType: types.DataTypeString}}); err == nil {
		t.Fatalf("Create: expected unique violation on (content_type, key)")
	}

	if err := repo.FullDeleteByIDs(dbc, []uuid.UUID{rows[0].ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if n, _ := repo.Count(dbc); n != 2 {
		t.Fatalf("FullDeleteByIDs: count=%d", n)
	}
}
