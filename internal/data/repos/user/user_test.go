package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/philoatlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{{Username: "diogenes", Password: "hash"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	got, err := repo.GetByUsername(dbc, "diogenes")
	if err != nil || got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByUsername: got=%v err=%v", got, err)
	}
	missing, err := repo.GetByUsername(dbc, "nobody")
	if err != nil || missing != nil {
		t.Fatalf("GetByUsername(missing): got=%v err=%v", missing, err)
	}

	exists, err := repo.UsernameExists(dbc, "diogenes")
	if err != nil || !exists {
		t.Fatalf("UsernameExists: exists=%v err=%v", exists, err)
	}
	exists, err = repo.UsernameExists(dbc, "nobody")
	if err != nil || exists {
		t.Fatalf("UsernameExists(missing): exists=%v err=%v", exists, err)
	}

	if _, err := repo.Create(dbc, []*types.User{{Username: "diogenes", Password: "other"}}); err == nil {
		t.Fatalf("Create: expected unique violation for duplicate username")
	}
}
