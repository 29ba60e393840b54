package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/learnqueue-backend/internal/data/repos/testutil"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

func TestDailySolveRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDailySolveRepo(db, testutil.Logger(t))

	userID := uuid.New()
	for _, day := range []string{"2024-03-08", "2024-03-09", "2024-03-10", "2024-03-12"} {
		created, err := repo.CreateIfAbsent(dbc, userID, day)
		if err != nil || !created {
			t.Fatalf("CreateIfAbsent(%s): err=%v created=%v", day, err, created)
		}
	}
	created, err := repo.CreateIfAbsent(dbc, userID, "2024-03-10")
	if err != nil || created {
		t.Fatalf("CreateIfAbsent duplicate: err=%v created=%v", err, created)
	}

	days, err := repo.ListDaysDesc(dbc, userID, "", "2024-03-10")
	if err != nil {
		t.Fatalf("ListDaysDesc: %v", err)
	}
	if len(days) != 3 || days[0] != "2024-03-10" || days[2] != "2024-03-08" {
		t.Fatalf("ListDaysDesc unbounded: got=%v", days)
	}

	days, err = repo.ListDaysDesc(dbc, userID, "2024-03-08", "2024-03-12")
	if err != nil {
		t.Fatalf("ListDaysDesc: %v", err)
	}
	if len(days) != 3 || days[0] != "2024-03-12" || days[2] != "2024-03-09" {
		t.Fatalf("ListDaysDesc bounded: got=%v", days)
	}
}
