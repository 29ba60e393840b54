package db

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

func TestPostgresConnStringEscapesCredentials(t *testing.T) {
	pc := PostgresConfig{Host: "db", Port: "5432", User: "lq", Password: "p@ss/word", Database: "learnqueue", SSLMode: "require"}
	got := pc.ConnString()
	want := "postgres://lq:p%40ss%2Fword@db:5432/learnqueue?sslmode=require"
	if got != want {
		t.Fatalf("conn string: want=%s got=%s", want, got)
	}
	pc.DSN = "postgres://override"
	if pc.ConnString() != "postgres://override" {
		t.Fatalf("DSN should win over fields")
	}
}

func TestOpenPostgresRejectsMalformedDSN(t *testing.T) {
	_, err := OpenPostgres("postgres://lq@db:notaport/learnqueue", GormConfig(nil))
	if err == nil || !strings.Contains(err.Error(), "invalid postgres dsn") {
		t.Fatalf("want invalid dsn error got=%v", err)
	}
}

func TestSQLiteStoreMigratesAndCloses(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := OpenSQLite(dsn, GormConfig(nil))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := &SQLiteService{gormStore{db: gdb, log: nopLogger(t), dialect: "sqlite"}}
	if err := s.AutoMigrateAll(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"task", "queue_item", "queue_state", "user_badge"} {
		if !s.DB().Migrator().HasTable(table) {
			t.Fatalf("table %s missing after migrate", table)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func nopLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}
