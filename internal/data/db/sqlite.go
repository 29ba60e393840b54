package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/learnqueue-backend/internal/platform/envutil"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

// SQLiteService backs local development. SQLite serializes writers, so the pool is
// capped at one connection and row locks degrade to database-level locking.
type SQLiteService struct {
	gormStore
}

func NewSQLiteService(logg *logger.Logger) (*SQLiteService, error) {
	serviceLog := logg.With("service", "SQLiteService")

	path := envutil.String("SQLITE_PATH", "file:learnqueue.db?_busy_timeout=5000&_journal_mode=WAL")
	db, err := OpenSQLite(path, GormConfig(serviceLog))
	if err != nil {
		return nil, err
	}

	serviceLog.Info("Opened SQLite", "path", path)
	return &SQLiteService{gormStore{db: db, log: serviceLog, dialect: "sqlite"}}, nil
}

// OpenSQLite opens dsn with a single shared connection.
func OpenSQLite(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
