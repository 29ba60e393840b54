package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

// gormStore is the driver-independent half of Service.
type gormStore struct {
	db      *gorm.DB
	log     *logger.Logger
	dialect string
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables", "dialect", s.dialect)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "dialect", s.dialect, "error", err)
		return err
	}
	return nil
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GormConfig routes gorm's warnings and slow queries through log. A nil log silences gorm.
func GormConfig(log *logger.Logger) *gorm.Config {
	cfg := &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true}
	if log == nil {
		cfg.Logger = gormLogger.Discard
		return cfg
	}
	cfg.Logger = gormLogger.New(gormWriter{log: log.With("component", "gorm")}, gormLogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormLogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	return cfg
}

type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn(fmt.Sprintf(format, args...))
}
