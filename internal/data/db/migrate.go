package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/learnqueue-backend/internal/domain"
)

// Service is the store handle the app layer wires regardless of driver.
type Service interface {
	DB() *gorm.DB
	AutoMigrateAll() error
	Close() error
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Course{},
		&types.Theme{},
		&types.Task{},

		&types.QueueState{},
		&types.QueueItem{},

		&types.TaskState{},
		&types.ThemeProgress{},
		&types.CourseProgress{},
		&types.DailySolve{},

		&types.BadgeRule{},
		&types.UserBadge{},
	)
}
