package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnqueue-backend/internal/data/repos/learning"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

type TaskCatalog = learning.TaskCatalog

type QueueStateRepo = learning.QueueStateRepo
type QueueItemRepo = learning.QueueItemRepo

type TaskStateRepo = learning.TaskStateRepo
type ThemeProgressRepo = learning.ThemeProgressRepo
type CourseProgressRepo = learning.CourseProgressRepo
type DailySolveRepo = learning.DailySolveRepo

type BadgeRuleRepo = learning.BadgeRuleRepo
type UserBadgeRepo = learning.UserBadgeRepo

func NewTaskCatalog(db *gorm.DB, baseLog *logger.Logger) TaskCatalog {
	return learning.NewTaskCatalog(db, baseLog)
}

func NewQueueStateRepo(db *gorm.DB, baseLog *logger.Logger) QueueStateRepo {
	return learning.NewQueueStateRepo(db, baseLog)
}
func NewQueueItemRepo(db *gorm.DB, baseLog *logger.Logger) QueueItemRepo {
	return learning.NewQueueItemRepo(db, baseLog)
}

func NewTaskStateRepo(db *gorm.DB, baseLog *logger.Logger) TaskStateRepo {
	return learning.NewTaskStateRepo(db, baseLog)
}
func NewThemeProgressRepo(db *gorm.DB, baseLog *logger.Logger) ThemeProgressRepo {
	return learning.NewThemeProgressRepo(db, baseLog)
}
func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	return learning.NewCourseProgressRepo(db, baseLog)
}
func NewDailySolveRepo(db *gorm.DB, baseLog *logger.Logger) DailySolveRepo {
	return learning.NewDailySolveRepo(db, baseLog)
}

func NewBadgeRuleRepo(db *gorm.DB, baseLog *logger.Logger) BadgeRuleRepo {
	return learning.NewBadgeRuleRepo(db, baseLog)
}
func NewUserBadgeRepo(db *gorm.DB, baseLog *logger.Logger) UserBadgeRepo {
	return learning.NewUserBadgeRepo(db, baseLog)
}
