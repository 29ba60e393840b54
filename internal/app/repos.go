package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

type Repos struct {
	Catalog repos.TaskCatalog

	QueueState repos.QueueStateRepo
	QueueItem  repos.QueueItemRepo
	TaskState  repos.TaskStateRepo

	ThemeProgress  repos.ThemeProgressRepo
	CourseProgress repos.CourseProgressRepo
	DailySolve     repos.DailySolveRepo

	BadgeRule repos.BadgeRuleRepo
	UserBadge repos.UserBadgeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Catalog: repos.NewTaskCatalog(db, log),

		QueueState: repos.NewQueueStateRepo(db, log),
		QueueItem:  repos.NewQueueItemRepo(db, log),
		TaskState:  repos.NewTaskStateRepo(db, log),

		ThemeProgress:  repos.NewThemeProgressRepo(db, log),
		CourseProgress: repos.NewCourseProgressRepo(db, log),
		DailySolve:     repos.NewDailySolveRepo(db, log),

		BadgeRule: repos.NewBadgeRuleRepo(db, log),
		UserBadge: repos.NewUserBadgeRepo(db, log),
	}
}
