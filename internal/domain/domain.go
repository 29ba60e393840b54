package domain

import (
	"github.com/yungbote/learnqueue-backend/internal/domain/learning/catalog"
	"github.com/yungbote/learnqueue-backend/internal/domain/learning/progress"
)

const (
	BadgeRuleDailyStreak   = progress.BadgeRuleDailyStreak
	BadgeRuleThemePercent  = progress.BadgeRuleThemePercent
	BadgeRuleCoursePercent = progress.BadgeRuleCoursePercent
	BadgeRuleSolvedTasks   = progress.BadgeRuleSolvedTasks
)

// Catalog (read-only to the queue engine)
type Course = catalog.Course
type Theme = catalog.Theme
type Task = catalog.Task
type TaskRef = catalog.TaskRef

// Queue
type QueueItem = progress.QueueItem
type QueueState = progress.QueueState

// Progress
type TaskState = progress.TaskState
type ThemeProgress = progress.ThemeProgress
type CourseProgress = progress.CourseProgress
type DailySolve = progress.DailySolve

// Badges
type BadgeRule = progress.BadgeRule
type UserBadge = progress.UserBadge
