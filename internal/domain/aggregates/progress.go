package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var ProgressAggregateContract = Contract{
	Name:     "Learning.ProgressAggregate",
	Tables:   []string{"theme_progress", "course_progress"},
	LockKeys: []LockKey{LockKeyUserTheme, LockKeyUserCourse},
	Notes: "Owns theme and course roll-ups. Insert-if-absent seeds the row on the first credited " +
		"solve; otherwise the locked row is incremented and percent/average are recomputed from " +
		"the refreshed catalog total.",
}

type ApplyFirstTrySolveInput struct {
	UserID         uuid.UUID
	ThemeID        uuid.UUID
	CourseID       uuid.UUID
	FirstTryTimeMs int64
	EventTime      time.Time
}

// ProgressSnapshot is the roll-up state after an apply.
type ProgressSnapshot struct {
	UserID          uuid.UUID `json:"user_id"`
	ScopeID         uuid.UUID `json:"scope_id"`
	SolvedTasks     int       `json:"solved_tasks"`
	TotalTasks      int       `json:"total_tasks"`
	TotalTimeMs     int64     `json:"total_time_ms"`
	AverageTimeMs   int64     `json:"average_time_ms"`
	PercentComplete float64   `json:"percent_complete"`
	Created         bool      `json:"created"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ProgressAggregate interface {
	Aggregate

	ApplyFirstTrySolveToTheme(ctx context.Context, in ApplyFirstTrySolveInput) (ProgressSnapshot, error)
	ApplyFirstTrySolveToCourse(ctx context.Context, in ApplyFirstTrySolveInput) (ProgressSnapshot, error)

	GetThemeProgress(ctx context.Context, userID, themeID uuid.UUID) (*ProgressSnapshot, error)
	GetCourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*ProgressSnapshot, error)
}
