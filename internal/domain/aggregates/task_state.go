package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var TaskStateAggregateContract = Contract{
	Name:     "Learning.TaskStateAggregate",
	Tables:   []string{"task_state"},
	LockKeys: []LockKey{LockKeyUserTask},
	Notes: "Owns the write-once solved-on-first-try flag. The conditional update is the only " +
		"gate for progress credit, so at most one caller per (user,task) ever observes true.",
}

type EnsureTaskStateInput struct {
	UserID    uuid.UUID
	TaskID    uuid.UUID
	ThemeID   uuid.UUID
	CourseID  uuid.UUID
	AttemptAt time.Time
}

// TaskStateAggregate gates progress crediting to one credit per (user,task).
type TaskStateAggregate interface {
	Aggregate

	// EnsureStateRow creates the task_state row when absent and counts the attempt.
	EnsureStateRow(ctx context.Context, in EnsureTaskStateInput) (bool, error)

	// MarkSolvedFirstTryIfNot flips the flag and reports whether this call did it.
	MarkSolvedFirstTryIfNot(ctx context.Context, userID, taskID uuid.UUID, solvedAt time.Time) (bool, error)

	IsSolved(ctx context.Context, userID, taskID uuid.UUID) (bool, error)
	// SolvedAmong reports which of taskIDs the user has already solved.
	SolvedAmong(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}
