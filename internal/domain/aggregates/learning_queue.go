package aggregates

import (
	"context"

	"github.com/google/uuid"
)

var LearningQueueAggregateContract = Contract{
	Name:     "Learning.QueueAggregate",
	Tables:   []string{"queue_state", "queue_item"},
	LockKeys: []LockKey{LockKeyUserTheme},
	Notes: "Owns the ordered per-(user,theme) task rotation and its position high-water mark. " +
		"Every append or move locks queue_state for the key, assigns last_position+1.., and writes " +
		"the new mark back in the same transaction.",
}

// QueueKey identifies one learner's queue inside one theme.
type QueueKey struct {
	UserID  uuid.UUID
	ThemeID uuid.UUID
}

func (k QueueKey) Valid() bool {
	return k.UserID != uuid.Nil && k.ThemeID != uuid.Nil
}

// QueueEntry is a read view of one queued task.
type QueueEntry struct {
	TaskID   uuid.UUID
	Position int64
}

// LearningQueueAggregate owns queue ordering invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodePreconditionFailed (queue state missing), CodeUnavailable (catalog),
// CodeConflict, CodeRetryable, CodeInternal.
type LearningQueueAggregate interface {
	Aggregate

	// EnsureState creates the queue_state row with last_position=0 when absent.
	EnsureState(ctx context.Context, key QueueKey) (bool, error)

	// Seed appends catalog tasks for the theme that are not already queued, in catalog order.
	Seed(ctx context.Context, key QueueKey) (int, error)

	// EnqueueAtEnd appends the given tasks, skipping ones already queued.
	EnqueueAtEnd(ctx context.Context, key QueueKey, taskIDs []uuid.UUID) (int, error)

	// MoveToEnd repositions a queued task past the current high-water mark.
	MoveToEnd(ctx context.Context, key QueueKey, taskID uuid.UUID) (int64, error)

	// Remove deletes a task from the rotation. Removing an absent task is a no-op.
	Remove(ctx context.Context, key QueueKey, taskID uuid.UUID) (bool, error)

	Size(ctx context.Context, key QueueKey) (int, error)
	PeekNext(ctx context.Context, key QueueKey) (*uuid.UUID, error)
	Entries(ctx context.Context, key QueueKey) ([]QueueEntry, error)
	HasState(ctx context.Context, key QueueKey) (bool, error)
}
