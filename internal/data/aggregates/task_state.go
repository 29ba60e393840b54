package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	types "github.com/yungbote/learnqueue-backend/internal/domain"
	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

type TaskStateAggregateDeps struct {
	Base BaseDeps

	States repos.TaskStateRepo
}

type taskStateAggregate struct {
	deps TaskStateAggregateDeps
}

func NewTaskStateAggregate(deps TaskStateAggregateDeps) domainagg.TaskStateAggregate {
	deps.Base = deps.Base.withDefaults()
	return &taskStateAggregate{deps: deps}
}

func (a *taskStateAggregate) Contract() domainagg.Contract {
	return domainagg.TaskStateAggregateContract
}

func (a *taskStateAggregate) EnsureStateRow(ctx context.Context, in domainagg.EnsureTaskStateInput) (bool, error) {
	const op = "Learning.TaskState.EnsureStateRow"
	if in.UserID == uuid.Nil || in.TaskID == uuid.Nil {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or task_id", nil)
	}
	if in.ThemeID == uuid.Nil || in.CourseID == uuid.Nil {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "missing theme_id or course_id", nil)
	}
	if a.deps.States == nil {
		return false, domainagg.NewError(domainagg.CodeInternal, op, "task state repo not configured", nil)
	}

	at := in.AttemptAt.UTC()
	if in.AttemptAt.IsZero() {
		at = time.Now().UTC()
	}
	created := false
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		ok, err := a.deps.States.CreateIfAbsent(dbc, &types.TaskState{
			ID:        uuid.New(),
			UserID:    in.UserID,
			TaskID:    in.TaskID,
			ThemeID:   in.ThemeID,
			CourseID:  in.CourseID,
			CreatedAt: at,
			UpdatedAt: at,
		})
		if err != nil {
			return err
		}
		created = ok
		return a.deps.States.IncrementAttempts(dbc, in.UserID, in.TaskID, at)
	})
	return created, err
}

func (a *taskStateAggregate) MarkSolvedFirstTryIfNot(ctx context.Context, userID, taskID uuid.UUID, solvedAt time.Time) (bool, error) {
	const op = "Learning.TaskState.MarkSolvedFirstTryIfNot"
	if userID == uuid.Nil || taskID == uuid.Nil {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or task_id", nil)
	}
	at := solvedAt.UTC()
	if solvedAt.IsZero() {
		at = time.Now().UTC()
	}
	transitioned := false
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		ok, err := a.deps.Base.CASGuard.Swap(dbc, CAS{
			Model:  &types.TaskState{},
			Expect: map[string]any{"user_id": userID, "task_id": taskID, "is_solved_first_try": false},
			Set:    map[string]any{"is_solved_first_try": true, "first_solved_at": at, "updated_at": at},
		})
		if err != nil {
			return err
		}
		transitioned = ok
		return nil
	})
	return transitioned, err
}

func (a *taskStateAggregate) IsSolved(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	const op = "Learning.TaskState.IsSolved"
	if userID == uuid.Nil || taskID == uuid.Nil {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or task_id", nil)
	}
	if a.deps.States == nil {
		return false, domainagg.NewError(domainagg.CodeInternal, op, "task state repo not configured", nil)
	}
	solved := false
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.States.Get(dbc, userID, taskID)
		if err != nil {
			return err
		}
		solved = row != nil && row.IsSolvedFirstTry
		return nil
	})
	return solved, err
}

func (a *taskStateAggregate) SolvedAmong(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	const op = "Learning.TaskState.SolvedAmong"
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if a.deps.States == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "task state repo not configured", nil)
	}
	out := map[uuid.UUID]bool{}
	if len(taskIDs) == 0 {
		return out, nil
	}
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		ids, err := a.deps.States.ListSolvedTaskIDs(dbc, userID, taskIDs)
		if err != nil {
			return err
		}
		for _, id := range ids {
			out[id] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
