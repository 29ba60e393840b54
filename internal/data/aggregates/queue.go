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

type LearningQueueAggregateDeps struct {
	Base BaseDeps

	States  repos.QueueStateRepo
	Items   repos.QueueItemRepo
	Catalog repos.TaskCatalog
}

type learningQueueAggregate struct {
	deps LearningQueueAggregateDeps
}

func NewLearningQueueAggregate(deps LearningQueueAggregateDeps) domainagg.LearningQueueAggregate {
	deps.Base = deps.Base.withDefaults()
	return &learningQueueAggregate{deps: deps}
}

func (a *learningQueueAggregate) Contract() domainagg.Contract {
	return domainagg.LearningQueueAggregateContract
}

func (a *learningQueueAggregate) configured(op string) error {
	if a.deps.States == nil || a.deps.Items == nil || a.deps.Catalog == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "queue aggregate repos not configured", nil)
	}
	return nil
}

func validateKey(op string, key domainagg.QueueKey) error {
	if key.UserID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if key.ThemeID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing theme_id", nil)
	}
	return nil
}

func (a *learningQueueAggregate) EnsureState(ctx context.Context, key domainagg.QueueKey) (bool, error) {
	const op = "Learning.Queue.EnsureState"
	if err := validateKey(op, key); err != nil {
		return false, err
	}
	if err := a.configured(op); err != nil {
		return false, err
	}
	created := false
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		ok, err := a.deps.States.CreateIfAbsent(dbc, key.UserID, key.ThemeID)
		if err != nil {
			return err
		}
		created = ok
		return nil
	})
	return created, err
}

// Seed creates the queue state when absent, so entering a theme is one idempotent call.
func (a *learningQueueAggregate) Seed(ctx context.Context, key domainagg.QueueKey) (int, error) {
	const op = "Learning.Queue.Seed"
	if err := validateKey(op, key); err != nil {
		return 0, err
	}
	if err := a.configured(op); err != nil {
		return 0, err
	}
	taskIDs, err := a.deps.Catalog.ListTaskIDsForTheme(readContext(ctx), key.ThemeID)
	if err != nil {
		return 0, domainagg.CatalogUnavailable(op, err)
	}
	if len(taskIDs) == 0 {
		return 0, nil
	}
	return a.append(ctx, op, key, taskIDs, true)
}

func (a *learningQueueAggregate) EnqueueAtEnd(ctx context.Context, key domainagg.QueueKey, taskIDs []uuid.UUID) (int, error) {
	const op = "Learning.Queue.EnqueueAtEnd"
	if err := validateKey(op, key); err != nil {
		return 0, err
	}
	if err := a.configured(op); err != nil {
		return 0, err
	}
	return a.append(ctx, op, key, taskIDs, false)
}

// append assigns last_position+1.. to every task not yet queued and writes the new
// high-water mark back while holding the queue_state row lock.
func (a *learningQueueAggregate) append(ctx context.Context, op string, key domainagg.QueueKey, taskIDs []uuid.UUID, createState bool) (int, error) {
	ids := dedupeUUIDs(taskIDs)
	added := 0
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		added = 0
		if createState {
			if _, err := a.deps.States.CreateIfAbsent(dbc, key.UserID, key.ThemeID); err != nil {
				return err
			}
		}
		st, err := a.deps.States.LockByUserTheme(dbc, key.UserID, key.ThemeID)
		if err != nil {
			return err
		}
		if st == nil {
			return domainagg.QueueStateMissing(op)
		}
		if len(ids) == 0 {
			return nil
		}

		existing, err := a.deps.Items.ListByUserTheme(dbc, key.UserID, key.ThemeID)
		if err != nil {
			return err
		}
		queued := make(map[uuid.UUID]struct{}, len(existing))
		for _, it := range existing {
			queued[it.TaskID] = struct{}{}
		}

		now := time.Now().UTC()
		next := st.LastPosition
		rows := make([]*types.QueueItem, 0, len(ids))
		for _, id := range ids {
			if _, ok := queued[id]; ok {
				continue
			}
			next++
			rows = append(rows, &types.QueueItem{
				ID:        uuid.New(),
				UserID:    key.UserID,
				ThemeID:   key.ThemeID,
				TaskID:    id,
				Position:  next,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := a.deps.Items.Create(dbc, rows); err != nil {
			return err
		}
		if err := a.deps.States.SetLastPosition(dbc, st.ID, next, now); err != nil {
			return err
		}
		added = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// MoveToEnd returns the new position, or 0 when the task is not queued.
func (a *learningQueueAggregate) MoveToEnd(ctx context.Context, key domainagg.QueueKey, taskID uuid.UUID) (int64, error) {
	const op = "Learning.Queue.MoveToEnd"
	if err := validateKey(op, key); err != nil {
		return 0, err
	}
	if taskID == uuid.Nil {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "missing task_id", nil)
	}
	if err := a.configured(op); err != nil {
		return 0, err
	}
	var position int64
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		position = 0
		st, err := a.deps.States.LockByUserTheme(dbc, key.UserID, key.ThemeID)
		if err != nil {
			return err
		}
		if st == nil {
			return domainagg.QueueStateMissing(op)
		}
		item, err := a.deps.Items.GetByTask(dbc, key.UserID, key.ThemeID, taskID)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}

		now := time.Now().UTC()
		next := st.LastPosition + 1
		if err := a.deps.Base.CASGuard.MustSwap(dbc, CAS{
			Model:  &types.QueueItem{},
			Expect: map[string]any{"id": item.ID, "position": item.Position},
			Set:    map[string]any{"position": next, "updated_at": now},
		}, "queue item moved concurrently"); err != nil {
			return err
		}
		if err := a.deps.States.SetLastPosition(dbc, st.ID, next, now); err != nil {
			return err
		}
		position = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	return position, nil
}

func (a *learningQueueAggregate) Remove(ctx context.Context, key domainagg.QueueKey, taskID uuid.UUID) (bool, error) {
	const op = "Learning.Queue.Remove"
	if err := validateKey(op, key); err != nil {
		return false, err
	}
	if taskID == uuid.Nil {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "missing task_id", nil)
	}
	if err := a.configured(op); err != nil {
		return false, err
	}
	removed := false
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := a.deps.Items.DeleteByTask(dbc, key.UserID, key.ThemeID, taskID)
		if err != nil {
			return err
		}
		removed = n > 0
		return nil
	})
	return removed, err
}

func (a *learningQueueAggregate) Size(ctx context.Context, key domainagg.QueueKey) (int, error) {
	const op = "Learning.Queue.Size"
	if err := validateKey(op, key); err != nil {
		return 0, err
	}
	if err := a.configured(op); err != nil {
		return 0, err
	}
	var n int64
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		var err error
		n, err = a.deps.Items.Count(dbc, key.UserID, key.ThemeID)
		return err
	})
	return int(n), err
}

func (a *learningQueueAggregate) PeekNext(ctx context.Context, key domainagg.QueueKey) (*uuid.UUID, error) {
	const op = "Learning.Queue.PeekNext"
	if err := validateKey(op, key); err != nil {
		return nil, err
	}
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var next *uuid.UUID
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		item, err := a.deps.Items.First(dbc, key.UserID, key.ThemeID)
		if err != nil {
			return err
		}
		if item != nil {
			id := item.TaskID
			next = &id
		}
		return nil
	})
	return next, err
}

func (a *learningQueueAggregate) Entries(ctx context.Context, key domainagg.QueueKey) ([]domainagg.QueueEntry, error) {
	const op = "Learning.Queue.Entries"
	if err := validateKey(op, key); err != nil {
		return nil, err
	}
	if err := a.configured(op); err != nil {
		return nil, err
	}
	out := []domainagg.QueueEntry{}
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		rows, err := a.deps.Items.ListByUserTheme(dbc, key.UserID, key.ThemeID)
		if err != nil {
			return err
		}
		for _, r := range rows {
			out = append(out, domainagg.QueueEntry{TaskID: r.TaskID, Position: r.Position})
		}
		return nil
	})
	return out, err
}

func (a *learningQueueAggregate) HasState(ctx context.Context, key domainagg.QueueKey) (bool, error) {
	const op = "Learning.Queue.HasState"
	if err := validateKey(op, key); err != nil {
		return false, err
	}
	if err := a.configured(op); err != nil {
		return false, err
	}
	found := false
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		st, err := a.deps.States.GetByUserTheme(dbc, key.UserID, key.ThemeID)
		if err != nil {
			return err
		}
		found = st != nil
		return nil
	})
	return found, err
}

func dedupeUUIDs(in []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(in))
	seen := make(map[uuid.UUID]struct{}, len(in))
	for _, id := range in {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
