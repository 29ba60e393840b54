package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnqueue-backend/internal/domain"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

type TaskStateRepo interface {
	CreateIfAbsent(dbc dbctx.Context, row *types.TaskState) (bool, error)
	Get(dbc dbctx.Context, userID, taskID uuid.UUID) (*types.TaskState, error)
	IncrementAttempts(dbc dbctx.Context, userID, taskID uuid.UUID, at time.Time) error
	// ListSolvedTaskIDs returns the subset of taskIDs the user has solved.
	ListSolvedTaskIDs(dbc dbctx.Context, userID uuid.UUID, taskIDs []uuid.UUID) ([]uuid.UUID, error)
}

type taskStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskStateRepo(db *gorm.DB, baseLog *logger.Logger) TaskStateRepo {
	return &taskStateRepo{db: db, log: baseLog.With("repo", "TaskStateRepo")}
}

func (r *taskStateRepo) CreateIfAbsent(dbc dbctx.Context, row *types.TaskState) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil || row.TaskID == uuid.Nil {
		return false, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *taskStateRepo) Get(dbc dbctx.Context, userID, taskID uuid.UUID) (*types.TaskState, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || taskID == uuid.Nil {
		return nil, nil
	}
	var row types.TaskState
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *taskStateRepo) IncrementAttempts(dbc dbctx.Context, userID, taskID uuid.UUID, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || taskID == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.TaskState{}).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Updates(map[string]interface{}{
			"attempt_count":   gorm.Expr("attempt_count + 1"),
			"last_attempt_at": at,
			"updated_at":      at,
		}).Error
}

func (r *taskStateRepo) ListSolvedTaskIDs(dbc dbctx.Context, userID uuid.UUID, taskIDs []uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []uuid.UUID{}
	if userID == uuid.Nil || len(taskIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.TaskState{}).
		Where("user_id = ? AND task_id IN ? AND is_solved_first_try = ?", userID, taskIDs, true).
		Pluck("task_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
