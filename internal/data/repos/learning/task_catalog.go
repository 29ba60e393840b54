package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnqueue-backend/internal/domain"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

// TaskCatalog is the read-only view of the course hierarchy the queue engine needs.
type TaskCatalog interface {
	// ListTaskIDsForTheme returns the theme's tasks in canonical (position, created_at, id) order.
	ListTaskIDsForTheme(dbc dbctx.Context, themeID uuid.UUID) ([]uuid.UUID, error)
	CountTasksInTheme(dbc dbctx.Context, themeID uuid.UUID) (int, error)
	CountTasksInCourse(dbc dbctx.Context, courseID uuid.UUID) (int, error)
	GetTheme(dbc dbctx.Context, themeID uuid.UUID) (*types.Theme, error)
	LookupTask(dbc dbctx.Context, taskID uuid.UUID) (*types.TaskRef, error)
}

type taskCatalog struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskCatalog(db *gorm.DB, baseLog *logger.Logger) TaskCatalog {
	return &taskCatalog{db: db, log: baseLog.With("repo", "TaskCatalog")}
}

func (r *taskCatalog) ListTaskIDsForTheme(dbc dbctx.Context, themeID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []uuid.UUID{}
	if themeID == uuid.Nil {
		return out, nil
	}
	var rows []*types.Task
	if err := t.WithContext(dbc.Ctx).
		Select("id", "position", "created_at").
		Where("theme_id = ?", themeID).
		Order("position ASC, created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out = append(out, row.ID)
	}
	return out, nil
}

func (r *taskCatalog) CountTasksInTheme(dbc dbctx.Context, themeID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if themeID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Task{}).
		Where("theme_id = ?", themeID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *taskCatalog) CountTasksInCourse(dbc dbctx.Context, courseID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if courseID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Task{}).
		Joins("JOIN theme ON theme.id = task.theme_id").
		Where("theme.course_id = ?", courseID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *taskCatalog) GetTheme(dbc dbctx.Context, themeID uuid.UUID) (*types.Theme, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if themeID == uuid.Nil {
		return nil, nil
	}
	var row types.Theme
	if err := t.WithContext(dbc.Ctx).
		Where("id = ?", themeID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *taskCatalog) LookupTask(dbc dbctx.Context, taskID uuid.UUID) (*types.TaskRef, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if taskID == uuid.Nil {
		return nil, nil
	}
	var ref types.TaskRef
	if err := t.WithContext(dbc.Ctx).
		Table("task").
		Select("task.id AS task_id, task.theme_id AS theme_id, theme.course_id AS course_id").
		Joins("JOIN theme ON theme.id = task.theme_id").
		Where("task.id = ?", taskID).
		Limit(1).
		Scan(&ref).Error; err != nil {
		return nil, err
	}
	if ref.TaskID == uuid.Nil {
		return nil, nil
	}
	return &ref, nil
}
