package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnqueue-backend/internal/domain"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

type QueueItemRepo interface {
	Create(dbc dbctx.Context, rows []*types.QueueItem) ([]*types.QueueItem, error)
	ListByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) ([]*types.QueueItem, error)
	GetByTask(dbc dbctx.Context, userID, themeID, taskID uuid.UUID) (*types.QueueItem, error)
	First(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.QueueItem, error)
	Count(dbc dbctx.Context, userID, themeID uuid.UUID) (int64, error)
	DeleteByTask(dbc dbctx.Context, userID, themeID, taskID uuid.UUID) (int64, error)
}

type queueItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQueueItemRepo(db *gorm.DB, baseLog *logger.Logger) QueueItemRepo {
	return &queueItemRepo{db: db, log: baseLog.With("repo", "QueueItemRepo")}
}

func (r *queueItemRepo) Create(dbc dbctx.Context, rows []*types.QueueItem) ([]*types.QueueItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.QueueItem{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUserTheme returns the queue in delivery order.
func (r *queueItemRepo) ListByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) ([]*types.QueueItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.QueueItem{}
	if userID == uuid.Nil || themeID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND theme_id = ?", userID, themeID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *queueItemRepo) GetByTask(dbc dbctx.Context, userID, themeID, taskID uuid.UUID) (*types.QueueItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || themeID == uuid.Nil || taskID == uuid.Nil {
		return nil, nil
	}
	var row types.QueueItem
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND theme_id = ? AND task_id = ?", userID, themeID, taskID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *queueItemRepo) First(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.QueueItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || themeID == uuid.Nil {
		return nil, nil
	}
	var row types.QueueItem
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND theme_id = ?", userID, themeID).
		Order("position ASC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *queueItemRepo) Count(dbc dbctx.Context, userID, themeID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || themeID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.QueueItem{}).
		Where("user_id = ? AND theme_id = ?", userID, themeID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *queueItemRepo) DeleteByTask(dbc dbctx.Context, userID, themeID, taskID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || themeID == uuid.Nil || taskID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND theme_id = ? AND task_id = ?", userID, themeID, taskID).
		Delete(&types.QueueItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
