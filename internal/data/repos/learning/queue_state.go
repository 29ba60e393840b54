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

type QueueStateRepo interface {
	CreateIfAbsent(dbc dbctx.Context, userID, themeID uuid.UUID) (bool, error)
	GetByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.QueueState, error)
	LockByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.QueueState, error)
	SetLastPosition(dbc dbctx.Context, id uuid.UUID, lastPosition int64, at time.Time) error
}

type queueStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQueueStateRepo(db *gorm.DB, baseLog *logger.Logger) QueueStateRepo {
	return &queueStateRepo{db: db, log: baseLog.With("repo", "QueueStateRepo")}
}

func (r *queueStateRepo) CreateIfAbsent(dbc dbctx.Context, userID, themeID uuid.UUID) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || themeID == uuid.Nil {
		return false, nil
	}
	now := time.Now().UTC()
	row := &types.QueueState{
		ID:           uuid.New(),
		UserID:       userID,
		ThemeID:      themeID,
		LastPosition: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *queueStateRepo) GetByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.QueueState, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || themeID == uuid.Nil {
		return nil, nil
	}
	var row types.QueueState
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND theme_id = ?", userID, themeID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// LockByUserTheme reads the row with SELECT ... FOR UPDATE. Every position assignment for the
// key goes through this lock, which is what serializes concurrent appends and moves.
func (r *queueStateRepo) LockByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.QueueState, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || themeID == uuid.Nil {
		return nil, nil
	}
	var row types.QueueState
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND theme_id = ?", userID, themeID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *queueStateRepo) SetLastPosition(dbc dbctx.Context, id uuid.UUID, lastPosition int64, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.QueueState{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_position": lastPosition,
			"updated_at":    at,
		}).Error
}
