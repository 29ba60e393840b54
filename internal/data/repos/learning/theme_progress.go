package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnqueue-backend/internal/domain"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

type ThemeProgressRepo interface {
	CreateIfAbsent(dbc dbctx.Context, row *types.ThemeProgress) (bool, error)
	GetByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.ThemeProgress, error)
	LockByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.ThemeProgress, error)
	ListByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) ([]*types.ThemeProgress, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type themeProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThemeProgressRepo(db *gorm.DB, baseLog *logger.Logger) ThemeProgressRepo {
	return &themeProgressRepo{db: db, log: baseLog.With("repo", "ThemeProgressRepo")}
}

func (r *themeProgressRepo) CreateIfAbsent(dbc dbctx.Context, row *types.ThemeProgress) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil || row.ThemeID == uuid.Nil {
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

func (r *themeProgressRepo) GetByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.ThemeProgress, error) {
	return r.find(dbc, userID, themeID, false)
}

func (r *themeProgressRepo) LockByUserTheme(dbc dbctx.Context, userID, themeID uuid.UUID) (*types.ThemeProgress, error) {
	return r.find(dbc, userID, themeID, true)
}

func (r *themeProgressRepo) find(dbc dbctx.Context, userID, themeID uuid.UUID, lock bool) (*types.ThemeProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || themeID == uuid.Nil {
		return nil, nil
	}
	q := t.WithContext(dbc.Ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row types.ThemeProgress
	if err := q.Where("user_id = ? AND theme_id = ?", userID, themeID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *themeProgressRepo) ListByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) ([]*types.ThemeProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.ThemeProgress{}
	if userID == uuid.Nil || courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *themeProgressRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ThemeProgress{}).
		Where("id = ?", id).
		Updates(updates).Error
}
