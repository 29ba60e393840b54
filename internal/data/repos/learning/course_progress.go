package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnqueue-backend/internal/domain"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

type CourseProgressRepo interface {
	CreateIfAbsent(dbc dbctx.Context, row *types.CourseProgress) (bool, error)
	GetByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.CourseProgress, error)
	LockByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.CourseProgress, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type courseProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	return &courseProgressRepo{db: db, log: baseLog.With("repo", "CourseProgressRepo")}
}

func (r *courseProgressRepo) CreateIfAbsent(dbc dbctx.Context, row *types.CourseProgress) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil || row.CourseID == uuid.Nil {
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

func (r *courseProgressRepo) GetByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.CourseProgress, error) {
	return r.find(dbc, userID, courseID, false)
}

func (r *courseProgressRepo) LockByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.CourseProgress, error) {
	return r.find(dbc, userID, courseID, true)
}

func (r *courseProgressRepo) find(dbc dbctx.Context, userID, courseID uuid.UUID, lock bool) (*types.CourseProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}
	q := t.WithContext(dbc.Ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row types.CourseProgress
	if err := q.Where("user_id = ? AND course_id = ?", userID, courseID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *courseProgressRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.CourseProgress{}).
		Where("id = ?", id).
		Updates(updates).Error
}
