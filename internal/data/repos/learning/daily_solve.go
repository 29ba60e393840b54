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

type DailySolveRepo interface {
	CreateIfAbsent(dbc dbctx.Context, userID uuid.UUID, day string) (bool, error)
	// ListDaysDesc returns solved days in (sinceDay, untilDay], newest first.
	// An empty sinceDay means no lower bound.
	ListDaysDesc(dbc dbctx.Context, userID uuid.UUID, sinceDay, untilDay string) ([]string, error)
}

type dailySolveRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailySolveRepo(db *gorm.DB, baseLog *logger.Logger) DailySolveRepo {
	return &dailySolveRepo{db: db, log: baseLog.With("repo", "DailySolveRepo")}
}

func (r *dailySolveRepo) CreateIfAbsent(dbc dbctx.Context, userID uuid.UUID, day string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || day == "" {
		return false, nil
	}
	row := &types.DailySolve{
		ID:        uuid.New(),
		UserID:    userID,
		Day:       day,
		CreatedAt: time.Now().UTC(),
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *dailySolveRepo) ListDaysDesc(dbc dbctx.Context, userID uuid.UUID, sinceDay, untilDay string) ([]string, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []string{}
	if userID == uuid.Nil || untilDay == "" {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).
		Model(&types.DailySolve{}).
		Where("user_id = ? AND day <= ?", userID, untilDay)
	if sinceDay != "" {
		q = q.Where("day > ?", sinceDay)
	}
	if err := q.Order("day DESC").Pluck("day", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
