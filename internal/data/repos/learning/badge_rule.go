package learning

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnqueue-backend/internal/domain"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

type BadgeRuleRepo interface {
	ListActive(dbc dbctx.Context) ([]*types.BadgeRule, error)
	ListActiveByType(dbc dbctx.Context, ruleType string) ([]*types.BadgeRule, error)
	GetByCode(dbc dbctx.Context, code string) (*types.BadgeRule, error)
	// UpsertByCode inserts rules or refreshes name/description/type/threshold/active
	// of an existing rule with the same code. Rule ids stay stable across upserts.
	UpsertByCode(dbc dbctx.Context, rows []*types.BadgeRule) error
}

type badgeRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBadgeRuleRepo(db *gorm.DB, baseLog *logger.Logger) BadgeRuleRepo {
	return &badgeRuleRepo{db: db, log: baseLog.With("repo", "BadgeRuleRepo")}
}

func (r *badgeRuleRepo) ListActive(dbc dbctx.Context) ([]*types.BadgeRule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.BadgeRule{}
	if err := t.WithContext(dbc.Ctx).
		Where("active = ?", true).
		Order("type ASC, threshold ASC, code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *badgeRuleRepo) ListActiveByType(dbc dbctx.Context, ruleType string) ([]*types.BadgeRule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.BadgeRule{}
	ruleType = strings.TrimSpace(ruleType)
	if ruleType == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("active = ? AND type = ?", true, ruleType).
		Order("threshold ASC, code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *badgeRuleRepo) GetByCode(dbc dbctx.Context, code string) (*types.BadgeRule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var row types.BadgeRule
	if err := t.WithContext(dbc.Ctx).Where("code = ?", code).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *badgeRuleRepo) UpsertByCode(dbc dbctx.Context, rows []*types.BadgeRule) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row == nil {
			continue
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "type", "threshold", "active", "criteria", "updated_at",
			}),
		}).
		Create(&rows).Error
}
