package aggregates

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	types "github.com/yungbote/learnqueue-backend/internal/domain"
	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/domain/learning/progress"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

type BadgeAggregateDeps struct {
	Base BaseDeps

	Rules  repos.BadgeRuleRepo
	Awards repos.UserBadgeRepo
}

type badgeAggregate struct {
	deps BadgeAggregateDeps
}

func NewBadgeAggregate(deps BadgeAggregateDeps) domainagg.BadgeAggregate {
	deps.Base = deps.Base.withDefaults()
	return &badgeAggregate{deps: deps}
}

func (a *badgeAggregate) Contract() domainagg.Contract {
	return domainagg.BadgeAggregateContract
}

func (a *badgeAggregate) configured(op string) error {
	if a.deps.Rules == nil || a.deps.Awards == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "badge aggregate repos not configured", nil)
	}
	return nil
}

func (a *badgeAggregate) ListActiveRules(ctx context.Context) ([]*progress.BadgeRule, error) {
	const op = "Learning.Badge.ListActiveRules"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out []*progress.BadgeRule
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		var err error
		out, err = a.deps.Rules.ListActive(dbc)
		return err
	})
	return out, err
}

func (a *badgeAggregate) ListActiveRulesByType(ctx context.Context, ruleType string) ([]*progress.BadgeRule, error) {
	const op = "Learning.Badge.ListActiveRulesByType"
	if strings.TrimSpace(ruleType) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing rule type", nil)
	}
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out []*progress.BadgeRule
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		var err error
		out, err = a.deps.Rules.ListActiveByType(dbc, ruleType)
		return err
	})
	return out, err
}

func (a *badgeAggregate) AwardIfAbsent(ctx context.Context, in domainagg.AwardBadgeInput) (bool, error) {
	const op = "Learning.Badge.AwardIfAbsent"
	if in.UserID == uuid.Nil || in.BadgeID == uuid.Nil {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or badge_id", nil)
	}
	if err := a.configured(op); err != nil {
		return false, err
	}
	row, err := newUserBadge(in)
	if err != nil {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "metadata is not JSON encodable", err)
	}
	created := false
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		ok, err := a.deps.Awards.CreateIfAbsent(dbc, row)
		if err != nil {
			return err
		}
		created = ok
		return nil
	})
	return created, err
}

func (a *badgeAggregate) Evaluate(ctx context.Context, signal domainagg.BadgeSignal) ([]domainagg.AwardedBadge, error) {
	const op = "Learning.Badge.Evaluate"
	if signal.UserID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if err := a.configured(op); err != nil {
		return nil, err
	}
	rules, err := a.ListActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	at := eventTimeOrNow(signal.EventTime)
	candidates := make([]domainagg.AwardedBadge, 0, len(rules))
	for _, rule := range rules {
		in, ok := a.qualify(rule, signal, at)
		if !ok {
			continue
		}
		row, err := newUserBadge(in)
		if err != nil {
			return nil, domainagg.NewError(domainagg.CodeInternal, op, "encode award metadata", err)
		}
		candidates = append(candidates, domainagg.AwardedBadge{Rule: rule, Award: row})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var awarded []domainagg.AwardedBadge
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		awarded = awarded[:0]
		for _, c := range candidates {
			row := *c.Award
			row.ID = uuid.New()
			ok, err := a.deps.Awards.CreateIfAbsent(dbc, &row)
			if err != nil {
				return err
			}
			if ok {
				awarded = append(awarded, domainagg.AwardedBadge{Rule: c.Rule, Award: &row})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return awarded, nil
}

// ruleCriteria optionally pins a rule to one course or theme.
type ruleCriteria struct {
	CourseID *uuid.UUID `json:"course_id,omitempty"`
	ThemeID  *uuid.UUID `json:"theme_id,omitempty"`
}

func (a *badgeAggregate) qualify(rule *types.BadgeRule, s domainagg.BadgeSignal, at time.Time) (domainagg.AwardBadgeInput, bool) {
	if rule == nil || !rule.Active {
		return domainagg.AwardBadgeInput{}, false
	}
	in := domainagg.AwardBadgeInput{UserID: s.UserID, BadgeID: rule.ID, AwardedAt: at}
	var crit ruleCriteria
	if len(rule.Criteria) > 0 {
		if err := json.Unmarshal(rule.Criteria, &crit); err != nil {
			a.warn("badge rule has unreadable criteria", "code", rule.Code, "error", err)
			return in, false
		}
	}
	if crit.CourseID != nil && *crit.CourseID != s.CourseID {
		return in, false
	}
	if crit.ThemeID != nil && *crit.ThemeID != s.ThemeID {
		return in, false
	}

	threshold := float64(rule.Threshold)
	switch rule.Type {
	case progress.BadgeRuleDailyStreak:
		if float64(s.DailyStreak) < threshold {
			return in, false
		}
		in.Metadata = map[string]any{"daily_streak": s.DailyStreak}
	case progress.BadgeRuleThemePercent:
		if s.ThemeID == uuid.Nil || s.ThemePercent < threshold {
			return in, false
		}
		themeID := s.ThemeID
		in.ThemeID = &themeID
		in.Metadata = map[string]any{"theme_percent": s.ThemePercent}
	case progress.BadgeRuleCoursePercent:
		if s.CourseID == uuid.Nil || s.CoursePercent < threshold {
			return in, false
		}
		courseID := s.CourseID
		in.CourseID = &courseID
		in.Metadata = map[string]any{"course_percent": s.CoursePercent}
	case progress.BadgeRuleSolvedTasks:
		if s.CourseID == uuid.Nil || float64(s.CourseSolvedTasks) < threshold {
			return in, false
		}
		courseID := s.CourseID
		in.CourseID = &courseID
		in.Metadata = map[string]any{"course_solved_tasks": s.CourseSolvedTasks}
	default:
		a.warn("ignoring badge rule with unknown type", "code", rule.Code, "type", rule.Type)
		return in, false
	}
	in.Metadata["rule_code"] = rule.Code
	in.Metadata["threshold"] = rule.Threshold
	return in, true
}

func (a *badgeAggregate) warn(msg string, kv ...interface{}) {
	if a.deps.Base.Log != nil {
		a.deps.Base.Log.Warn(msg, kv...)
	}
}

func (a *badgeAggregate) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*progress.UserBadge, error) {
	const op = "Learning.Badge.ListUserBadges"
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out []*progress.UserBadge
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		var err error
		out, err = a.deps.Awards.ListByUser(dbc, userID)
		return err
	})
	return out, err
}

func newUserBadge(in domainagg.AwardBadgeInput) (*types.UserBadge, error) {
	row := &types.UserBadge{
		ID:        uuid.New(),
		UserID:    in.UserID,
		BadgeID:   in.BadgeID,
		AwardedAt: eventTimeOrNow(in.AwardedAt),
	}
	if in.CourseID != nil {
		row.CourseID = *in.CourseID
	}
	if in.ThemeID != nil {
		row.ThemeID = *in.ThemeID
	}
	if len(in.Metadata) > 0 {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, err
		}
		row.Metadata = datatypes.JSON(raw)
	}
	return row, nil
}
