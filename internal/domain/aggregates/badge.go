package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnqueue-backend/internal/domain/learning/progress"
)

var BadgeAggregateContract = Contract{
	Name:     "Learning.BadgeAggregate",
	Tables:   []string{"user_badge"},
	LockKeys: []LockKey{LockKeyUserBadge},
	Notes:    "Awards are insert-if-absent and never updated or deleted.",
}

type AwardBadgeInput struct {
	UserID    uuid.UUID
	BadgeID   uuid.UUID
	CourseID  *uuid.UUID
	ThemeID   *uuid.UUID
	AwardedAt time.Time
	Metadata  map[string]any
}

// BadgeSignal carries the freshly computed streak and progress values after a credited solve.
type BadgeSignal struct {
	UserID            uuid.UUID
	ThemeID           uuid.UUID
	CourseID          uuid.UUID
	DailyStreak       int
	ThemePercent      float64
	CoursePercent     float64
	CourseSolvedTasks int
	EventTime         time.Time
}

// AwardedBadge pairs a newly inserted award with the rule that produced it.
type AwardedBadge struct {
	Rule  *progress.BadgeRule `json:"rule"`
	Award *progress.UserBadge `json:"award"`
}

type BadgeAggregate interface {
	Aggregate

	ListActiveRules(ctx context.Context) ([]*progress.BadgeRule, error)
	ListActiveRulesByType(ctx context.Context, ruleType string) ([]*progress.BadgeRule, error)

	// AwardIfAbsent inserts the award unless the (user,badge,course,theme) tuple exists.
	AwardIfAbsent(ctx context.Context, in AwardBadgeInput) (bool, error)

	// Evaluate checks every active rule against the signal and awards the qualifying ones.
	// Only awards inserted by this call are returned.
	Evaluate(ctx context.Context, signal BadgeSignal) ([]AwardedBadge, error)

	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*progress.UserBadge, error)
}
