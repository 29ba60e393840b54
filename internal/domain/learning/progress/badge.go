package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	BadgeRuleDailyStreak   = "daily_streak"
	BadgeRuleThemePercent  = "theme_percent"
	BadgeRuleCoursePercent = "course_percent"
	BadgeRuleSolvedTasks   = "solved_tasks"
)

type BadgeRule struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	Type        string         `gorm:"column:type;not null;index:idx_badge_rule_type_active,priority:1" json:"type"`
	Threshold   int            `gorm:"column:threshold;not null" json:"threshold"`
	Active      bool           `gorm:"column:active;not null;index:idx_badge_rule_type_active,priority:2" json:"active"`
	Criteria    datatypes.JSON `gorm:"column:criteria" json:"criteria,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (BadgeRule) TableName() string { return "badge_rule" }

// UserBadge scope columns use uuid.Nil for "unscoped" rather than NULL: NULLs are
// distinct inside a unique index and would let the same award be inserted twice.
type UserBadge struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_user_badge_scope,unique,priority:1" json:"user_id"`
	BadgeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_user_badge_scope,unique,priority:2" json:"badge_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_badge_scope,unique,priority:3" json:"course_id"`
	ThemeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_user_badge_scope,unique,priority:4" json:"theme_id"`

	AwardedAt time.Time      `gorm:"column:awarded_at;not null" json:"awarded_at"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
}

func (UserBadge) TableName() string { return "user_badge" }
