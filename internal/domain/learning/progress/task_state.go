package progress

import (
	"time"

	"github.com/google/uuid"
)

type TaskState struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_task_state_user_task,unique,priority:1" json:"user_id"`
	TaskID   uuid.UUID `gorm:"type:uuid;not null;index:idx_task_state_user_task,unique,priority:2" json:"task_id"`
	ThemeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"theme_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`

	// Write-once: flips false -> true on the first correct answer and gates progress credit.
	IsSolvedFirstTry bool       `gorm:"column:is_solved_first_try;not null;default:false" json:"is_solved_first_try"`
	FirstSolvedAt    *time.Time `gorm:"column:first_solved_at" json:"first_solved_at,omitempty"`

	AttemptCount  int        `gorm:"column:attempt_count;not null;default:0" json:"attempt_count"`
	LastAttemptAt *time.Time `gorm:"column:last_attempt_at" json:"last_attempt_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TaskState) TableName() string { return "task_state" }
