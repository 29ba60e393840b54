package progress

import (
	"time"

	"github.com/google/uuid"
)

type ThemeProgress struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_theme_progress_user_theme,unique,priority:1" json:"user_id"`
	ThemeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_theme_progress_user_theme,unique,priority:2" json:"theme_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`

	SolvedTasks     int     `gorm:"column:solved_tasks;not null;default:0" json:"solved_tasks"`
	TotalTasks      int     `gorm:"column:total_tasks;not null;default:0" json:"total_tasks"`
	TotalTimeMs     int64   `gorm:"column:total_time_ms;not null;default:0" json:"total_time_ms"`
	AverageTimeMs   int64   `gorm:"column:average_time_ms;not null;default:0" json:"average_time_ms"`
	PercentComplete float64 `gorm:"column:percent_complete;not null;default:0" json:"percent_complete"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ThemeProgress) TableName() string { return "theme_progress" }

type CourseProgress struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_course_progress_user_course,unique,priority:1" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index:idx_course_progress_user_course,unique,priority:2" json:"course_id"`

	SolvedTasks     int     `gorm:"column:solved_tasks;not null;default:0" json:"solved_tasks"`
	TotalTasks      int     `gorm:"column:total_tasks;not null;default:0" json:"total_tasks"`
	TotalTimeMs     int64   `gorm:"column:total_time_ms;not null;default:0" json:"total_time_ms"`
	AverageTimeMs   int64   `gorm:"column:average_time_ms;not null;default:0" json:"average_time_ms"`
	PercentComplete float64 `gorm:"column:percent_complete;not null;default:0" json:"percent_complete"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CourseProgress) TableName() string { return "course_progress" }

// PercentOf returns 100*solved/total, or 0 for an empty denominator.
func PercentOf(solved, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(solved) * 100 / float64(total)
}

// AverageOf is integer division; zero solved tasks yields zero.
func AverageOf(totalTimeMs int64, solved int) int64 {
	if solved <= 0 {
		return 0
	}
	return totalTimeMs / int64(solved)
}
