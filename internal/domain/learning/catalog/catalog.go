package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Course, Theme and Task are owned by the course-management side of the platform.
// The queue engine only reads them.

type Course struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

type Theme struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index:idx_theme_course_pos,priority:1" json:"course_id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Position  int       `gorm:"column:position;not null;default:0;index:idx_theme_course_pos,priority:2" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Theme) TableName() string { return "theme" }

type Task struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThemeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_task_theme_pos,priority:1" json:"theme_id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Position  int       `gorm:"column:position;not null;default:0;index:idx_task_theme_pos,priority:2" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "task" }

// TaskRef locates a task inside the catalog hierarchy.
type TaskRef struct {
	TaskID   uuid.UUID `json:"task_id"`
	ThemeID  uuid.UUID `json:"theme_id"`
	CourseID uuid.UUID `json:"course_id"`
}
