package progress

import (
	"time"

	"github.com/google/uuid"
)

// QueueItem is one task waiting in a learner's per-theme rotation. Rows are hard
// deleted when a task leaves the rotation so (user, theme, task) can be re-enqueued.
type QueueItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_queue_item_task,unique,priority:1;index:idx_queue_item_position,unique,priority:1" json:"user_id"`
	ThemeID uuid.UUID `gorm:"type:uuid;not null;index:idx_queue_item_task,unique,priority:2;index:idx_queue_item_position,unique,priority:2" json:"theme_id"`
	TaskID  uuid.UUID `gorm:"type:uuid;not null;index:idx_queue_item_task,unique,priority:3" json:"task_id"`

	Position int64 `gorm:"column:position;not null;index:idx_queue_item_position,unique,priority:3" json:"position"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QueueItem) TableName() string { return "queue_item" }

// QueueState holds the position high-water mark for one (user, theme) queue.
type QueueState struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_queue_state_user_theme,unique,priority:1" json:"user_id"`
	ThemeID uuid.UUID `gorm:"type:uuid;not null;index:idx_queue_state_user_theme,unique,priority:2" json:"theme_id"`

	LastPosition int64 `gorm:"column:last_position;not null;default:0" json:"last_position"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QueueState) TableName() string { return "queue_state" }
