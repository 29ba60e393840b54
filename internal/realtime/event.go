package realtime

import (
	"time"

	"github.com/google/uuid"
)

type LearningEventType string

const (
	EventBadgeAwarded   LearningEventType = "badge_awarded"
	EventThemeExhausted LearningEventType = "theme_exhausted"
)

// LearningEvent is published after the attempt that produced it has committed.
type LearningEvent struct {
	Type       LearningEventType `json:"type"`
	UserID     uuid.UUID         `json:"user_id"`
	ThemeID    uuid.UUID         `json:"theme_id"`
	CourseID   uuid.UUID         `json:"course_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]any    `json:"data,omitempty"`
}
