package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnqueue-backend/internal/domain"
)

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB) *types.Course {
	tb.Helper()
	now := time.Now().UTC()
	c := &types.Course{
		ID:        uuid.New(),
		Title:     "course",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedTheme(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, position int) *types.Theme {
	tb.Helper()
	now := time.Now().UTC()
	th := &types.Theme{
		ID:        uuid.New(),
		CourseID:  courseID,
		Title:     "theme",
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(th).Error; err != nil {
		tb.Fatalf("seed theme: %v", err)
	}
	return th
}

// SeedTasks inserts n tasks with positions 1..n and returns them in catalog order.
func SeedTasks(tb testing.TB, ctx context.Context, tx *gorm.DB, themeID uuid.UUID, n int) []*types.Task {
	tb.Helper()
	out := make([]*types.Task, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, SeedTask(tb, ctx, tx, themeID, i))
	}
	return out
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, themeID uuid.UUID, position int) *types.Task {
	tb.Helper()
	now := time.Now().UTC()
	task := &types.Task{
		ID:        uuid.New(),
		ThemeID:   themeID,
		Title:     "task",
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(task).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return task
}

func SeedBadgeRule(tb testing.TB, ctx context.Context, tx *gorm.DB, code, ruleType string, threshold int) *types.BadgeRule {
	tb.Helper()
	now := time.Now().UTC()
	r := &types.BadgeRule{
		ID:        uuid.New(),
		Code:      code,
		Name:      code,
		Type:      ruleType,
		Threshold: threshold,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed badge rule: %v", err)
	}
	return r
}

func TaskIDs(tasks []*types.Task) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }
