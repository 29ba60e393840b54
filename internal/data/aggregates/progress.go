package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	types "github.com/yungbote/learnqueue-backend/internal/domain"
	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/domain/learning/progress"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

type ProgressAggregateDeps struct {
	Base BaseDeps

	Themes  repos.ThemeProgressRepo
	Courses repos.CourseProgressRepo
	Catalog repos.TaskCatalog
}

type progressAggregate struct {
	deps ProgressAggregateDeps
}

func NewProgressAggregate(deps ProgressAggregateDeps) domainagg.ProgressAggregate {
	deps.Base = deps.Base.withDefaults()
	return &progressAggregate{deps: deps}
}

func (a *progressAggregate) Contract() domainagg.Contract {
	return domainagg.ProgressAggregateContract
}

// rollup is the shared increment step of both scopes.
type rollup struct {
	solved      int
	total       int
	totalTimeMs int64
}

func (r rollup) snapshot(userID, scopeID uuid.UUID, created bool, at time.Time) domainagg.ProgressSnapshot {
	return domainagg.ProgressSnapshot{
		UserID:          userID,
		ScopeID:         scopeID,
		SolvedTasks:     r.solved,
		TotalTasks:      r.total,
		TotalTimeMs:     r.totalTimeMs,
		AverageTimeMs:   progress.AverageOf(r.totalTimeMs, r.solved),
		PercentComplete: progress.PercentOf(r.solved, r.total),
		Created:         created,
		UpdatedAt:       at,
	}
}

func (r rollup) updates(at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"solved_tasks":     r.solved,
		"total_tasks":      r.total,
		"total_time_ms":    r.totalTimeMs,
		"average_time_ms":  progress.AverageOf(r.totalTimeMs, r.solved),
		"percent_complete": progress.PercentOf(r.solved, r.total),
		"updated_at":       at,
	}
}

func validateApply(op string, in domainagg.ApplyFirstTrySolveInput, needTheme bool) error {
	if in.UserID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if needTheme && in.ThemeID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing theme_id", nil)
	}
	if in.CourseID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing course_id", nil)
	}
	if in.FirstTryTimeMs < 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "first try time must be >= 0", nil)
	}
	return nil
}

func eventTimeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func (a *progressAggregate) ApplyFirstTrySolveToTheme(ctx context.Context, in domainagg.ApplyFirstTrySolveInput) (domainagg.ProgressSnapshot, error) {
	const op = "Learning.Progress.ApplyFirstTrySolveToTheme"
	var out domainagg.ProgressSnapshot
	if err := validateApply(op, in, true); err != nil {
		return out, err
	}
	if a.deps.Themes == nil || a.deps.Catalog == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "progress aggregate repos not configured", nil)
	}
	at := eventTimeOrNow(in.EventTime)

	total, err := a.deps.Catalog.CountTasksInTheme(readContext(ctx), in.ThemeID)
	if err != nil {
		return out, domainagg.CatalogUnavailable(op, err)
	}

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		fresh := rollup{solved: 1, total: total, totalTimeMs: in.FirstTryTimeMs}
		row := &types.ThemeProgress{
			ID:              uuid.New(),
			UserID:          in.UserID,
			ThemeID:         in.ThemeID,
			CourseID:        in.CourseID,
			SolvedTasks:     fresh.solved,
			TotalTasks:      fresh.total,
			TotalTimeMs:     fresh.totalTimeMs,
			AverageTimeMs:   progress.AverageOf(fresh.totalTimeMs, fresh.solved),
			PercentComplete: progress.PercentOf(fresh.solved, fresh.total),
			CreatedAt:       at,
			UpdatedAt:       at,
		}
		created, err := a.deps.Themes.CreateIfAbsent(dbc, row)
		if err != nil {
			return err
		}
		if created {
			out = fresh.snapshot(in.UserID, in.ThemeID, true, at)
			return nil
		}

		prev, err := a.deps.Themes.LockByUserTheme(dbc, in.UserID, in.ThemeID)
		if err != nil {
			return err
		}
		if prev == nil {
			return ConflictError("theme progress row vanished after insert conflict")
		}
		next := rollup{
			solved:      prev.SolvedTasks + 1,
			total:       total,
			totalTimeMs: prev.TotalTimeMs + in.FirstTryTimeMs,
		}
		if err := a.deps.Themes.UpdateFields(dbc, prev.ID, next.updates(at)); err != nil {
			return err
		}
		out = next.snapshot(in.UserID, in.ThemeID, false, at)
		return nil
	})
	if err != nil {
		return domainagg.ProgressSnapshot{}, err
	}
	return out, nil
}

func (a *progressAggregate) ApplyFirstTrySolveToCourse(ctx context.Context, in domainagg.ApplyFirstTrySolveInput) (domainagg.ProgressSnapshot, error) {
	const op = "Learning.Progress.ApplyFirstTrySolveToCourse"
	var out domainagg.ProgressSnapshot
	if err := validateApply(op, in, false); err != nil {
		return out, err
	}
	if a.deps.Courses == nil || a.deps.Catalog == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "progress aggregate repos not configured", nil)
	}
	at := eventTimeOrNow(in.EventTime)

	total, err := a.deps.Catalog.CountTasksInCourse(readContext(ctx), in.CourseID)
	if err != nil {
		return out, domainagg.CatalogUnavailable(op, err)
	}

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		fresh := rollup{solved: 1, total: total, totalTimeMs: in.FirstTryTimeMs}
		row := &types.CourseProgress{
			ID:              uuid.New(),
			UserID:          in.UserID,
			CourseID:        in.CourseID,
			SolvedTasks:     fresh.solved,
			TotalTasks:      fresh.total,
			TotalTimeMs:     fresh.totalTimeMs,
			AverageTimeMs:   progress.AverageOf(fresh.totalTimeMs, fresh.solved),
			PercentComplete: progress.PercentOf(fresh.solved, fresh.total),
			CreatedAt:       at,
			UpdatedAt:       at,
		}
		created, err := a.deps.Courses.CreateIfAbsent(dbc, row)
		if err != nil {
			return err
		}
		if created {
			out = fresh.snapshot(in.UserID, in.CourseID, true, at)
			return nil
		}

		prev, err := a.deps.Courses.LockByUserCourse(dbc, in.UserID, in.CourseID)
		if err != nil {
			return err
		}
		if prev == nil {
			return ConflictError("course progress row vanished after insert conflict")
		}
		next := rollup{
			solved:      prev.SolvedTasks + 1,
			total:       total,
			totalTimeMs: prev.TotalTimeMs + in.FirstTryTimeMs,
		}
		if err := a.deps.Courses.UpdateFields(dbc, prev.ID, next.updates(at)); err != nil {
			return err
		}
		out = next.snapshot(in.UserID, in.CourseID, false, at)
		return nil
	})
	if err != nil {
		return domainagg.ProgressSnapshot{}, err
	}
	return out, nil
}

func (a *progressAggregate) GetThemeProgress(ctx context.Context, userID, themeID uuid.UUID) (*domainagg.ProgressSnapshot, error) {
	const op = "Learning.Progress.GetThemeProgress"
	if userID == uuid.Nil || themeID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or theme_id", nil)
	}
	var out *domainagg.ProgressSnapshot
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Themes.GetByUserTheme(dbc, userID, themeID)
		if err != nil || row == nil {
			return err
		}
		out = &domainagg.ProgressSnapshot{
			UserID:          row.UserID,
			ScopeID:         row.ThemeID,
			SolvedTasks:     row.SolvedTasks,
			TotalTasks:      row.TotalTasks,
			TotalTimeMs:     row.TotalTimeMs,
			AverageTimeMs:   row.AverageTimeMs,
			PercentComplete: row.PercentComplete,
			UpdatedAt:       row.UpdatedAt,
		}
		return nil
	})
	return out, err
}

func (a *progressAggregate) GetCourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*domainagg.ProgressSnapshot, error) {
	const op = "Learning.Progress.GetCourseProgress"
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or course_id", nil)
	}
	var out *domainagg.ProgressSnapshot
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Courses.GetByUserCourse(dbc, userID, courseID)
		if err != nil || row == nil {
			return err
		}
		out = &domainagg.ProgressSnapshot{
			UserID:          row.UserID,
			ScopeID:         row.CourseID,
			SolvedTasks:     row.SolvedTasks,
			TotalTasks:      row.TotalTasks,
			TotalTimeMs:     row.TotalTimeMs,
			AverageTimeMs:   row.AverageTimeMs,
			PercentComplete: row.PercentComplete,
			UpdatedAt:       row.UpdatedAt,
		}
		return nil
	})
	return out, err
}
