package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/learnqueue-backend/internal/data/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	types "github.com/yungbote/learnqueue-backend/internal/domain"
	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/observability"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
	"github.com/yungbote/learnqueue-backend/internal/realtime"
	"github.com/yungbote/learnqueue-backend/internal/realtime/bus"
)

// ThemeState is the learner's position in a theme's lifecycle.
type ThemeState string

const (
	ThemeNotStarted ThemeState = "not_started"
	ThemeActive     ThemeState = "active"
	ThemeExhausted  ThemeState = "exhausted"
)

type EnterThemeResult struct {
	StateCreated bool       `json:"state_created"`
	Added        int        `json:"added"`
	QueueSize    int        `json:"queue_size"`
	State        ThemeState `json:"state"`
	NextTaskID   *uuid.UUID `json:"next_task_id,omitempty"`
}

type RecordAttemptInput struct {
	UserID      uuid.UUID
	TaskID      uuid.UUID
	ThemeID     uuid.UUID
	CourseID    uuid.UUID
	TimeSpentMs int64
	IsCorrect   bool
	EventTime   time.Time
}

type AttemptResult struct {
	Credited       bool                        `json:"credited"`
	Removed        bool                        `json:"removed"`
	MovedTo        int64                       `json:"moved_to,omitempty"`
	QueueSize      int                         `json:"queue_size"`
	Exhausted      bool                        `json:"exhausted"`
	ThemeProgress  *domainagg.ProgressSnapshot `json:"theme_progress,omitempty"`
	CourseProgress *domainagg.ProgressSnapshot `json:"course_progress,omitempty"`
	DailyStreak    int                         `json:"daily_streak"`
	Awarded        []domainagg.AwardedBadge    `json:"awarded,omitempty"`
	NextTaskID     *uuid.UUID                  `json:"next_task_id,omitempty"`
}

type LearnerOverview struct {
	UserID        uuid.UUID                   `json:"user_id"`
	ThemeID       uuid.UUID                   `json:"theme_id"`
	State         ThemeState                  `json:"state"`
	QueueSize     int                         `json:"queue_size"`
	NextTaskID    *uuid.UUID                  `json:"next_task_id,omitempty"`
	DailyStreak   int                         `json:"daily_streak"`
	ThemeProgress *domainagg.ProgressSnapshot `json:"theme_progress,omitempty"`
	Badges        []*types.UserBadge          `json:"badges"`
}

// CatalogInvalidator drops cached catalog entries for a theme.
type CatalogInvalidator interface {
	InvalidateTheme(ctx context.Context, themeID, courseID uuid.UUID) error
}

type QueueService interface {
	EnterTheme(ctx context.Context, userID, themeID uuid.UUID) (*EnterThemeResult, error)
	NextTask(ctx context.Context, userID, themeID uuid.UUID) (*uuid.UUID, error)
	RecordAttempt(ctx context.Context, in RecordAttemptInput) (*AttemptResult, error)
	// SyncThemeTasks appends catalog tasks added after the learner entered the theme.
	SyncThemeTasks(ctx context.Context, userID, themeID uuid.UUID) (int, error)
	CurrentDailyStreak(ctx context.Context, userID uuid.UUID, todayUTC time.Time) (int, error)
	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*types.UserBadge, error)
	LearnerOverview(ctx context.Context, userID, themeID uuid.UUID) (*LearnerOverview, error)
}

type QueueServiceDeps struct {
	Base aggregates.BaseDeps

	Catalog     repos.TaskCatalog
	Invalidator CatalogInvalidator

	Queue      domainagg.LearningQueueAggregate
	TaskStates domainagg.TaskStateAggregate
	Progress   domainagg.ProgressAggregate
	Streak     domainagg.StreakAggregate
	Badges     domainagg.BadgeAggregate

	Events  bus.Bus
	Metrics *observability.Metrics
	Now     func() time.Time
}

type queueService struct {
	deps QueueServiceDeps
	log  *logger.Logger
}

func NewQueueService(baseLog *logger.Logger, deps QueueServiceDeps) QueueService {
	if deps.Events == nil {
		deps.Events = bus.NewNoopBus()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Base.Log == nil {
		deps.Base.Log = baseLog
	}
	return &queueService{
		deps: deps,
		log:  baseLog.With("service", "QueueService"),
	}
}

func (s *queueService) EnterTheme(ctx context.Context, userID, themeID uuid.UUID) (*EnterThemeResult, error) {
	const op = "Learning.QueueService.EnterTheme"
	if userID == uuid.Nil || themeID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or theme_id", nil)
	}
	if _, err := s.requireTheme(ctx, op, themeID); err != nil {
		return nil, err
	}

	key := domainagg.QueueKey{UserID: userID, ThemeID: themeID}
	var res *EnterThemeResult
	err := aggregates.RunWrite(ctx, s.deps.Base, op, func(dbc dbctx.Context) error {
		created, err := s.deps.Queue.EnsureState(dbc.Ctx, key)
		if err != nil {
			return err
		}
		// Only the first entry seeds; later entries must not requeue solved tasks.
		added := 0
		if created {
			if added, err = s.deps.Queue.Seed(dbc.Ctx, key); err != nil {
				return err
			}
		}
		size, err := s.deps.Queue.Size(dbc.Ctx, key)
		if err != nil {
			return err
		}
		next, err := s.deps.Queue.PeekNext(dbc.Ctx, key)
		if err != nil {
			return err
		}
		res = &EnterThemeResult{
			StateCreated: created,
			Added:        added,
			QueueSize:    size,
			State:        stateFor(true, size),
			NextTaskID:   next,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("theme entered", "user_id", userID, "theme_id", themeID, "added", res.Added, "size", res.QueueSize)
	return res, nil
}

func (s *queueService) NextTask(ctx context.Context, userID, themeID uuid.UUID) (*uuid.UUID, error) {
	const op = "Learning.QueueService.NextTask"
	if userID == uuid.Nil || themeID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or theme_id", nil)
	}
	return s.deps.Queue.PeekNext(ctx, domainagg.QueueKey{UserID: userID, ThemeID: themeID})
}

func (s *queueService) RecordAttempt(ctx context.Context, in RecordAttemptInput) (*AttemptResult, error) {
	const op = "Learning.QueueService.RecordAttempt"
	if in.UserID == uuid.Nil || in.TaskID == uuid.Nil || in.ThemeID == uuid.Nil || in.CourseID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id, task_id, theme_id or course_id", nil)
	}
	if in.TimeSpentMs < 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "time_spent_ms must be non-negative", nil)
	}
	if err := s.requireTaskPlacement(ctx, op, in); err != nil {
		return nil, err
	}
	at := in.EventTime.UTC()
	if in.EventTime.IsZero() {
		at = s.deps.Now().UTC()
	}

	key := domainagg.QueueKey{UserID: in.UserID, ThemeID: in.ThemeID}
	var res *AttemptResult
	err := aggregates.RunWrite(ctx, s.deps.Base, op, func(dbc dbctx.Context) error {
		tctx := dbc.Ctx
		res = &AttemptResult{}
		if _, err := s.deps.TaskStates.EnsureStateRow(tctx, domainagg.EnsureTaskStateInput{
			UserID:    in.UserID,
			TaskID:    in.TaskID,
			ThemeID:   in.ThemeID,
			CourseID:  in.CourseID,
			AttemptAt: at,
		}); err != nil {
			return err
		}

		if !in.IsCorrect {
			pos, err := s.deps.Queue.MoveToEnd(tctx, key, in.TaskID)
			if err != nil {
				return err
			}
			res.MovedTo = pos
			return s.fillQueueView(tctx, key, res)
		}

		removed, err := s.deps.Queue.Remove(tctx, key, in.TaskID)
		if err != nil {
			return err
		}
		res.Removed = removed
		credited, err := s.deps.TaskStates.MarkSolvedFirstTryIfNot(tctx, in.UserID, in.TaskID, at)
		if err != nil {
			return err
		}
		res.Credited = credited
		if credited {
			if err := s.credit(tctx, in, at, res); err != nil {
				return err
			}
		}
		if err := s.fillQueueView(tctx, key, res); err != nil {
			return err
		}
		res.Exhausted = removed && res.QueueSize == 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.ObserveAttempt(in.IsCorrect, res.Credited)
	s.publishAttemptEvents(ctx, in, at, res)
	return res, nil
}

// credit applies one first-try solve to the roll-ups, the streak and the badges.
func (s *queueService) credit(ctx context.Context, in RecordAttemptInput, at time.Time, res *AttemptResult) error {
	apply := domainagg.ApplyFirstTrySolveInput{
		UserID:         in.UserID,
		ThemeID:        in.ThemeID,
		CourseID:       in.CourseID,
		FirstTryTimeMs: in.TimeSpentMs,
		EventTime:      at,
	}
	theme, err := s.deps.Progress.ApplyFirstTrySolveToTheme(ctx, apply)
	if err != nil {
		return err
	}
	course, err := s.deps.Progress.ApplyFirstTrySolveToCourse(ctx, apply)
	if err != nil {
		return err
	}
	res.ThemeProgress = &theme
	res.CourseProgress = &course

	if _, err := s.deps.Streak.RecordDailySolve(ctx, in.UserID, at); err != nil {
		return err
	}
	streak, err := s.deps.Streak.CurrentDailyStreak(ctx, in.UserID, at)
	if err != nil {
		return err
	}
	res.DailyStreak = streak

	awarded, err := s.deps.Badges.Evaluate(ctx, domainagg.BadgeSignal{
		UserID:            in.UserID,
		ThemeID:           in.ThemeID,
		CourseID:          in.CourseID,
		DailyStreak:       streak,
		ThemePercent:      theme.PercentComplete,
		CoursePercent:     course.PercentComplete,
		CourseSolvedTasks: course.SolvedTasks,
		EventTime:         at,
	})
	if err != nil {
		return err
	}
	res.Awarded = awarded
	return nil
}

func (s *queueService) fillQueueView(ctx context.Context, key domainagg.QueueKey, res *AttemptResult) error {
	size, err := s.deps.Queue.Size(ctx, key)
	if err != nil {
		return err
	}
	next, err := s.deps.Queue.PeekNext(ctx, key)
	if err != nil {
		return err
	}
	res.QueueSize = size
	res.NextTaskID = next
	return nil
}

func (s *queueService) publishAttemptEvents(ctx context.Context, in RecordAttemptInput, at time.Time, res *AttemptResult) {
	for _, a := range res.Awarded {
		if a.Rule == nil || a.Award == nil {
			continue
		}
		s.publish(ctx, realtime.LearningEvent{
			Type:       realtime.EventBadgeAwarded,
			UserID:     in.UserID,
			ThemeID:    a.Award.ThemeID,
			CourseID:   a.Award.CourseID,
			OccurredAt: a.Award.AwardedAt,
			Data: map[string]any{
				"badge_id":   a.Rule.ID.String(),
				"badge_code": a.Rule.Code,
				"badge_name": a.Rule.Name,
				"rule_type":  a.Rule.Type,
				"threshold":  a.Rule.Threshold,
			},
		})
	}
	if res.Exhausted {
		s.publish(ctx, realtime.LearningEvent{
			Type:       realtime.EventThemeExhausted,
			UserID:     in.UserID,
			ThemeID:    in.ThemeID,
			CourseID:   in.CourseID,
			OccurredAt: at,
		})
	}
}

func (s *queueService) publish(ctx context.Context, evt realtime.LearningEvent) {
	if err := s.deps.Events.Publish(ctx, evt); err != nil {
		s.deps.Metrics.IncLearningEvent(string(evt.Type), "failed")
		s.log.Warn("learning event publish failed", "type", evt.Type, "user_id", evt.UserID, "error", err)
		return
	}
	s.deps.Metrics.IncLearningEvent(string(evt.Type), "ok")
}

func (s *queueService) SyncThemeTasks(ctx context.Context, userID, themeID uuid.UUID) (int, error) {
	const op = "Learning.QueueService.SyncThemeTasks"
	if userID == uuid.Nil || themeID == uuid.Nil {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or theme_id", nil)
	}
	theme, err := s.requireTheme(ctx, op, themeID)
	if err != nil {
		return 0, err
	}
	if s.deps.Invalidator != nil {
		if err := s.deps.Invalidator.InvalidateTheme(ctx, themeID, theme.CourseID); err != nil {
			s.log.Warn("catalog cache invalidation failed", "theme_id", themeID, "error", err)
		}
	}
	taskIDs, err := s.deps.Catalog.ListTaskIDsForTheme(dbctx.Context{Ctx: ctx}, themeID)
	if err != nil {
		return 0, domainagg.CatalogUnavailable(op, err)
	}

	key := domainagg.QueueKey{UserID: userID, ThemeID: themeID}
	added := 0
	err = aggregates.RunWrite(ctx, s.deps.Base, op, func(dbc dbctx.Context) error {
		solved, err := s.deps.TaskStates.SolvedAmong(dbc.Ctx, userID, taskIDs)
		if err != nil {
			return err
		}
		pending := make([]uuid.UUID, 0, len(taskIDs))
		for _, id := range taskIDs {
			if !solved[id] {
				pending = append(pending, id)
			}
		}
		added, err = s.deps.Queue.EnqueueAtEnd(dbc.Ctx, key, pending)
		return err
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *queueService) CurrentDailyStreak(ctx context.Context, userID uuid.UUID, todayUTC time.Time) (int, error) {
	if todayUTC.IsZero() {
		todayUTC = s.deps.Now().UTC()
	}
	return s.deps.Streak.CurrentDailyStreak(ctx, userID, todayUTC)
}

func (s *queueService) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*types.UserBadge, error) {
	return s.deps.Badges.ListUserBadges(ctx, userID)
}

func (s *queueService) LearnerOverview(ctx context.Context, userID, themeID uuid.UUID) (*LearnerOverview, error) {
	const op = "Learning.QueueService.LearnerOverview"
	if userID == uuid.Nil || themeID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or theme_id", nil)
	}
	key := domainagg.QueueKey{UserID: userID, ThemeID: themeID}
	out := &LearnerOverview{UserID: userID, ThemeID: themeID}
	var hasState bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hasState, err = s.deps.Queue.HasState(gctx, key)
		return err
	})
	g.Go(func() error {
		var err error
		out.QueueSize, err = s.deps.Queue.Size(gctx, key)
		return err
	})
	g.Go(func() error {
		var err error
		out.NextTaskID, err = s.deps.Queue.PeekNext(gctx, key)
		return err
	})
	g.Go(func() error {
		var err error
		out.DailyStreak, err = s.deps.Streak.CurrentDailyStreak(gctx, userID, s.deps.Now().UTC())
		return err
	})
	g.Go(func() error {
		var err error
		out.ThemeProgress, err = s.deps.Progress.GetThemeProgress(gctx, userID, themeID)
		return err
	})
	g.Go(func() error {
		var err error
		out.Badges, err = s.deps.Badges.ListUserBadges(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.State = stateFor(hasState, out.QueueSize)
	return out, nil
}

func (s *queueService) requireTheme(ctx context.Context, op string, themeID uuid.UUID) (*types.Theme, error) {
	theme, err := s.deps.Catalog.GetTheme(dbctx.Context{Ctx: ctx}, themeID)
	if err != nil {
		return nil, domainagg.CatalogUnavailable(op, err)
	}
	if theme == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "theme not found", nil)
	}
	return theme, nil
}

// requireTaskPlacement rejects attempts whose task is unknown or filed under another theme or course.
func (s *queueService) requireTaskPlacement(ctx context.Context, op string, in RecordAttemptInput) error {
	ref, err := s.deps.Catalog.LookupTask(dbctx.Context{Ctx: ctx}, in.TaskID)
	if err != nil {
		return domainagg.CatalogUnavailable(op, err)
	}
	if ref == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "task not found", nil)
	}
	if ref.ThemeID != in.ThemeID || ref.CourseID != in.CourseID {
		return domainagg.NewError(domainagg.CodeValidation, op, "task does not belong to theme/course", nil)
	}
	return nil
}

func stateFor(hasState bool, size int) ThemeState {
	switch {
	case !hasState:
		return ThemeNotStarted
	case size > 0:
		return ThemeActive
	default:
		return ThemeExhausted
	}
}
