package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/domain/learning/progress"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

// DefaultStreakLookbackDays keeps the historical 60-day window.
const DefaultStreakLookbackDays = 60

type StreakAggregateDeps struct {
	Base BaseDeps

	Days repos.DailySolveRepo

	// LookbackDays bounds how far back CurrentDailyStreak reads. Zero means unbounded;
	// negative values fall back to DefaultStreakLookbackDays.
	LookbackDays int
}

type streakAggregate struct {
	deps StreakAggregateDeps
}

func NewStreakAggregate(deps StreakAggregateDeps) domainagg.StreakAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.LookbackDays < 0 {
		deps.LookbackDays = DefaultStreakLookbackDays
	}
	return &streakAggregate{deps: deps}
}

func (a *streakAggregate) Contract() domainagg.Contract {
	return domainagg.StreakAggregateContract
}

func (a *streakAggregate) RecordDailySolve(ctx context.Context, userID uuid.UUID, dayUTC time.Time) (bool, error) {
	const op = "Learning.Streak.RecordDailySolve"
	if userID == uuid.Nil {
		return false, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if a.deps.Days == nil {
		return false, domainagg.NewError(domainagg.CodeInternal, op, "daily solve repo not configured", nil)
	}
	day := progress.DayKey(eventTimeOrNow(dayUTC))
	created := false
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		ok, err := a.deps.Days.CreateIfAbsent(dbc, userID, day)
		if err != nil {
			return err
		}
		created = ok
		return nil
	})
	return created, err
}

func (a *streakAggregate) CurrentDailyStreak(ctx context.Context, userID uuid.UUID, todayUTC time.Time) (int, error) {
	const op = "Learning.Streak.CurrentDailyStreak"
	if userID == uuid.Nil {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if a.deps.Days == nil {
		return 0, domainagg.NewError(domainagg.CodeInternal, op, "daily solve repo not configured", nil)
	}
	today := eventTimeOrNow(todayUTC)
	until := progress.DayKey(today)
	since := ""
	if a.deps.LookbackDays > 0 {
		since = progress.DayKey(today.AddDate(0, 0, -a.deps.LookbackDays))
	}

	var days []string
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		var err error
		days, err = a.deps.Days.ListDaysDesc(dbc, userID, since, until)
		return err
	})
	if err != nil {
		return 0, err
	}
	return countStreak(days, today), nil
}

// countStreak walks back from today over days sorted newest first and stops at the first gap.
func countStreak(daysDesc []string, today time.Time) int {
	streak := 0
	expect := today.UTC()
	for _, d := range daysDesc {
		want := progress.DayKey(expect)
		if d > want {
			continue
		}
		if d != want {
			break
		}
		streak++
		expect = expect.AddDate(0, 0, -1)
	}
	return streak
}
