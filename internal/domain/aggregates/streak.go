package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var StreakAggregateContract = Contract{
	Name:     "Learning.StreakAggregate",
	Tables:   []string{"daily_solve"},
	LockKeys: []LockKey{LockKeyUserDay},
	Notes:    "Owns one daily_solve row per (user, UTC day); the streak is derived on read.",
}

type StreakAggregate interface {
	Aggregate

	// RecordDailySolve marks the UTC day of dayUTC as solved; true when newly recorded.
	RecordDailySolve(ctx context.Context, userID uuid.UUID, dayUTC time.Time) (bool, error)

	// CurrentDailyStreak counts consecutive solved days ending at todayUTC.
	CurrentDailyStreak(ctx context.Context, userID uuid.UUID, todayUTC time.Time) (int, error)
}
