package progress

import (
	"time"

	"github.com/google/uuid"
)

// DayLayout is the storage format of DailySolve.Day. It sorts lexicographically
// in date order on every supported store.
const DayLayout = "2006-01-02"

type DailySolve struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_daily_solve_user_day,unique,priority:1" json:"user_id"`
	Day    string    `gorm:"column:day;type:varchar(10);not null;index:idx_daily_solve_user_day,unique,priority:2" json:"day"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (DailySolve) TableName() string { return "daily_solve" }

// DayKey truncates t to its UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}
