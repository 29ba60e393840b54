package aggregates

// LockKey names the row lock that serializes writers of an aggregate.
type LockKey string

const (
	LockKeyUserTheme  LockKey = "user_id+theme_id"
	LockKeyUserCourse LockKey = "user_id+course_id"
	LockKeyUserTask   LockKey = "user_id+task_id"
	LockKeyUserDay    LockKey = "user_id+day"
	LockKeyUserBadge  LockKey = "user_id+badge_id+course_id+theme_id"
)

// Contract is the write footprint of one aggregate: the tables only it may write and
// the lock keys its writes take.
type Contract struct {
	Name     string
	Tables   []string
	LockKeys []LockKey
	Notes    string
}

// Owns reports whether table is written exclusively by this aggregate.
func (c Contract) Owns(table string) bool {
	for _, t := range c.Tables {
		if t == table {
			return true
		}
	}
	return false
}

type Aggregate interface {
	Contract() Contract
}

// Contracts lists every learning aggregate.
func Contracts() []Contract {
	return []Contract{
		LearningQueueAggregateContract,
		TaskStateAggregateContract,
		ProgressAggregateContract,
		StreakAggregateContract,
		BadgeAggregateContract,
	}
}
