package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	aggtest "github.com/yungbote/learnqueue-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	repotest "github.com/yungbote/learnqueue-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnqueue-backend/internal/domain"
	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return repotest.DB(t)
}

type fixture struct {
	db    *gorm.DB
	hooks *aggtest.HooksRecorder

	catalog  repos.TaskCatalog
	queue    domainagg.LearningQueueAggregate
	states   domainagg.TaskStateAggregate
	progress domainagg.ProgressAggregate
	streak   domainagg.StreakAggregate
	badges   domainagg.BadgeAggregate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := repotest.Logger(t)
	hooks := &aggtest.HooksRecorder{}
	base := BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: hooks,
		Retry: RetryPolicy{MaxTries: 5, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
	}
	catalog := repos.NewTaskCatalog(db, log)
	return &fixture{
		db:      db,
		hooks:   hooks,
		catalog: catalog,
		queue: NewLearningQueueAggregate(LearningQueueAggregateDeps{
			Base:    base,
			States:  repos.NewQueueStateRepo(db, log),
			Items:   repos.NewQueueItemRepo(db, log),
			Catalog: catalog,
		}),
		states: NewTaskStateAggregate(TaskStateAggregateDeps{
			Base:   base,
			States: repos.NewTaskStateRepo(db, log),
		}),
		progress: NewProgressAggregate(ProgressAggregateDeps{
			Base:    base,
			Themes:  repos.NewThemeProgressRepo(db, log),
			Courses: repos.NewCourseProgressRepo(db, log),
			Catalog: catalog,
		}),
		streak: NewStreakAggregate(StreakAggregateDeps{
			Base:         base,
			Days:         repos.NewDailySolveRepo(db, log),
			LookbackDays: DefaultStreakLookbackDays,
		}),
		badges: NewBadgeAggregate(BadgeAggregateDeps{
			Base:   base,
			Rules:  repos.NewBadgeRuleRepo(db, log),
			Awards: repos.NewUserBadgeRepo(db, log),
		}),
	}
}

// seedTheme creates a course with one theme holding n tasks in catalog order.
func (f *fixture) seedTheme(t *testing.T, n int) (*types.Course, *types.Theme, []*types.Task) {
	t.Helper()
	ctx := context.Background()
	course := repotest.SeedCourse(t, ctx, f.db)
	theme := repotest.SeedTheme(t, ctx, f.db, course.ID, 1)
	tasks := repotest.SeedTasks(t, ctx, f.db, theme.ID, n)
	return course, theme, tasks
}

func assertStrictlyIncreasing(t *testing.T, entries []domainagg.QueueEntry) {
	t.Helper()
	for i := 1; i < len(entries); i++ {
		if entries[i].Position <= entries[i-1].Position {
			t.Fatalf("positions not strictly increasing at %d: %+v", i, entries)
		}
	}
}

func taskOrder(entries []domainagg.QueueEntry) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.TaskID)
	}
	return out
}

var errCatalogDown = errors.New("catalog connection refused")

// downCatalog fails every read.
type downCatalog struct{}

func (downCatalog) ListTaskIDsForTheme(dbctx.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, errCatalogDown
}
func (downCatalog) CountTasksInTheme(dbctx.Context, uuid.UUID) (int, error)  { return 0, errCatalogDown }
func (downCatalog) CountTasksInCourse(dbctx.Context, uuid.UUID) (int, error) { return 0, errCatalogDown }
func (downCatalog) GetTheme(dbctx.Context, uuid.UUID) (*types.Theme, error)  { return nil, errCatalogDown }
func (downCatalog) LookupTask(dbctx.Context, uuid.UUID) (*types.TaskRef, error) {
	return nil, errCatalogDown
}
