package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	types "github.com/yungbote/learnqueue-backend/internal/domain"
	"github.com/yungbote/learnqueue-backend/internal/observability"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

const (
	DefaultCatalogTTL = 5 * time.Minute
	keyPrefix         = "lq:catalog:"
)

// CatalogCache is a read-through Redis decorator over a TaskCatalog. Redis failures
// degrade to the wrapped catalog and never surface to callers.
//
// Only InvalidateTheme evicts entries, so catalog edits made outside this process
// show up after the TTL. Progress totals are not read through the cache.
type CatalogCache struct {
	inner   repos.TaskCatalog
	rdb     goredis.UniversalClient
	ttl     time.Duration
	log     *logger.Logger
	metrics *observability.Metrics
}

var _ repos.TaskCatalog = (*CatalogCache)(nil)

func NewCatalogCache(inner repos.TaskCatalog, rdb goredis.UniversalClient, ttl time.Duration, baseLog *logger.Logger, metrics *observability.Metrics) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		log:     baseLog.With("cache", "CatalogCache"),
		metrics: metrics,
	}
}

func themeTasksKey(themeID uuid.UUID) string  { return keyPrefix + "theme:" + themeID.String() + ":tasks" }
func themeCountKey(themeID uuid.UUID) string  { return keyPrefix + "theme:" + themeID.String() + ":count" }
func themeKey(themeID uuid.UUID) string       { return keyPrefix + "theme:" + themeID.String() }
func courseCountKey(courseID uuid.UUID) string { return keyPrefix + "course:" + courseID.String() + ":count" }
func taskRefKey(taskID uuid.UUID) string      { return keyPrefix + "task:" + taskID.String() }

func (c *CatalogCache) ListTaskIDsForTheme(dbc dbctx.Context, themeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if themeID != uuid.Nil && c.lookup(dbc.Ctx, "list_theme_tasks", themeTasksKey(themeID), &ids) {
		return ids, nil
	}
	ids, err := c.inner.ListTaskIDsForTheme(dbc, themeID)
	if err != nil {
		return nil, err
	}
	if themeID != uuid.Nil {
		c.store(dbc.Ctx, themeTasksKey(themeID), ids)
	}
	return ids, nil
}

func (c *CatalogCache) CountTasksInTheme(dbc dbctx.Context, themeID uuid.UUID) (int, error) {
	var n int
	if themeID != uuid.Nil && c.lookup(dbc.Ctx, "count_theme_tasks", themeCountKey(themeID), &n) {
		return n, nil
	}
	n, err := c.inner.CountTasksInTheme(dbc, themeID)
	if err != nil {
		return 0, err
	}
	if themeID != uuid.Nil {
		c.store(dbc.Ctx, themeCountKey(themeID), n)
	}
	return n, nil
}

func (c *CatalogCache) CountTasksInCourse(dbc dbctx.Context, courseID uuid.UUID) (int, error) {
	var n int
	if courseID != uuid.Nil && c.lookup(dbc.Ctx, "count_course_tasks", courseCountKey(courseID), &n) {
		return n, nil
	}
	n, err := c.inner.CountTasksInCourse(dbc, courseID)
	if err != nil {
		return 0, err
	}
	if courseID != uuid.Nil {
		c.store(dbc.Ctx, courseCountKey(courseID), n)
	}
	return n, nil
}

func (c *CatalogCache) GetTheme(dbc dbctx.Context, themeID uuid.UUID) (*types.Theme, error) {
	var theme types.Theme
	if themeID != uuid.Nil && c.lookup(dbc.Ctx, "get_theme", themeKey(themeID), &theme) {
		return &theme, nil
	}
	row, err := c.inner.GetTheme(dbc, themeID)
	if err != nil || row == nil {
		return row, err
	}
	c.store(dbc.Ctx, themeKey(themeID), row)
	return row, nil
}

func (c *CatalogCache) LookupTask(dbc dbctx.Context, taskID uuid.UUID) (*types.TaskRef, error) {
	var ref types.TaskRef
	if taskID != uuid.Nil && c.lookup(dbc.Ctx, "lookup_task", taskRefKey(taskID), &ref) {
		return &ref, nil
	}
	row, err := c.inner.LookupTask(dbc, taskID)
	if err != nil || row == nil {
		return row, err
	}
	c.store(dbc.Ctx, taskRefKey(taskID), row)
	return row, nil
}

// InvalidateTheme drops cached entries that change when tasks are added to a theme.
// A nil courseID leaves the course count untouched.
func (c *CatalogCache) InvalidateTheme(ctx context.Context, themeID, courseID uuid.UUID) error {
	if c == nil || c.rdb == nil || themeID == uuid.Nil {
		return nil
	}
	keys := []string{themeTasksKey(themeID), themeCountKey(themeID), themeKey(themeID)}
	if courseID != uuid.Nil {
		keys = append(keys, courseCountKey(courseID))
	}
	return c.rdb.Del(ctxOrBackground(ctx), keys...).Err()
}

func (c *CatalogCache) lookup(ctx context.Context, op, key string, dst any) bool {
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctxOrBackground(ctx), key).Bytes()
	switch {
	case err == nil:
		if uerr := json.Unmarshal(raw, dst); uerr == nil {
			c.metrics.ObserveCatalogCache(op, true)
			return true
		}
		c.log.Warn("catalog cache entry unreadable", "key", key)
	case !errors.Is(err, goredis.Nil):
		c.log.Warn("catalog cache read failed", "key", key, "error", err)
	}
	c.metrics.ObserveCatalogCache(op, false)
	return false
}

func (c *CatalogCache) store(ctx context.Context, key string, v any) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctxOrBackground(ctx), key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("catalog cache write failed", "key", key, "error", err)
	}
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
