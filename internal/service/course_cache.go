package service

import (
	"context"
	"encoding/json"
	"time"

	"coursehub_backend/internal/model"
	"coursehub_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	catalogCacheKey = "coursehub:catalog"
	catalogCacheTTL = 5 * time.Minute
)

// CourseCache caches the public course catalog. It degrades to a no-op
// when redis is not configured, so the read path never depends on it.
type CourseCache struct {
	rdb *redis.Client
}

func NewCourseCache(rdb *redis.Client) *CourseCache {
	return &CourseCache{rdb: rdb}
}

func (c *CourseCache) GetCatalog(ctx context.Context) ([]model.Course, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var courses []model.Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, false
	}
	return courses, true
}

func (c *CourseCache) SetCatalog(ctx context.Context, courses []model.Course) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(courses)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, catalogCacheKey, raw, catalogCacheTTL).Err(); err != nil {
		logger.Log.Warn("catalog cache set failed", zap.Error(err))
	}
}

// Invalidate drops the catalog after any mutation that changes course rows
// (create/update/delete, enrollment counter bumps).
func (c *CourseCache) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, catalogCacheKey).Err(); err != nil {
		logger.Log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
