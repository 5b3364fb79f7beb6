package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-gpa-api/internal/models"
	"github.com/noah-isme/course-gpa-api/internal/repository"
)

const courseCachePrefix = "courses:"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CourseCache keeps name lookups warm. Failures are logged and treated as misses
// so the store always remains the source of truth.
type CourseCache struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger

	// mu orders Store against Invalidate; generation counts invalidations.
	mu         sync.Mutex
	generation uint64
}

// NewCourseCache constructs a course cache. A nil repo disables caching.
func NewCourseCache(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *CourseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseCache{repo: repo, metrics: metrics, ttl: ttl, logger: logger}
}

// Enabled indicates whether caching is active.
func (s *CourseCache) Enabled() bool {
	return s != nil && s.repo != nil
}

func nameKey(name string) string {
	return courseCachePrefix + "name:" + strings.ToLower(name)
}

// Generation returns a token to pass to Store. Read it before loading from the store.
func (s *CourseCache) Generation() uint64 {
	if !s.Enabled() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Lookup returns the cached course for name, if any.
func (s *CourseCache) Lookup(ctx context.Context, name string) (*models.Course, bool) {
	if !s.Enabled() {
		return nil, false
	}
	start := time.Now()
	var course models.Course
	err := s.repo.Get(ctx, nameKey(name), &course)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("course cache get failed", zap.String("name", name), zap.Error(err))
		}
		return nil, false
	}
	return &course, true
}

// Store caches the course under its name unless an invalidation happened after generation
// was read, in which case the loaded course may already be stale.
func (s *CourseCache) Store(ctx context.Context, course *models.Course, generation uint64) {
	if !s.Enabled() || course == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Debug("skipping stale course cache entry", zap.String("name", course.Name))
		return
	}
	if err := s.repo.Set(ctx, nameKey(course.Name), course, s.ttl); err != nil {
		s.logger.Warn("course cache set failed", zap.String("name", course.Name), zap.Error(err))
	}
}

// Invalidate drops every cached course entry.
func (s *CourseCache) Invalidate(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if err := s.repo.DeleteByPattern(ctx, courseCachePrefix+"*"); err != nil {
		s.logger.Warn("course cache invalidate failed", zap.Error(err))
	}
}
